package auditlog

import (
	"strings"

	"github.com/localnerve/archhub/internal/models"
)

// Category groups audit descriptions for the history view
type Category string

const (
	CategoryCreation   Category = "creation"
	CategoryApproval   Category = "approval"
	CategoryRejection  Category = "rejection"
	CategoryChange     Category = "change"
	CategoryDeployment Category = "deployment"
	CategorySubmission Category = "submission"
	CategoryOther      Category = "other"
)

// Categories in match order
var Categories = []Category{
	CategoryCreation,
	CategoryApproval,
	CategoryRejection,
	CategoryChange,
	CategoryDeployment,
	CategorySubmission,
	CategoryOther,
}

var keywords = []struct {
	category Category
	words    []string
}{
	{CategoryCreation, []string{"created"}},
	{CategoryApproval, []string{"approved"}},
	{CategoryRejection, []string{"returned", "rejected"}},
	{CategoryChange, []string{"changed", "updated"}},
	{CategoryDeployment, []string{"deployed"}},
	{CategorySubmission, []string{"submitted"}},
}

// Categorize classifies a change description. The first matching keyword wins.
func Categorize(description string) Category {
	d := strings.ToLower(description)
	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(d, w) {
				return k.category
			}
		}
	}
	return CategoryOther
}

// CategoryCounts counts entries per category. Every category is present.
func CategoryCounts(entries []models.AuditLogEntry) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, e := range entries {
		counts[Categorize(e.ChangedDescription)]++
	}
	return counts
}

// FilterByCategory keeps entries of one category. An empty category keeps all.
func FilterByCategory(entries []models.AuditLogEntry, category Category) []models.AuditLogEntry {
	if category == "" {
		return entries
	}
	out := make([]models.AuditLogEntry, 0, len(entries))
	for _, e := range entries {
		if Categorize(e.ChangedDescription) == category {
			out = append(out, e)
		}
	}
	return out
}
