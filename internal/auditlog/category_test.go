package auditlog_test

import (
	"testing"

	"github.com/localnerve/archhub/internal/auditlog"
	"github.com/localnerve/archhub/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		description string
		want        auditlog.Category
	}{
		{"Application created - core-banking", auditlog.CategoryCreation},
		{"Architecture review approved", auditlog.CategoryApproval},
		{"Replacement plan returned for clarification", auditlog.CategoryRejection},
		{"Design rejected by security board", auditlog.CategoryRejection},
		{"Tier changed from Tier 1 to Tier 0", auditlog.CategoryChange},
		{"Strategy UPDATED by domain architect", auditlog.CategoryChange},
		{"Release 4.2 deployed to production", auditlog.CategoryDeployment},
		{"Replacement plan submitted for review", auditlog.CategorySubmission},
		{"Application retired and archived", auditlog.CategoryOther},
		// First match wins
		{"Record created and approved", auditlog.CategoryCreation},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, auditlog.Categorize(tt.description))
		})
	}
}

func TestCategoryCounts(t *testing.T) {
	entries := []models.AuditLogEntry{
		{ChangedDescription: "Application created - a"},
		{ChangedDescription: "Application created - b"},
		{ChangedDescription: "Tier changed from Tier 1 to Tier 0"},
	}

	counts := auditlog.CategoryCounts(entries)
	assert.Len(t, counts, len(auditlog.Categories))
	assert.Equal(t, 2, counts[auditlog.CategoryCreation])
	assert.Equal(t, 1, counts[auditlog.CategoryChange])
	assert.Equal(t, 0, counts[auditlog.CategoryApproval])

	changes := auditlog.FilterByCategory(entries, auditlog.CategoryChange)
	assert.Len(t, changes, 1)
	assert.Len(t, auditlog.FilterByCategory(entries, ""), 3)
}
