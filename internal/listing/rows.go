package listing

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/localnerve/archhub/internal/models"
)

// Row is a record flattened to dotted json keys, e.g. "strategy.shortTerm"
type Row map[string]any

// Direction is a sort order
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection reads a sort order, defaulting to ascending
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Descending)) {
		return Descending
	}
	return Ascending
}

// Toggle returns the next direction when a column header is selected again
func (d Direction) Toggle() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Flatten converts a record to a Row
func Flatten(record *models.ApplicationRecord) (Row, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	row := make(Row, len(doc)+16)
	flattenInto(row, "", doc)
	return row, nil
}

func flattenInto(row Row, prefix string, doc map[string]any) {
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(row, key, nested)
			continue
		}
		row[key] = v
	}
}

// Rows flattens every record, keeping order
func Rows(records []models.ApplicationRecord) ([]Row, error) {
	rows := make([]Row, 0, len(records))
	for i := range records {
		row, err := Flatten(&records[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Text renders a row value for display, filtering and export
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// Sort orders rows by field in place. The sort is stable; absent values come
// first when ascending.
func Sort(rows []Row, field string, dir Direction) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		c := compare(a[field], b[field])
		if dir == Descending {
			return -c
		}
		return c
	})
}

func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(Text(a), Text(b))
}

// Criteria selects rows. Empty criteria are ignored; all given criteria must match.
type Criteria struct {
	Tier    string            `json:"tier,omitempty"`
	Status  string            `json:"status,omitempty"`
	Type    string            `json:"type,omitempty"`
	Query   string            `json:"query,omitempty"`
	Columns map[string]string `json:"columns,omitempty"`
}

// Empty reports whether no criterion is set
func (c Criteria) Empty() bool {
	if c.Tier != "" || c.Status != "" || c.Type != "" || c.Query != "" {
		return false
	}
	for _, v := range c.Columns {
		if v != "" {
			return false
		}
	}
	return true
}

// Filter returns the rows matching c. Tier and type are exact, status ignores
// case, the query and column filters are case-insensitive substrings. The
// query matches any value of the row.
func Filter(rows []Row, c Criteria) []Row {
	query := strings.ToLower(strings.TrimSpace(c.Query))

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if c.Tier != "" && Text(row["currentTier"]) != c.Tier {
			continue
		}
		if c.Status != "" && !strings.EqualFold(Text(row["lifecycleStatus"]), c.Status) {
			continue
		}
		if c.Type != "" && Text(row["applicationType"]) != c.Type {
			continue
		}
		if query != "" && !anyContains(row, query) {
			continue
		}
		if !columnsMatch(row, c.Columns) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func anyContains(row Row, query string) bool {
	for _, v := range row {
		if strings.Contains(strings.ToLower(Text(v)), query) {
			return true
		}
	}
	return false
}

func columnsMatch(row Row, columns map[string]string) bool {
	for field, want := range columns {
		if want == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(Text(row[field])), strings.ToLower(want)) {
			return false
		}
	}
	return true
}
