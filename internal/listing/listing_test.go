package listing_test

import (
	"math"
	"testing"

	"github.com/localnerve/archhub/data"
	"github.com/localnerve/archhub/internal/database"
	"github.com/localnerve/archhub/internal/form"
	"github.com/localnerve/archhub/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRows(t *testing.T) []listing.Row {
	t.Helper()
	fx, err := database.LoadFixtures()
	require.NoError(t, err)
	rows, err := listing.Rows(fx.Applications)
	require.NoError(t, err)
	require.Len(t, rows, 16)
	return rows
}

func ids(rows []listing.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = listing.Text(r["id"])
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := make([]int, 30)
	for i := range items {
		items[i] = i + 1
	}

	tests := []struct {
		name       string
		page, size int
		wantPage   int
		wantItems  []int
		start, end int
	}{
		{"first page", 1, 12, 1, items[0:12], 1, 12},
		{"last partial page", 3, 12, 3, items[24:30], 25, 30},
		{"past the end is clamped", 9, 12, 3, items[24:30], 25, 30},
		{"below one is clamped", 0, 10, 1, items[0:10], 1, 10},
		{"default size", 2, 0, 2, items[12:24], 13, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := listing.Paginate(items, tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantItems, p.Items)
			assert.Equal(t, 30, p.TotalItems)
			assert.Equal(t, tt.start, p.StartItem)
			assert.Equal(t, tt.end, p.EndItem)
		})
	}
}

func TestPaginateHugePageSize(t *testing.T) {
	items := []int{1, 2, 3}

	p := listing.Paginate(items, 2, math.MaxInt)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, items, p.Items)
	assert.Equal(t, 3, p.EndItem)
}

func TestPaginateEmpty(t *testing.T) {
	p := listing.Paginate([]string{}, 3, 10)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.StartItem)
	assert.Equal(t, 0, p.EndItem)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}

func TestVisiblePages(t *testing.T) {
	assert.Equal(t, []string{"1"}, listing.VisiblePages(1, 1))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, listing.VisiblePages(3, 5))
	assert.Equal(t, []string{"1", "2", "3", "...", "10"}, listing.VisiblePages(1, 10))
	assert.Equal(t, []string{"1", "...", "3", "4", "5", "6", "7", "...", "10"}, listing.VisiblePages(5, 10))
	assert.Equal(t, []string{"1", "...", "8", "9", "10"}, listing.VisiblePages(10, 10))
}

func TestFlatten(t *testing.T) {
	rows := fixtureRows(t)
	row := rows[0]

	assert.Equal(t, "TA100101", row["id"])
	assert.Equal(t, "Maintain", row["strategy.shortTerm"])
	assert.Equal(t, true, row["deploymentLocations.enbdUAE"])
	assert.NotContains(t, row, "strategy")
}

func TestSort(t *testing.T) {
	rows := fixtureRows(t)

	listing.Sort(rows, "vendorName", listing.Ascending)
	assert.Equal(t, "TA100108", rows[0]["id"])

	listing.Sort(rows, "id", listing.Descending)
	assert.Equal(t, "TA100116", rows[0]["id"])
	assert.Equal(t, "TA100101", rows[15]["id"])
}

func TestSortAbsentValues(t *testing.T) {
	rows := fixtureRows(t)

	listing.Sort(rows, "integrationPointId", listing.Ascending)
	assert.Nil(t, rows[0]["integrationPointId"])
	// stable: nulls keep id order
	assert.Equal(t, "TA100103", rows[0]["id"])
	assert.Equal(t, "INT_CARD_AUTH", rows[9]["integrationPointId"])

	listing.Sort(rows, "integrationPointId", listing.Descending)
	assert.Equal(t, "TA100110", rows[0]["id"])
	assert.Nil(t, rows[15]["integrationPointId"])
}

func TestSortMixedKinds(t *testing.T) {
	rows := []listing.Row{
		{"id": "c", "v": true},
		{"id": "a", "v": false},
		{"id": "b"},
	}
	listing.Sort(rows, "v", listing.Ascending)
	assert.Equal(t, []string{"b", "a", "c"}, ids(rows))

	nums := []listing.Row{{"id": "x", "n": 10.0}, {"id": "y", "n": 2.0}}
	listing.Sort(nums, "n", listing.Ascending)
	assert.Equal(t, []string{"y", "x"}, ids(nums))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, listing.Descending, listing.ParseDirection("DESC"))
	assert.Equal(t, listing.Ascending, listing.ParseDirection(""))
	assert.Equal(t, listing.Descending, listing.Ascending.Toggle())
}

func TestFilter(t *testing.T) {
	rows := fixtureRows(t)

	tests := []struct {
		name     string
		criteria listing.Criteria
		want     []string
	}{
		{"none", listing.Criteria{}, ids(rows)},
		{"tier", listing.Criteria{Tier: "Tier 0"}, []string{"TA100101", "TA100107", "TA100108", "TA100110", "TA100112"}},
		{"status ignores case", listing.Criteria{Status: "production", Type: "COTS"}, []string{"TA100101", "TA100104", "TA100109", "TA100110", "TA100112"}},
		{"query any value", listing.Criteria{Query: "ORACLE"}, []string{"TA100104", "TA100112"}},
		{"column substring", listing.Criteria{Columns: map[string]string{"vendorName": "temen"}}, []string{"TA100101", "TA100116"}},
		{"no match", listing.Criteria{Tier: "Tier 9"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(listing.Filter(rows, tt.criteria)))
		})
	}
}

func TestCriteriaEmpty(t *testing.T) {
	assert.True(t, listing.Criteria{}.Empty())
	assert.True(t, listing.Criteria{Columns: map[string]string{"id": ""}}.Empty())
	assert.False(t, listing.Criteria{Query: "x"}.Empty())
}

func newColumns(t *testing.T) *listing.Columns {
	t.Helper()
	meta, err := form.Load(data.FormMetadataJSON)
	require.NoError(t, err)
	return listing.NewColumns(meta)
}

func fields(cols []listing.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Field
	}
	return out
}

func TestColumns(t *testing.T) {
	cols := newColumns(t)

	all := cols.All()
	require.Len(t, all, 14)
	assert.Equal(t, "id", all[0].Field)
	assert.Equal(t, "ID", all[0].Title)
	assert.Equal(t, "externallyManagedService", all[13].Field)

	assert.Equal(t,
		[]string{"id", "applicationName", "ownerDivision", "vendorName", "applicationType", "lifecycleStatus", "currentTier"},
		fields(cols.Visible()))
}

func TestColumnsToggleAndMove(t *testing.T) {
	cols := newColumns(t)

	visible, err := cols.Toggle("productName")
	require.NoError(t, err)
	assert.True(t, visible)

	_, err = cols.Toggle("nope")
	assert.ErrorIs(t, err, listing.ErrUnknownColumn)

	require.NoError(t, cols.Move("currentTier", "id"))
	all := cols.All()
	assert.Equal(t, "currentTier", all[0].Field)
	assert.Equal(t, "id", all[1].Field)
	for i, c := range all {
		assert.Equal(t, i, c.Order)
	}

	assert.ErrorIs(t, cols.Move("id", "nope"), listing.ErrUnknownColumn)

	cols.ShowAll()
	assert.Len(t, cols.Visible(), 14)
}

func TestColumnsSelect(t *testing.T) {
	cols := newColumns(t)

	selected, err := cols.Select([]string{"vendorName", "id", "vendorName"})
	require.NoError(t, err)
	assert.Equal(t, []string{"vendorName", "id"}, fields(selected.Visible()))
	assert.Len(t, selected.All(), 14)

	// the source configuration is untouched
	assert.Len(t, cols.Visible(), 7)

	_, err = cols.Select([]string{"description"})
	assert.ErrorIs(t, err, listing.ErrUnknownColumn)
}
