package auditlog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/archhub/internal/auditlog"
	"github.com/localnerve/archhub/internal/models"
	"github.com/localnerve/archhub/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByCatalogueIDNewestFirst(t *testing.T) {
	store := auditlog.NewStore(testhelpers.NewTestDB(t, true))

	entries, err := store.ByCatalogueID(context.Background(), "TA100101")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedOn.After(entries[i-1].CreatedOn))
	}
	assert.Equal(t, "Architecture review approved", entries[0].ChangedDescription)

	none, err := store.ByCatalogueID(context.Background(), "TA100103")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAppendFillsDefaults(t *testing.T) {
	store := auditlog.NewStore(testhelpers.NewTestDB(t, false))
	ctx := context.Background()

	entry := models.AuditLogEntry{CatalogueID: "TA100101", ChangedDescription: "Application created - core-banking"}
	require.NoError(t, store.Append(ctx, &entry))

	assert.True(t, strings.HasPrefix(entry.ID, "AL"))
	assert.Equal(t, "system", entry.CreatedBy)
	assert.False(t, entry.CreatedOn.IsZero())

	got, err := store.ByID(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.ChangedDescription, got.ChangedDescription)

	missing, err := store.ByID(ctx, "AL0")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, store.Append(ctx, &models.AuditLogEntry{ChangedDescription: "orphan"}))
}

func TestAllAndByUser(t *testing.T) {
	store := auditlog.NewStore(testhelpers.NewTestDB(t, true))
	ctx := context.Background()

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 16)
	assert.Equal(t, "AL1705017600000", all[0].ID)

	board, err := store.ByUser(ctx, "sec.board")
	require.NoError(t, err)
	assert.Len(t, board, 5)
	for _, e := range board {
		assert.Equal(t, "sec.board", e.CreatedBy)
	}
}

func TestByDateRange(t *testing.T) {
	store := auditlog.NewStore(testhelpers.NewTestDB(t, true))
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 4, 10, 0, 0, 0, time.UTC)

	entries, err := store.ByDateRange(ctx, start, end)
	require.NoError(t, err)

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	// Both bounds are inclusive
	assert.Equal(t, []string{"AL1704326400000", "AL1705276800000", "AL1704240000000"}, ids)

	open, err := store.ByDateRange(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, open, 16)
}
