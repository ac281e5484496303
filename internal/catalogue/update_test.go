package catalogue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/localnerve/archhub/internal/auditlog"
	"github.com/localnerve/archhub/internal/catalogue"
	"github.com/localnerve/archhub/internal/testhelpers"
	"github.com/localnerve/archhub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateWritesAuditEntries(t *testing.T) {
	db := testhelpers.NewTestDB(t, true)
	store := catalogue.NewStore(db)
	audit := auditlog.NewStore(db)
	ctx := context.Background()

	patch := []byte(`[
		{"op": "replace", "path": "/currentTier", "value": "Tier 0"},
		{"op": "replace", "path": "/lifecycleStatus", "value": "Deprecated"}
	]`)

	record, entries, err := store.Update(ctx, "TA100103", patch, "jane.architect")
	require.NoError(t, err)
	assert.Equal(t, "Tier 0", record.CurrentTier)
	assert.Equal(t, "Deprecated", record.LifecycleStatus)
	assert.Equal(t, "jane.architect", record.UpdatedBy)

	descriptions := make([]string, 0, len(entries))
	for _, e := range entries {
		descriptions = append(descriptions, e.ChangedDescription)
		assert.Equal(t, "jane.architect", e.CreatedBy)
	}
	assert.ElementsMatch(t, []string{
		"Tier changed from Tier 1 to Tier 0",
		"Lifecycle status changed from Production to Deprecated",
	}, descriptions)

	history, err := audit.ByCatalogueID(ctx, "TA100103")
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, auditlog.CategoryChange, auditlog.Categorize(history[0].ChangedDescription))

	saved, err := store.GetByID(ctx, "TA100103")
	require.NoError(t, err)
	assert.Equal(t, "Tier 0", saved.CurrentTier)
}

func TestUpdateNestedField(t *testing.T) {
	store := newStore(t)

	_, entries, err := store.Update(context.Background(), "TA100101",
		[]byte(`[{"op": "replace", "path": "/strategy/longTerm", "value": "Transform"}]`), "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "system", entries[0].CreatedBy)
	assert.Contains(t, entries[0].ChangedDescription, "strategy.longTerm changed from ")
	assert.Contains(t, entries[0].ChangedDescription, " to Transform")
}

func TestUpdateNoChange(t *testing.T) {
	store := newStore(t)

	record, entries, err := store.Update(context.Background(), "TA100101",
		[]byte(`[{"op": "replace", "path": "/currentTier", "value": "Tier 0"}]`), "someone")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, "arch.admin", record.UpdatedBy)
}

func TestUpdateRejectsInvalidResult(t *testing.T) {
	db := testhelpers.NewTestDB(t, true)
	store := catalogue.NewStore(db)
	ctx := context.Background()

	_, _, err := store.Update(ctx, "TA100101",
		[]byte(`[{"op": "replace", "path": "/currentTier", "value": "Tier 7"}]`), "someone")
	require.ErrorIs(t, err, catalogue.ErrInvalidRecord)

	var verrs types.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "currentTier")

	history, err := auditlog.NewStore(db).ByCatalogueID(ctx, "TA100101")
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestUpdateErrors(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, _, err := store.Update(ctx, "TA999999", []byte(`[{"op": "replace", "path": "/currentTier", "value": "Tier 0"}]`), "")
	assert.ErrorIs(t, err, catalogue.ErrNotFound)

	_, _, err = store.Update(ctx, "TA100101", []byte(`not a patch`), "")
	assert.ErrorIs(t, err, catalogue.ErrInvalidPatch)

	_, _, err = store.Update(ctx, "TA100101", []byte(`[{"op": "replace", "path": "/id", "value": "TA1"}]`), "")
	assert.ErrorIs(t, err, catalogue.ErrInvalidPatch)

	_, _, err = store.Update(ctx, "TA100101", []byte(`[{"op": "remove", "path": "/missing"}]`), "")
	assert.ErrorIs(t, err, catalogue.ErrInvalidPatch)
}

func TestUpdateCannotReplaceIdentity(t *testing.T) {
	db := testhelpers.NewTestDB(t, true)
	store := catalogue.NewStore(db)
	ctx := context.Background()

	current, err := store.GetByID(ctx, "TA100101")
	require.NoError(t, err)
	require.NotNil(t, current)

	whole := *current
	whole.ID = "ZZ999999"
	whole.CreatedBy = "mallory"
	doc, err := json.Marshal(&whole)
	require.NoError(t, err)

	patches := map[string]string{
		"root replace": `[{"op": "replace", "path": "", "value": ` + string(doc) + `}]`,
		"move from id": `[{"op": "move", "from": "/id", "path": "/description"}]`,
		"created_by":   `[{"op": "replace", "path": "/created_by", "value": "mallory"}]`,
		"updated_on":   `[{"op": "remove", "path": "/updated_on"}]`,
		"escaped root": `[{"op": "add", "path": "/", "value": "x"}]`,
	}
	for name, patch := range patches {
		_, entries, err := store.Update(ctx, "TA100101", []byte(patch), "tester")
		assert.ErrorIs(t, err, catalogue.ErrInvalidPatch, name)
		assert.Empty(t, entries, name)
	}

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 16)

	moved, err := store.GetByID(ctx, "ZZ999999")
	require.NoError(t, err)
	assert.Nil(t, moved)

	after, err := store.GetByID(ctx, "TA100101")
	require.NoError(t, err)
	assert.Equal(t, current.CreatedBy, after.CreatedBy)

	logs, err := auditlog.NewStore(db).ByCatalogueID(ctx, "TA100101")
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}
