package form_test

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/archhub/internal/auditlog"
	"github.com/localnerve/archhub/internal/basetypes"
	"github.com/localnerve/archhub/internal/catalogue"
	"github.com/localnerve/archhub/internal/form"
	"github.com/localnerve/archhub/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecordExpandsDottedKeys(t *testing.T) {
	values := validValues()
	values["deploymentLocations.ei"] = true
	values["created_on"] = "2025-03-01T09:30"
	values["integrationPointId"] = "INT_TREASURY"

	record, err := form.BuildRecord(values)
	require.NoError(t, err)

	assert.Equal(t, "treasury-hub", record.ApplicationName)
	assert.Equal(t, "Maintain", record.Strategy.ShortTerm)
	assert.Equal(t, "Modernize", record.Strategy.LongTerm)
	assert.True(t, record.DeploymentLocations.EI)
	assert.False(t, record.DeploymentLocations.EnbdUAE)
	assert.True(t, record.IsActive)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), record.CreatedOn)
	require.NotNil(t, record.IntegrationPointID)
	assert.Equal(t, "INT_TREASURY", *record.IntegrationPointID)

	values["is_active"] = false
	record, err = form.BuildRecord(values)
	require.NoError(t, err)
	assert.False(t, record.IsActive)
}

func TestSubmitEndToEnd(t *testing.T) {
	db := testhelpers.NewTestDB(t, true)
	ctx := context.Background()

	lookup, err := basetypes.Load(ctx, db)
	require.NoError(t, err)

	store := catalogue.NewStore(db)
	audit := auditlog.NewStore(db)
	engine := &form.Engine{
		Meta:      loadMetadata(t),
		Options:   lookup,
		Submitter: form.NewRecordSubmitter(db, store, "TA"),
		Drafts:    form.NewGormDraftStore(db),
	}

	registry := form.NewRegistry(engine, time.Hour)
	s := registry.Open("jane.architect", nil)

	for key, value := range validValues() {
		require.NoError(t, s.SetValue(key, value))
	}
	for i := 0; i < 7; i++ {
		require.NoError(t, s.Next(ctx), "step %d", i)
	}

	record := s.Record()
	require.NotNil(t, record)
	assert.Regexp(t, catalogue.IDPattern, record.ID)
	assert.Equal(t, "jane.architect", record.CreatedBy)
	assert.True(t, record.IsActive)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 17)

	stored, err := store.GetByID(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Kondor", stored.ProductName)
	assert.Nil(t, stored.IntegrationPointID)

	entries, err := audit.ByCatalogueID(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Application created - treasury-hub", entries[0].ChangedDescription)
	assert.Equal(t, "jane.architect", entries[0].CreatedBy)

	logs, err := audit.All(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 17)
}

func TestSubmitDuplicateIDReportsField(t *testing.T) {
	db := testhelpers.NewTestDB(t, true)
	store := catalogue.NewStore(db)
	engine := &form.Engine{
		Meta:      loadMetadata(t),
		Submitter: form.NewRecordSubmitter(db, store, "TA"),
	}

	values := validValues()
	values["id"] = "TA100101"
	s := engine.NewSession("s1", "tester", values)

	err := s.Submit(context.Background())
	assert.ErrorIs(t, err, catalogue.ErrDuplicateID)
	assert.Equal(t, "Application ID already exists", s.Snapshot().Errors["id"])

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 16)
}
