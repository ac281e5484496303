package form_test

import (
	"context"
	"errors"
	"testing"

	"github.com/localnerve/archhub/internal/basetypes"
	"github.com/localnerve/archhub/internal/database"
	"github.com/localnerve/archhub/internal/form"
	"github.com/localnerve/archhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	calls  int
	values form.Values
	actor  string
	err    error
}

func (s *recordingSubmitter) Submit(_ context.Context, values form.Values, actor string) (*models.ApplicationRecord, error) {
	s.calls++
	s.values = values
	s.actor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &models.ApplicationRecord{ID: "TA123456", ApplicationName: "treasury-hub"}, nil
}

func newEngine(t *testing.T, submitter form.Submitter) *form.Engine {
	t.Helper()
	fx, err := database.LoadFixtures()
	require.NoError(t, err)

	return &form.Engine{
		Meta:      loadMetadata(t),
		Options:   basetypes.New(fx.BaseTypes),
		Submitter: submitter,
	}
}

// validValues fills every section of the fixture form
func validValues() form.Values {
	return form.Values{
		"applicationName":       "treasury-hub",
		"applicationCommonName": "Treasury Hub",
		"prefix":                "TRH",
		"ownerDivision":         "Corporate Banking",
		"ownerDomain":           "Cash Management",
		"architectureDomainL1":  "Business Applications",
		"architectureDomainL2":  "Core Banking",
		"architectureDomainL3":  "Accounts",
		"vendorName":            "Finastra",
		"productName":           "Kondor",
		"version":               "v7.2",
		"applicationType":       "COTS",
		"lifecycleStatus":       "Development",
		"currentTier":           "Tier 2",
		"targetTier":            "Tier 1",
		"strategy.shortTerm":    "Maintain",
		"strategy.midTerm":      "Enhance",
		"strategy.longTerm":     "Modernize",
		"confirmAccuracy":       true,
	}
}

func validationErrors(t *testing.T, err error) form.ValidationErrors {
	t.Helper()
	var verrs form.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	return verrs
}

func TestNewSessionAppliesDefaults(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", form.Values{"applicationName": "seeded", "unknown": "x"})

	snap := s.Snapshot()
	assert.Equal(t, "s1", snap.ID)
	assert.Equal(t, 0, snap.CurrentStep)
	assert.Len(t, snap.Steps, 7)
	assert.True(t, snap.Steps[0].Current)
	assert.Equal(t, true, snap.Values["is_active"])
	assert.Equal(t, false, snap.Values["deploymentLocations.enbdUAE"])
	assert.Equal(t, "seeded", snap.Values["applicationName"])
	assert.NotContains(t, snap.Values, "unknown")
}

func TestNextBlocksOnInvalidSection(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", nil)
	require.NoError(t, s.SetValue("applicationCommonName", "Treasury Hub"))
	require.NoError(t, s.SetValue("prefix", "TRH"))

	verrs := validationErrors(t, s.Next(context.Background()))
	assert.Equal(t, form.ValidationErrors{"applicationName": "This field is required"}, verrs)

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.CurrentStep)
	assert.False(t, snap.Steps[0].Completed)
	assert.Equal(t, "This field is required", snap.Errors["applicationName"])

	// Editing the field clears its error
	require.NoError(t, s.SetValue("applicationName", "treasury-hub"))
	assert.Empty(t, s.Snapshot().Errors)

	require.NoError(t, s.Next(context.Background()))
	snap = s.Snapshot()
	assert.Equal(t, 1, snap.CurrentStep)
	assert.True(t, snap.Steps[0].Completed)
	assert.True(t, snap.Steps[1].Current)
}

func TestCustomMessageOnPattern(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", validValues())
	require.NoError(t, s.SetValue("id", "bad"))

	verrs := validationErrors(t, s.Next(context.Background()))
	assert.Equal(t, "Application ID must start with 2-4 letters followed by 3-6 numbers", verrs["id"])
}

func TestPreviousAndGoToStep(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", nil)

	s.Previous()
	assert.Equal(t, 0, s.Snapshot().CurrentStep)

	// Jumping ahead skips validation of the sections in between
	require.NoError(t, s.GoToStep(5))
	assert.Equal(t, 5, s.Snapshot().CurrentStep)

	s.Previous()
	assert.Equal(t, 4, s.Snapshot().CurrentStep)

	assert.ErrorIs(t, s.GoToStep(7), form.ErrStepOutOfRange)
	assert.ErrorIs(t, s.GoToStep(-1), form.ErrStepOutOfRange)
	assert.Equal(t, 4, s.Snapshot().CurrentStep)
}

func TestDependentSelectOptions(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", nil)
	require.NoError(t, s.GoToStep(1))

	options, err := s.Options("ownerDomain")
	require.NoError(t, err)
	assert.Empty(t, options)

	require.NoError(t, s.SetValue("ownerDivision", "Technology"))
	options, err = s.Options("ownerDomain")
	require.NoError(t, err)
	assert.Len(t, options, 3)

	require.NoError(t, s.SetValue("ownerDomain", "Security"))

	// A parent with no children empties the list and clears the chosen value
	require.NoError(t, s.SetValue("ownerDivision", "Unknown Division"))
	options, err = s.Options("ownerDomain")
	require.NoError(t, err)
	assert.Empty(t, options)
	assert.Equal(t, "", s.Snapshot().Values["ownerDomain"])
}

func TestCascadeIsSingleLevel(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", nil)
	require.NoError(t, s.GoToStep(1))

	require.NoError(t, s.SetValue("architectureDomainL1", "Business Applications"))
	require.NoError(t, s.SetValue("architectureDomainL2", "Core Banking"))
	require.NoError(t, s.SetValue("architectureDomainL3", "Accounts"))

	require.NoError(t, s.SetValue("architectureDomainL1", "Technology Platforms"))

	values := s.Snapshot().Values
	assert.Equal(t, "", values["architectureDomainL2"])
	assert.Equal(t, "Accounts", values["architectureDomainL3"])
}

func TestCascadeOnlyInCurrentSection(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", nil)
	require.NoError(t, s.SetValue("ownerDomain", "Security"))

	// ownerDomain lives in section 1, the session is on section 0
	require.NoError(t, s.SetValue("ownerDivision", "Operations"))
	assert.Equal(t, "Security", s.Snapshot().Values["ownerDomain"])
}

func TestOptionsSources(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", nil)

	static, err := s.Options("applicationType")
	require.NoError(t, err)
	assert.Equal(t, []basetypes.Option{
		{Value: "COTS", Label: "COTS"},
		{Value: "Custom", Label: "Custom"},
		{Value: "SaaS", Label: "SaaS"},
	}, static)

	divisions, err := s.Options("ownerDivision")
	require.NoError(t, err)
	assert.Len(t, divisions, 4)

	_, err = s.Options("applicationName")
	assert.ErrorIs(t, err, form.ErrNotSelect)

	_, err = s.Options("nope")
	assert.ErrorIs(t, err, form.ErrUnknownField)
}

func TestSearchOptions(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", nil)

	all, err := s.SearchOptions("vendorName", "")
	require.NoError(t, err)
	assert.Len(t, all, 10)

	found, err := s.SearchOptions("vendorName", "orcl")
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, "Oracle", found[0].Value)

	none, err := s.SearchOptions("vendorName", "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSetValueRejectsBadInput(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", nil)

	assert.ErrorIs(t, s.SetValue("nope", "x"), form.ErrUnknownField)
	assert.ErrorIs(t, s.SetValue("applicationName", map[string]any{"a": 1}), form.ErrInvalidValue)
	assert.ErrorIs(t, s.SetValue("confirmAccuracy", 3.0), form.ErrInvalidValue)

	require.NoError(t, s.SetValue("confirmAccuracy", "true"))
	assert.Equal(t, true, s.Snapshot().Values["confirmAccuracy"])
}

func TestSubmitValidatesWholeForm(t *testing.T) {
	submitter := &recordingSubmitter{}
	s := newEngine(t, submitter).NewSession("s1", "tester", nil)
	require.NoError(t, s.SetValue("applicationName", "treasury-hub"))

	verrs := validationErrors(t, s.Submit(context.Background()))
	assert.Contains(t, verrs, "vendorName")
	assert.Contains(t, verrs, "confirmAccuracy")
	assert.Contains(t, verrs, "strategy.longTerm")
	assert.NotContains(t, verrs, "applicationName")
	assert.Equal(t, 0, submitter.calls)
	assert.False(t, s.Snapshot().Submitted)
}

func TestNextOnLastStepSubmits(t *testing.T) {
	submitter := &recordingSubmitter{}
	s := newEngine(t, submitter).NewSession("s1", "tester", validValues())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, s.Next(ctx), "step %d", i)
	}
	assert.Equal(t, 6, s.Snapshot().CurrentStep)
	assert.Equal(t, 0, submitter.calls)

	require.NoError(t, s.Next(ctx))
	assert.Equal(t, 1, submitter.calls)
	assert.Equal(t, "tester", submitter.actor)
	assert.Equal(t, "treasury-hub", submitter.values["applicationName"])

	snap := s.Snapshot()
	assert.True(t, snap.Submitted)
	assert.Equal(t, "TA123456", snap.RecordID)
	assert.True(t, snap.Steps[6].Completed)

	assert.ErrorIs(t, s.Next(ctx), form.ErrAlreadySubmitted)
	assert.ErrorIs(t, s.SetValue("prefix", "ABC"), form.ErrAlreadySubmitted)
	assert.Equal(t, 1, submitter.calls)
}

func TestSubmitSurfacesCollaboratorErrors(t *testing.T) {
	submitter := &recordingSubmitter{err: form.ValidationErrors{"id": "Invalid format"}}
	s := newEngine(t, submitter).NewSession("s1", "tester", validValues())

	err := s.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Invalid format", s.Snapshot().Errors["id"])
	assert.False(t, s.Snapshot().Submitted)
}

func TestSubmitWithoutSubmitter(t *testing.T) {
	s := newEngine(t, nil).NewSession("s1", "tester", validValues())
	assert.ErrorIs(t, s.Submit(context.Background()), form.ErrNoSubmitter)
}
