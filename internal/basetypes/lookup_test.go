package basetypes_test

import (
	"context"
	"testing"

	"github.com/localnerve/archhub/internal/basetypes"
	"github.com/localnerve/archhub/internal/models"
	"github.com/localnerve/archhub/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadLookup(t *testing.T) *basetypes.Lookup {
	lookup, err := basetypes.Load(context.Background(), testhelpers.NewTestDB(t, true))
	require.NoError(t, err)
	return lookup
}

func values(options []basetypes.Option) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		out = append(out, o.Value)
	}
	return out
}

func TestOptionsForKeepsOrder(t *testing.T) {
	lookup := loadLookup(t)

	options := lookup.OptionsFor("division")
	assert.Equal(t, []string{"Technology", "Retail Banking", "Corporate Banking", "Operations"}, values(options))
	for _, o := range options {
		assert.Equal(t, o.Value, o.Label)
	}

	assert.Empty(t, lookup.OptionsFor("unknown"))
	assert.NotNil(t, lookup.OptionsFor("unknown"))
}

func TestOptionsForParent(t *testing.T) {
	lookup := loadLookup(t)

	assert.Equal(t, []string{"Infrastructure", "Security", "Data"}, values(lookup.OptionsForParent("domain", "Technology")))
	assert.Equal(t, []string{"Core Banking", "Channels"}, values(lookup.OptionsForParent("architecture_domain_l2", "Business Applications")))
	assert.Empty(t, lookup.OptionsForParent("domain", "Nowhere"))
}

func TestOptionsWithParent(t *testing.T) {
	lookup := loadLookup(t)

	assert.Len(t, lookup.OptionsWithParent("domain", ""), 8)
	assert.Equal(t, []string{"Trade Finance", "Cash Management"}, values(lookup.OptionsWithParent("domain", "Corporate Banking")))
}

func TestByIDAndValue(t *testing.T) {
	lookup := loadLookup(t)

	entry := lookup.ByID("BT020")
	require.NotNil(t, entry)
	assert.Equal(t, "Identity", entry.BaseValue)
	assert.Nil(t, lookup.ByID("BT999"))

	vendor := lookup.ByValue("vendor", "Oracle")
	require.NotNil(t, vendor)
	assert.Equal(t, "BT033", vendor.ID)
	assert.Nil(t, lookup.ByValue("vendor", "Nobody"))
}

func TestTypes(t *testing.T) {
	lookup := loadLookup(t)

	assert.Equal(t, []string{
		"division",
		"domain",
		"architecture_domain_l1",
		"architecture_domain_l2",
		"architecture_domain_l3",
		"vendor",
	}, lookup.Types())
}

func TestNewIsImmutable(t *testing.T) {
	entries := []models.BaseTypeEntry{{ID: "A1", BaseType: "vendor", BaseValue: "One"}}
	lookup := basetypes.New(entries)

	copied := lookup.Entries()
	copied[0].BaseValue = "Changed"
	assert.Equal(t, "One", lookup.OptionsFor("vendor")[0].Value)
}
