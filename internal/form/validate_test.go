package form_test

import (
	"encoding/json"
	"testing"

	"github.com/localnerve/archhub/internal/form"
	"github.com/stretchr/testify/assert"
)

// field loads a one-field form so the field carries a compiled pattern
func field(kind form.Kind, v form.Validation) *form.Field {
	def := map[string]any{
		"sequence":   1,
		"type":       kind,
		"title":      "F",
		"field":      "f",
		"columnSize": 6,
		"validation": v,
	}
	if kind == form.KindSelect {
		def["data"] = []map[string]string{{"value": "a", "label": "A"}}
	}
	doc := map[string]any{
		"name": "x",
		"sections": []any{map[string]any{
			"id":     "a",
			"title":  "A",
			"fields": []any{def},
		}},
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	meta, err := form.Load(raw)
	if err != nil {
		panic(err)
	}
	return meta.Fields()[0]
}

func TestTextboxPolicy(t *testing.T) {
	required := field(form.KindTextbox, form.Validation{Required: true, MinLength: 3, MaxLength: 10, Pattern: "^[a-z-]+$"})

	assert.Equal(t, "This field is required", required.Check(nil))
	assert.Equal(t, "This field is required", required.Check("   "))
	assert.Equal(t, "Minimum length is 3 characters", required.Check("ab"))
	assert.Equal(t, "Maximum length is 10 characters", required.Check("abcdefghijk"))
	assert.Equal(t, "Invalid format", required.Check("ABC"))
	assert.Empty(t, required.Check("core-bank"))
	// Length counts characters, not bytes
	assert.Equal(t, "Minimum length is 3 characters", field(form.KindTextbox, form.Validation{Required: true, MinLength: 3}).Check("éé"))

	optional := field(form.KindTextbox, form.Validation{MinLength: 5, MaxLength: 8, Pattern: "^INT_[A-Z]+$", CustomMessage: "Must start with INT_"})
	assert.Empty(t, optional.Check(""))
	assert.Empty(t, optional.Check(nil))
	assert.Empty(t, optional.Check("INT_A"))
	assert.Equal(t, "Maximum length is 8 characters", optional.Check("INT_ABCDE"))
	assert.Equal(t, "Must start with INT_", optional.Check("REP_A"))
}

func TestSelectPolicy(t *testing.T) {
	assert.Equal(t, "Please select an option", field(form.KindSelect, form.Validation{Required: true}).Check(""))
	assert.Empty(t, field(form.KindSelect, form.Validation{Required: true}).Check("a"))
	assert.Empty(t, field(form.KindSelect, form.Validation{}).Check(""))
}

func TestCheckboxPolicy(t *testing.T) {
	required := field(form.KindCheckbox, form.Validation{Required: true})
	assert.Equal(t, "This field must be checked", required.Check(false))
	assert.Equal(t, "This field must be checked", required.Check(nil))
	assert.Empty(t, required.Check(true))
	assert.Empty(t, required.Check("true"))
	assert.Empty(t, field(form.KindCheckbox, form.Validation{}).Check(false))
}

func TestDateTimePolicy(t *testing.T) {
	required := field(form.KindDateTime, form.Validation{Required: true})
	assert.Equal(t, "Please select a date", required.Check(""))
	assert.Equal(t, "Invalid date format", required.Check("yesterday"))
	assert.Empty(t, required.Check("2025-03-01"))
	assert.Empty(t, required.Check("2025-03-01T09:30"))
	assert.Empty(t, required.Check("2025-03-01T09:30:00Z"))

	optional := field(form.KindDateTime, form.Validation{})
	assert.Empty(t, optional.Check(""))
	assert.Equal(t, "Invalid date format", optional.Check("2025-13-45"))
}
