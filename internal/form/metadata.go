package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/localnerve/archhub/internal/basetypes"
)

// Kind discriminates the field variants
type Kind string

const (
	KindTextbox  Kind = "textbox"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindDateTime Kind = "datetime"
)

// DataSourceBaseTypes selects options from the base type lookup
const DataSourceBaseTypes = "base_types"

var ErrInvalidMetadata = errors.New("invalid form metadata")

// Metadata describes a multi-step form
type Metadata struct {
	Name          string    `json:"name" validate:"required"`
	Version       int       `json:"version"`
	ListRoute     string    `json:"listRoute,omitempty"`
	GridRoute     string    `json:"gridRoute,omitempty"`
	FormRoute     string    `json:"formRoute,omitempty"`
	AddButtonName string    `json:"addButtonName,omitempty"`
	Sections      []Section `json:"sections" validate:"required,min=1,dive"`
}

// Section is one step of the form
type Section struct {
	ID          string  `json:"id" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Icon        string  `json:"icon,omitempty"`
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields" validate:"required,min=1,dive"`
}

// Validation holds the declared constraints of a field
type Validation struct {
	Required      bool   `json:"required"`
	MinLength     int    `json:"minLength,omitempty" validate:"gte=0"`
	MaxLength     int    `json:"maxLength,omitempty" validate:"gte=0"`
	Pattern       string `json:"pattern,omitempty"`
	CustomMessage string `json:"customMessage,omitempty"`

	pattern *regexp.Regexp
}

// Header is the part every field kind shares
type Header struct {
	Sequence   int        `json:"sequence" validate:"gte=0"`
	Kind       Kind       `json:"type" validate:"required,oneof=textbox select checkbox datetime"`
	Title      string     `json:"title" validate:"required"`
	Key        string     `json:"field" validate:"required"`
	IsRequired bool       `json:"isRequired"`
	ColumnSize int        `json:"columnSize" validate:"min=1,max=12"`
	Validation Validation `json:"validation"`
	Readonly   bool       `json:"readonly,omitempty"`

	IsList    bool   `json:"isList,omitempty"`
	ListType  string `json:"listType,omitempty"`
	IsPrimary bool   `json:"isPrimary,omitempty"`
	IsTitle   bool   `json:"isTitle,omitempty"`
	Heading   string `json:"heading,omitempty"`
	Link      bool   `json:"link,omitempty"`
	Route     string `json:"route,omitempty"`
}

// TextField is a single or multi line text input
type TextField struct {
	Placeholder string `json:"placeholder,omitempty"`
	Multiline   bool   `json:"multiline,omitempty"`
	Rows        int    `json:"rows,omitempty" validate:"gte=0"`
}

// DataFilter selects base type options, optionally narrowed by a parent field
type DataFilter struct {
	BaseType  string `json:"base_type" validate:"required"`
	DependsOn string `json:"dependsOn,omitempty"`
}

// SelectField takes options from static data or the base type lookup
type SelectField struct {
	Placeholder string             `json:"placeholder,omitempty"`
	Searchable  bool               `json:"isSearchable"`
	DataSource  string             `json:"dataSource,omitempty" validate:"omitempty,eq=base_types"`
	DataFilter  *DataFilter        `json:"dataFilter,omitempty"`
	Data        []basetypes.Option `json:"data,omitempty"`
}

// CheckboxField is a boolean toggle
type CheckboxField struct {
	DefaultValue bool `json:"defaultValue"`
}

// DateTimeField is a date or date and time input
type DateTimeField struct {
	DefaultValue string `json:"defaultValue,omitempty"`
}

// Field is a closed variant: the header plus exactly one kind specific part
type Field struct {
	Header

	Text     *TextField
	Select   *SelectField
	Checkbox *CheckboxField
	DateTime *DateTimeField
}

// UnmarshalJSON decodes the header and dispatches on type for the rest
func (f *Field) UnmarshalJSON(data []byte) error {
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}

	out := Field{Header: h}
	var variant any
	switch h.Kind {
	case KindTextbox:
		out.Text = &TextField{}
		variant = out.Text
	case KindSelect:
		out.Select = &SelectField{}
		variant = out.Select
	case KindCheckbox:
		out.Checkbox = &CheckboxField{}
		variant = out.Checkbox
	case KindDateTime:
		out.DateTime = &DateTimeField{}
		variant = out.DateTime
	default:
		return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidMetadata, h.Key, h.Kind)
	}
	if err := json.Unmarshal(data, variant); err != nil {
		return fmt.Errorf("field %q: %w", h.Key, err)
	}

	*f = out
	return nil
}

// MarshalJSON writes the header and the variant as one flat object
func (f Field) MarshalJSON() ([]byte, error) {
	header, err := json.Marshal(f.Header)
	if err != nil {
		return nil, err
	}
	variant := f.variant()
	if variant == nil {
		return header, nil
	}
	extra, err := json.Marshal(variant)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(extra, []byte("{}")) {
		return header, nil
	}

	// Both are JSON objects: splice the variant members into the header
	out := make([]byte, 0, len(header)+len(extra))
	out = append(out, header[:len(header)-1]...)
	out = append(out, ',')
	out = append(out, extra[1:]...)
	return out, nil
}

func (f *Field) variant() any {
	switch {
	case f.Text != nil:
		return f.Text
	case f.Select != nil:
		return f.Select
	case f.Checkbox != nil:
		return f.Checkbox
	case f.DateTime != nil:
		return f.DateTime
	}
	return nil
}

// DependsOn returns the parent field key of a dependent select
func (f *Field) DependsOn() string {
	if f.Select != nil && f.Select.DataFilter != nil {
		return f.Select.DataFilter.DependsOn
	}
	return ""
}

// Default returns the declared default value, or nil
func (f *Field) Default() any {
	switch {
	case f.Checkbox != nil:
		return f.Checkbox.DefaultValue
	case f.DateTime != nil && f.DateTime.DefaultValue != "":
		return f.DateTime.DefaultValue
	}
	return nil
}

var metadataValidator = validator.New(validator.WithRequiredStructEnabled())

// Load decodes and checks a form metadata document
func Load(raw []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		if errors.Is(err, ErrInvalidMetadata) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	if err := metadataValidator.Struct(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	if err := m.check(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	return &m, nil
}

func (m *Metadata) check() error {
	var errs []error
	keys := make(map[string]bool)

	for si := range m.Sections {
		section := &m.Sections[si]

		// Fields are presented in sequence order
		sort.SliceStable(section.Fields, func(i, j int) bool {
			return section.Fields[i].Sequence < section.Fields[j].Sequence
		})

		sectionKeys := make(map[string]bool, len(section.Fields))
		for _, f := range section.Fields {
			sectionKeys[f.Key] = true
		}

		for fi := range section.Fields {
			f := &section.Fields[fi]

			if keys[f.Key] {
				errs = append(errs, fmt.Errorf("duplicate field key %q", f.Key))
			}
			keys[f.Key] = true

			v := &f.Validation
			if v.MaxLength > 0 && v.MinLength > v.MaxLength {
				errs = append(errs, fmt.Errorf("field %q: minLength exceeds maxLength", f.Key))
			}
			if v.Pattern != "" {
				re, err := regexp.Compile(v.Pattern)
				if err != nil {
					errs = append(errs, fmt.Errorf("field %q: bad pattern: %w", f.Key, err))
				}
				v.pattern = re
			}

			if f.Select != nil {
				s := f.Select
				hasLookup := s.DataSource == DataSourceBaseTypes && s.DataFilter != nil
				if !hasLookup && len(s.Data) == 0 {
					errs = append(errs, fmt.Errorf("select %q has neither data nor a base type filter", f.Key))
				}
				if dep := f.DependsOn(); dep != "" && !sectionKeys[dep] {
					errs = append(errs, fmt.Errorf("select %q depends on %q outside its section", f.Key, dep))
				}
			}
		}
	}

	return errors.Join(errs...)
}

// Field returns the field with key and the index of its section
func (m *Metadata) Field(key string) (*Field, int) {
	for si := range m.Sections {
		for fi := range m.Sections[si].Fields {
			if m.Sections[si].Fields[fi].Key == key {
				return &m.Sections[si].Fields[fi], si
			}
		}
	}
	return nil, -1
}

// Fields returns every field in section then sequence order
func (m *Metadata) Fields() []*Field {
	var out []*Field
	for si := range m.Sections {
		for fi := range m.Sections[si].Fields {
			out = append(out, &m.Sections[si].Fields[fi])
		}
	}
	return out
}
