// engine.go
//
// Architecture Hub application catalogue service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of archhub.
// archhub is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// archhub is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with archhub.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/localnerve/archhub/internal/basetypes"
	"github.com/localnerve/archhub/internal/catalogue"
	"github.com/localnerve/archhub/internal/metrics"
	"github.com/localnerve/archhub/internal/models"
)

var (
	ErrUnknownField     = errors.New("unknown form field")
	ErrNotSelect        = errors.New("field is not a select")
	ErrInvalidValue     = errors.New("invalid field value")
	ErrStepOutOfRange   = errors.New("step out of range")
	ErrAlreadySubmitted = errors.New("form already submitted")
	ErrNoSubmitter      = errors.New("form has no submitter")
	ErrNoDraftStore     = errors.New("form has no draft store")
)

// Values holds form input keyed by dotted field key
type Values map[string]any

// Clone returns a shallow copy
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// OptionSource resolves base type options for select fields
type OptionSource interface {
	OptionsFor(baseType string) []basetypes.Option
	OptionsForParent(baseType, parentValue string) []basetypes.Option
}

// Submitter turns validated form values into a stored record
type Submitter interface {
	Submit(ctx context.Context, values Values, actor string) (*models.ApplicationRecord, error)
}

// Engine binds form metadata to its collaborators. It is shared by every session.
type Engine struct {
	Meta      *Metadata
	Options   OptionSource
	Submitter Submitter
	Drafts    DraftStore
}

// Step describes one section for a step indicator
type Step struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	Current     bool   `json:"current"`
}

// Snapshot is the externally visible session state
type Snapshot struct {
	ID          string           `json:"id"`
	CurrentStep int              `json:"currentStep"`
	Steps       []Step           `json:"steps"`
	Values      Values           `json:"values"`
	Errors      ValidationErrors `json:"errors"`
	Submitted   bool             `json:"submitted"`
	RecordID    string           `json:"recordId,omitempty"`
}

// Session is one user's pass through the form
type Session struct {
	mu sync.Mutex

	id        string
	owner     string
	engine    *Engine
	values    Values
	errors    ValidationErrors
	current   int
	completed map[int]bool
	record    *models.ApplicationRecord
	touched   atomic.Int64
}

// NewSession starts a session at the first step. Declared defaults fill any
// key missing from initial.
func (e *Engine) NewSession(id, owner string, initial Values) *Session {
	values := make(Values)
	for _, f := range e.Meta.Fields() {
		if d := f.Default(); d != nil {
			values[f.Key] = d
		}
	}
	for k, v := range initial {
		if f, _ := e.Meta.Field(k); f != nil {
			if coerced, err := coerce(f, v); err == nil {
				values[k] = coerced
			}
		}
	}

	s := &Session{
		id:        id,
		owner:     owner,
		engine:    e,
		values:    values,
		errors:    make(ValidationErrors),
		completed: make(map[int]bool),
	}
	s.touch()
	return s
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Owner returns the actor the session belongs to
func (s *Session) Owner() string { return s.owner }

func (s *Session) touch() { s.touched.Store(time.Now().UnixNano()) }

func (s *Session) lastTouched() time.Time {
	return time.Unix(0, s.touched.Load())
}

func (s *Session) sectionFields(i int) []*Field {
	section := &s.engine.Meta.Sections[i]
	out := make([]*Field, len(section.Fields))
	for fi := range section.Fields {
		out[fi] = &section.Fields[fi]
	}
	return out
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	sections := s.engine.Meta.Sections
	steps := make([]Step, len(sections))
	for i, sec := range sections {
		steps[i] = Step{
			ID:          sec.ID,
			Title:       sec.Title,
			Description: sec.Description,
			Completed:   s.completed[i],
			Current:     i == s.current,
		}
	}

	errs := make(ValidationErrors, len(s.errors))
	for k, v := range s.errors {
		errs[k] = v
	}

	snap := Snapshot{
		ID:          s.id,
		CurrentStep: s.current,
		Steps:       steps,
		Values:      s.values.Clone(),
		Errors:      errs,
		Submitted:   s.record != nil,
	}
	if s.record != nil {
		snap.RecordID = s.record.ID
	}
	return snap
}

// SetValue stores a value, clears its error and resets the selects in the
// current section that depend on it. The reset is one level deep.
func (s *Session) SetValue(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.record != nil {
		return ErrAlreadySubmitted
	}

	f, _ := s.engine.Meta.Field(key)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	coerced, err := coerce(f, value)
	if err != nil {
		return err
	}

	// keyed by the metadata string; key may alias a reused request buffer
	s.values[f.Key] = coerced
	delete(s.errors, f.Key)

	for _, dep := range s.sectionFields(s.current) {
		if dep.DependsOn() == f.Key {
			s.values[dep.Key] = ""
		}
	}
	return nil
}

// Next validates the current section and advances. On the last section it submits.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.record != nil {
		return ErrAlreadySubmitted
	}

	last := len(s.engine.Meta.Sections) - 1
	if s.current >= last {
		return s.submit(ctx)
	}

	errs := ValidateFields(s.sectionFields(s.current), s.values)
	if !errs.Empty() {
		s.errors = errs
		return errs
	}

	s.completed[s.current] = true
	s.current++
	return nil
}

// Previous moves back one section without validation
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.current > 0 {
		s.current--
	}
}

// GoToStep jumps to section i without validating the sections in between
func (s *Session) GoToStep(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if i < 0 || i >= len(s.engine.Meta.Sections) {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, i)
	}
	s.current = i
	return nil
}

// Options returns the choices of a select given the current values. A
// dependent select with an empty parent has no options.
func (s *Session) Options(key string) ([]basetypes.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return s.options(key)
}

func (s *Session) options(key string) ([]basetypes.Option, error) {
	f, _ := s.engine.Meta.Field(key)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if f.Select == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotSelect, key)
	}

	sel := f.Select
	if len(sel.Data) > 0 {
		return append([]basetypes.Option(nil), sel.Data...), nil
	}
	if sel.DataSource != DataSourceBaseTypes || sel.DataFilter == nil || s.engine.Options == nil {
		return []basetypes.Option{}, nil
	}

	if dep := sel.DataFilter.DependsOn; dep != "" {
		parent := strings.TrimSpace(asString(s.values[dep]))
		if parent == "" {
			return []basetypes.Option{}, nil
		}
		return s.engine.Options.OptionsForParent(sel.DataFilter.BaseType, parent), nil
	}
	return s.engine.Options.OptionsFor(sel.DataFilter.BaseType), nil
}

// SearchOptions ranks a select's options by fuzzy match on the label, best first
func (s *Session) SearchOptions(key, query string) ([]basetypes.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	options, err := s.options(key)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return options, nil
	}

	labels := make([]string, len(options))
	for i, o := range options {
		labels[i] = o.Label
	}
	ranks := fuzzy.RankFindNormalizedFold(query, labels)
	sort.Stable(ranks)

	out := make([]basetypes.Option, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, options[r.OriginalIndex])
	}
	return out, nil
}

// Submit validates every field of every section and hands the values to the
// submitter. Nothing is stored when validation fails.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.record != nil {
		return ErrAlreadySubmitted
	}
	return s.submit(ctx)
}

func (s *Session) submit(ctx context.Context) error {
	errs := ValidateFields(s.engine.Meta.Fields(), s.values)
	if !errs.Empty() {
		s.errors = errs
		return errs
	}
	if s.engine.Submitter == nil {
		return ErrNoSubmitter
	}

	record, err := s.engine.Submitter.Submit(ctx, s.values.Clone(), s.owner)
	if err != nil {
		var verrs ValidationErrors
		switch {
		case errors.As(err, &verrs):
			s.errors = verrs
		case errors.Is(err, catalogue.ErrDuplicateID):
			s.errors = ValidationErrors{"id": "Application ID already exists"}
		}
		return err
	}

	s.errors = make(ValidationErrors)
	s.completed[s.current] = true
	s.record = record
	return nil
}

// Record returns the stored record once the session is submitted
func (s *Session) Record() *models.ApplicationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// SaveDraft writes the current values to the owner's draft slot. A non-nil
// expected version must match the stored draft.
func (s *Session) SaveDraft(ctx context.Context, expected *uint64) (uint64, error) {
	s.mu.Lock()
	values := s.values.Clone()
	s.touch()
	s.mu.Unlock()

	if s.engine.Drafts == nil {
		return 0, ErrNoDraftStore
	}
	version, err := s.engine.Drafts.Save(ctx, s.owner, values, expected)
	if err != nil {
		return 0, err
	}
	metrics.DraftsSaved.Inc()
	return version, nil
}

func coerce(f *Field, value any) (any, error) {
	switch value.(type) {
	case map[string]any, []any:
		return nil, fmt.Errorf("%w: %s expects a scalar", ErrInvalidValue, f.Key)
	}

	if f.Kind == KindCheckbox {
		switch t := value.(type) {
		case nil:
			return false, nil
		case bool:
			return t, nil
		case string:
			return asBool(t), nil
		default:
			return nil, fmt.Errorf("%w: %s expects a boolean", ErrInvalidValue, f.Key)
		}
	}
	return asString(value), nil
}
