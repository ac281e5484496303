// lookup.go
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

// Package basetypes serves the hierarchical lookup values behind select fields.
package basetypes

import (
	"context"
	"fmt"

	"github.com/localnerve/archhub/internal/models"
	"gorm.io/gorm"
)

// Option is one selectable value. Value and Label are both the base value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Lookup is an immutable, ordered snapshot of the base_types table
type Lookup struct {
	entries []models.BaseTypeEntry
	byID    map[string]int
	types   []string
}

// Load reads every base type entry in insertion order
func Load(ctx context.Context, db *gorm.DB) (*Lookup, error) {
	var entries []models.BaseTypeEntry
	if err := db.WithContext(ctx).Order("position").Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load base types: %w", err)
	}
	return New(entries), nil
}

// New builds a lookup over entries, keeping their order
func New(entries []models.BaseTypeEntry) *Lookup {
	l := &Lookup{
		entries: append([]models.BaseTypeEntry(nil), entries...),
		byID:    make(map[string]int, len(entries)),
	}

	seen := make(map[string]bool)
	for i, e := range entries {
		l.byID[e.ID] = i
		if !seen[e.BaseType] {
			seen[e.BaseType] = true
			l.types = append(l.types, e.BaseType)
		}
	}
	return l
}

func (l *Lookup) options(match func(models.BaseTypeEntry) bool) []Option {
	out := make([]Option, 0)
	for _, e := range l.entries {
		if match(e) {
			out = append(out, Option{Value: e.BaseValue, Label: e.BaseValue})
		}
	}
	return out
}

// OptionsFor returns the options of one base type
func (l *Lookup) OptionsFor(baseType string) []Option {
	return l.options(func(e models.BaseTypeEntry) bool {
		return e.BaseType == baseType
	})
}

// OptionsForParent returns the options of baseType whose parent has the
// display name parentValue
func (l *Lookup) OptionsForParent(baseType, parentValue string) []Option {
	return l.options(func(e models.BaseTypeEntry) bool {
		return e.BaseType == baseType && e.ParentName != nil && *e.ParentName == parentValue
	})
}

// OptionsWithParent narrows by parent only when parentValue is set
func (l *Lookup) OptionsWithParent(baseType, parentValue string) []Option {
	if parentValue == "" {
		return l.OptionsFor(baseType)
	}
	return l.OptionsForParent(baseType, parentValue)
}

// ByID returns the entry with id, or nil
func (l *Lookup) ByID(id string) *models.BaseTypeEntry {
	i, ok := l.byID[id]
	if !ok {
		return nil
	}
	e := l.entries[i]
	return &e
}

// ByValue returns the first entry of baseType with value, or nil
func (l *Lookup) ByValue(baseType, value string) *models.BaseTypeEntry {
	for _, e := range l.entries {
		if e.BaseType == baseType && e.BaseValue == value {
			return &e
		}
	}
	return nil
}

// Types returns the distinct base types in first-seen order
func (l *Lookup) Types() []string {
	return append([]string(nil), l.types...)
}

// Entries returns a copy of every entry
func (l *Lookup) Entries() []models.BaseTypeEntry {
	return append([]models.BaseTypeEntry(nil), l.entries...)
}
