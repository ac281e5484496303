// update.go
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

package catalogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/localnerve/archhub/internal/auditlog"
	"github.com/localnerve/archhub/internal/models"
	"github.com/wI2L/jsondiff"
	"gorm.io/gorm"
)

var (
	ErrInvalidPatch  = errors.New("invalid patch")
	ErrInvalidRecord = errors.New("invalid application record")
)

// Attributes a patch may not touch
var immutablePaths = []string{"/id", "/created_by", "/created_on", "/updated_by", "/updated_on"}

var fieldLabels = map[string]string{
	"lifecycleStatus": "Lifecycle status",
	"currentTier":     "Tier",
	"targetTier":      "Target tier",
}

// Update applies an RFC 6902 patch to a record, validates the result and
// saves it together with one audit entry per changed attribute.
func (s *Store) Update(ctx context.Context, id string, patch []byte, actor string) (*models.ApplicationRecord, []models.AuditLogEntry, error) {
	decoded, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	for _, op := range decoded {
		path, err := op.Path()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
		}
		if err := checkPatchPath(path); err != nil {
			return nil, nil, err
		}
		if op.Kind() == "move" {
			from, err := op.From()
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
			}
			if err := checkPatchPath(from); err != nil {
				return nil, nil, err
			}
		}
	}

	if strings.TrimSpace(actor) == "" {
		actor = "system"
	}

	var (
		updated *models.ApplicationRecord
		entries []models.AuditLogEntry
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.WithTx(tx)

		current, err := store.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		before, err := json.Marshal(current)
		if err != nil {
			return err
		}
		after, err := decoded.Apply(before)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPatch, err)
		}

		var record models.ApplicationRecord
		if err := json.Unmarshal(after, &record); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPatch, err)
		}
		if err := sameSystemFields(current, &record); err != nil {
			return err
		}
		Normalize(&record)

		// Diff the normalized record so whitespace-only edits are not logged
		normalized, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		ops, err := jsondiff.CompareJSON(before, normalized)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			updated = current
			return nil
		}

		record.UpdatedBy = actor
		record.UpdatedOn = s.now().UTC()
		if err := Validate(&record); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}

		if err := tx.Save(&record).Error; err != nil {
			return fmt.Errorf("failed to save application %s: %w", id, err)
		}

		var beforeDoc, afterDoc map[string]any
		_ = json.Unmarshal(before, &beforeDoc)
		_ = json.Unmarshal(normalized, &afterDoc)

		audit := auditlog.NewStore(tx)
		for _, op := range ops {
			path := string(op.Path)
			entry := models.AuditLogEntry{
				CatalogueID:        id,
				ChangedDescription: describeChange(path, valueAt(beforeDoc, path), valueAt(afterDoc, path)),
				CreatedBy:          actor,
				CreatedOn:          record.UpdatedOn,
			}
			if err := audit.Append(ctx, &entry); err != nil {
				return fmt.Errorf("failed to append audit entry for %s: %w", id, err)
			}
			entries = append(entries, entry)
		}

		updated = &record
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return updated, entries, nil
}

func checkPatchPath(path string) error {
	if path == "" || path == "/" {
		return fmt.Errorf("%w: the whole record cannot be replaced", ErrInvalidPatch)
	}
	for _, p := range immutablePaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return fmt.Errorf("%w: %s cannot be changed", ErrInvalidPatch, p)
		}
	}
	return nil
}

// sameSystemFields rejects a patched record whose identity or provenance
// differs from the stored one, however the patch got there.
func sameSystemFields(current, patched *models.ApplicationRecord) error {
	switch {
	case patched.ID != current.ID:
		return fmt.Errorf("%w: /id cannot be changed", ErrInvalidPatch)
	case patched.CreatedBy != current.CreatedBy, !patched.CreatedOn.Equal(current.CreatedOn):
		return fmt.Errorf("%w: creation fields cannot be changed", ErrInvalidPatch)
	case patched.UpdatedBy != current.UpdatedBy, !patched.UpdatedOn.Equal(current.UpdatedOn):
		return fmt.Errorf("%w: update fields cannot be changed", ErrInvalidPatch)
	}
	return nil
}

func describeChange(path string, from, to any) string {
	field := strings.Join(pointerTokens(path), ".")
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}

	if from == nil && to == nil {
		return label + " updated"
	}
	return fmt.Sprintf("%s changed from %s to %s", label, display(from), display(to))
}

func display(v any) string {
	switch t := v.(type) {
	case nil:
		return "empty"
	case string:
		if t == "" {
			return "empty"
		}
		return t
	case map[string]any, []any:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func pointerTokens(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	tokens := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, t := range tokens {
		t = strings.ReplaceAll(t, "~1", "/")
		tokens[i] = strings.ReplaceAll(t, "~0", "~")
	}
	return tokens
}

func valueAt(doc map[string]any, path string) any {
	var cur any = doc
	for _, token := range pointerTokens(path) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[token]
	}
	return cur
}
