// drafts.go
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

	"github.com/localnerve/archhub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrVersion       = errors.New("E_VERSION")
)

// DraftStore keeps the most recent unsubmitted values per owner. Every save
// overwrites the previous draft; drafts are never cleared automatically.
// A non-nil expected version must equal the stored one (0 when no draft
// exists yet) or Save fails with ErrVersion and writes nothing.
type DraftStore interface {
	Save(ctx context.Context, owner string, values Values, expected *uint64) (uint64, error)
	Load(ctx context.Context, owner string) (Values, uint64, error)
}

// GormDraftStore keeps drafts in the form_drafts table
type GormDraftStore struct {
	DB *gorm.DB
}

// NewGormDraftStore creates a draft store over db
func NewGormDraftStore(db *gorm.DB) *GormDraftStore {
	return &GormDraftStore{DB: db}
}

func versionConflict(owner string, expected *uint64, stored uint64) error {
	return fmt.Errorf("%w - draft for %s is at version %d, not %d", ErrVersion, owner, stored, *expected)
}

// Save upserts the owner's draft and returns its new version
func (s *GormDraftStore) Save(ctx context.Context, owner string, values Values, expected *uint64) (uint64, error) {
	payload, err := models.NewJSON(values)
	if err != nil {
		return 0, fmt.Errorf("failed to encode draft: %w", err)
	}

	var newVersion uint64
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft models.FormDraft
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner = ?", owner).
			Take(&draft).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if expected != nil && *expected != 0 {
				return versionConflict(owner, expected, 0)
			}
			draft = models.FormDraft{
				Owner:        owner,
				DraftVersion: 1,
				Payload:      payload,
			}
			// a concurrent first save wins the unique owner index
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&draft)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w - draft for %s was created concurrently", ErrVersion, owner)
			}
			newVersion = draft.DraftVersion
			return nil
		}
		if err != nil {
			return err
		}

		if expected != nil && *expected != draft.DraftVersion {
			return versionConflict(owner, expected, draft.DraftVersion)
		}

		// the version guard in the WHERE keeps this atomic where row locks are not supported
		newVersion = draft.DraftVersion + 1
		result := tx.Model(&models.FormDraft{}).
			Where("owner = ? AND draft_version = ?", owner, draft.DraftVersion).
			Updates(map[string]any{
				"draft_version": newVersion,
				"payload":       payload,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w - draft for %s was modified concurrently", ErrVersion, owner)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return newVersion, nil
}

// Load returns the owner's draft and its version
func (s *GormDraftStore) Load(ctx context.Context, owner string) (Values, uint64, error) {
	var draft models.FormDraft
	err := s.DB.WithContext(ctx).Where("owner = ?", owner).Take(&draft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrDraftNotFound
		}
		return nil, 0, err
	}

	values := make(Values)
	if err := draft.Payload.Decode(&values); err != nil {
		return nil, 0, fmt.Errorf("failed to decode draft: %w", err)
	}
	return values, draft.DraftVersion, nil
}
