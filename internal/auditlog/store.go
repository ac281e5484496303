// store.go
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

package auditlog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/localnerve/archhub/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Store is the append-only audit log
type Store struct {
	db *gorm.DB
}

// NewStore creates an audit log store over db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a store bound to an open transaction
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

func (s *Store) query(ctx context.Context, name string) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.AuditLogEntry{}).
		Clauses(hints.Comment("select", "archhub:auditlog:"+name))
}

// Append records a change. Id, timestamp and author are filled when empty.
func (s *Store) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	entry.CatalogueID = strings.TrimSpace(entry.CatalogueID)
	if entry.CatalogueID == "" {
		return errors.New("audit log entry requires a catalogue id")
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// ByCatalogueID returns the history of one record, newest first
func (s *Store) ByCatalogueID(ctx context.Context, catalogueID string) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := s.query(ctx, "by-catalogue").
		Where("catalogue_id = ?", catalogueID).
		Order("created_on DESC").Order("id DESC").
		Find(&entries).Error
	return entries, err
}

// All returns every entry, newest first
func (s *Store) All(ctx context.Context) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := s.query(ctx, "all").
		Order("created_on DESC").Order("id DESC").
		Find(&entries).Error
	return entries, err
}

// ByID returns one entry, or nil when there is none
func (s *Store) ByID(ctx context.Context, id string) (*models.AuditLogEntry, error) {
	var entry models.AuditLogEntry
	err := s.query(ctx, "by-id").Where("id = ?", id).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ByUser returns the entries written by user, newest first
func (s *Store) ByUser(ctx context.Context, user string) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := s.query(ctx, "by-user").
		Where("created_by = ?", user).
		Order("created_on DESC").Order("id DESC").
		Find(&entries).Error
	return entries, err
}

// ByDateRange returns the entries created within [start, end], newest first.
// A zero bound is open.
func (s *Store) ByDateRange(ctx context.Context, start, end time.Time) ([]models.AuditLogEntry, error) {
	q := s.query(ctx, "by-date")
	if !start.IsZero() {
		q = q.Where("created_on >= ?", start.UTC())
	}
	if !end.IsZero() {
		q = q.Where("created_on <= ?", end.UTC())
	}

	var entries []models.AuditLogEntry
	err := q.Order("created_on DESC").Order("id DESC").Find(&entries).Error
	return entries, err
}
