// submit.go
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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/archhub/internal/auditlog"
	"github.com/localnerve/archhub/internal/catalogue"
	"github.com/localnerve/archhub/internal/metrics"
	"github.com/localnerve/archhub/internal/models"
	"gorm.io/gorm"
)

// Keys that are kept out of the record document and handled separately
const (
	keyCreatedOn = "created_on"
	keyIsActive  = "is_active"
)

// RecordSubmitter stores a submitted form as a catalogue record and logs its creation
type RecordSubmitter struct {
	DB        *gorm.DB
	Catalogue *catalogue.Store
	IDPrefix  string

	now func() time.Time
}

// NewRecordSubmitter creates a submitter generating ids with prefix
func NewRecordSubmitter(db *gorm.DB, store *catalogue.Store, prefix string) *RecordSubmitter {
	return &RecordSubmitter{DB: db, Catalogue: store, IDPrefix: prefix, now: time.Now}
}

// BuildRecord expands dotted keys into a nested document and decodes it as a record
func BuildRecord(values Values) (*models.ApplicationRecord, error) {
	doc := make(map[string]any)
	for key, value := range values {
		if key == keyCreatedOn {
			continue
		}
		parts := strings.Split(key, ".")
		node := doc
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var record models.ApplicationRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	if s := strings.TrimSpace(asString(values[keyCreatedOn])); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: created_on: %w", ErrInvalidValue, err)
		}
		record.CreatedOn = t.UTC()
	}
	if _, ok := values[keyIsActive]; !ok {
		record.IsActive = true
	}

	return &record, nil
}

// Submit builds the record from the form values and creates it
func (s *RecordSubmitter) Submit(ctx context.Context, values Values, actor string) (*models.ApplicationRecord, error) {
	record, err := BuildRecord(values)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, record, actor, "form")
}

// Create validates the record, then adds it and its creation entry in one
// transaction. A missing id is generated. source labels the created metric.
func (s *RecordSubmitter) Create(ctx context.Context, record *models.ApplicationRecord, actor, source string) (*models.ApplicationRecord, error) {
	if strings.TrimSpace(actor) == "" {
		actor = "system"
	}
	now := s.now().UTC()
	record.CreatedBy = actor
	record.UpdatedBy = actor
	if record.CreatedOn.IsZero() {
		record.CreatedOn = now
	}
	record.UpdatedOn = now
	catalogue.Normalize(record)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.Catalogue.WithTx(tx)

		if record.ID == "" {
			id, err := store.NextID(ctx, s.IDPrefix)
			if err != nil {
				return err
			}
			record.ID = id
		}

		if err := catalogue.Validate(record); err != nil {
			metrics.ValidationFailures.WithLabelValues(source).Inc()
			return fmt.Errorf("%w: %w", catalogue.ErrInvalidRecord, err)
		}

		if _, err := store.Add(ctx, record); err != nil {
			return err
		}

		return auditlog.NewStore(tx).Append(ctx, &models.AuditLogEntry{
			CatalogueID:        record.ID,
			ChangedDescription: "Application created - " + record.ApplicationName,
			CreatedBy:          actor,
			CreatedOn:          now,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ApplicationsCreated.WithLabelValues(source).Inc()
	return record, nil
}
