// seed.go
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

package database

import (
	"encoding/json"
	"fmt"

	"github.com/localnerve/archhub/data"
	"github.com/localnerve/archhub/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Fixtures is the decoded content of the static JSON fixtures
type Fixtures struct {
	Applications []models.ApplicationRecord `json:"applications"`
	AuditLogs    []models.AuditLogEntry     `json:"audit_logs"`
	BaseTypes    []models.BaseTypeEntry     `json:"base_types"`
}

// LoadFixtures decodes the embedded fixture documents
func LoadFixtures() (*Fixtures, error) {
	var fx Fixtures

	var catalogue struct {
		Applications []models.ApplicationRecord `json:"applications"`
	}
	if err := json.Unmarshal(data.CatalogueJSON, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to decode catalogue fixture: %w", err)
	}
	fx.Applications = catalogue.Applications

	var audit struct {
		AuditLogs []models.AuditLogEntry `json:"audit_logs"`
	}
	if err := json.Unmarshal(data.AuditLogsJSON, &audit); err != nil {
		return nil, fmt.Errorf("failed to decode audit log fixture: %w", err)
	}
	fx.AuditLogs = audit.AuditLogs

	var baseTypes struct {
		BaseTypes []models.BaseTypeEntry `json:"base_types"`
	}
	if err := json.Unmarshal(data.BaseTypesJSON, &baseTypes); err != nil {
		return nil, fmt.Errorf("failed to decode base type fixture: %w", err)
	}
	fx.BaseTypes = baseTypes.BaseTypes

	return &fx, nil
}

// Seed loads the fixtures into an empty database. Tables that already hold
// rows are left untouched.
func Seed(db *gorm.DB, fx *Fixtures) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64

		if err := tx.Model(&models.ApplicationRecord{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 && len(fx.Applications) > 0 {
			if err := tx.CreateInBatches(fx.Applications, 100).Error; err != nil {
				return fmt.Errorf("failed to seed applications: %w", err)
			}
			log.Info().Int("count", len(fx.Applications)).Msg("Seeded applications")
		}

		if err := tx.Model(&models.AuditLogEntry{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 && len(fx.AuditLogs) > 0 {
			if err := tx.CreateInBatches(fx.AuditLogs, 100).Error; err != nil {
				return fmt.Errorf("failed to seed audit logs: %w", err)
			}
			log.Info().Int("count", len(fx.AuditLogs)).Msg("Seeded audit logs")
		}

		if err := tx.Model(&models.BaseTypeEntry{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 && len(fx.BaseTypes) > 0 {
			// Position keeps fixture order for option lists
			for i := range fx.BaseTypes {
				fx.BaseTypes[i].Position = i
			}
			if err := tx.CreateInBatches(fx.BaseTypes, 100).Error; err != nil {
				return fmt.Errorf("failed to seed base types: %w", err)
			}
			log.Info().Int("count", len(fx.BaseTypes)).Msg("Seeded base types")
		}

		return nil
	})
}
