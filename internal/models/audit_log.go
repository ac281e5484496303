package models

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// AuditLogEntry is an append-only record of a change to a catalogue entry
type AuditLogEntry struct {
	ID                 string    `gorm:"primaryKey;size:40" json:"id"`
	CatalogueID        string    `gorm:"size:32;not null;index" json:"catalogue_id"`
	ChangedDescription string    `gorm:"type:text;not null" json:"changed_description"`
	CreatedBy          string    `gorm:"size:255;not null;index" json:"created_by"`
	CreatedOn          time.Time `gorm:"not null;index" json:"created_on"`
}

// TableName overrides the table name for AuditLogEntry
func (AuditLogEntry) TableName() string {
	return "audit_logs"
}

// BeforeCreate fills the id and timestamp when the caller left them empty
func (e *AuditLogEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewAuditLogID()
	}
	if e.CreatedOn.IsZero() {
		e.CreatedOn = time.Now().UTC()
	}
	if strings.TrimSpace(e.CreatedBy) == "" {
		e.CreatedBy = "system"
	}
	return nil
}

// NewAuditLogID returns a sortable audit log id
func NewAuditLogID() string {
	return "AL" + ulid.Make().String()
}
