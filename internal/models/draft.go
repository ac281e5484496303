package models

import (
	"time"
)

// FormDraft holds the most recent unsubmitted form values for one owner
type FormDraft struct {
	DraftID      uint64 `gorm:"primaryKey;autoIncrement"`
	Owner        string `gorm:"size:255;not null;uniqueIndex"`
	DraftVersion uint64 `gorm:"not null;default:0"`
	Payload      JSON
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name for FormDraft
func (FormDraft) TableName() string {
	return "form_drafts"
}
