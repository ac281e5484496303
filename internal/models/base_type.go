package models

import (
	"time"
)

// BaseTypeEntry is a row of the hierarchical lookup table used for select options
type BaseTypeEntry struct {
	ID         string    `gorm:"primaryKey;size:32" json:"id"`
	Position   int       `gorm:"not null;default:0;index" json:"-"`
	BaseType   string    `gorm:"size:100;not null;index:idx_base_type_value" json:"base_type"`
	BaseValue  string    `gorm:"size:255;not null;index:idx_base_type_value" json:"base_value"`
	Parent     *string   `gorm:"size:32" json:"parent"`
	ParentName *string   `gorm:"size:255" json:"parent_name"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
	CreatedBy  string    `gorm:"size:255" json:"created_by"`
	CreatedOn  time.Time `json:"created_on"`
	UpdatedBy  string    `gorm:"size:255" json:"updated_by"`
	UpdatedOn  time.Time `json:"updated_on"`
}

// TableName overrides the table name for BaseTypeEntry
func (BaseTypeEntry) TableName() string {
	return "base_types"
}
