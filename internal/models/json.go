package models

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a JSON document column. It maps to each dialect's native JSON type
// where one exists.
type JSON struct {
	datatypes.JSON
}

var jsonColumnTypes = map[string]string{
	"mysql":     "JSON",
	"sqlite":    "JSON",
	"postgres":  "JSONB",
	"sqlserver": "NVARCHAR(MAX)",
}

// NewJSON encodes v as a JSON column value
func NewJSON(v any) (JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return JSON{}, err
	}
	return JSON{JSON: datatypes.JSON(raw)}, nil
}

// Decode unmarshals the document into v. An empty column leaves v untouched.
func (j JSON) Decode(v any) error {
	if len(j.JSON) == 0 {
		return nil
	}
	return json.Unmarshal(j.JSON, v)
}

func (j JSON) Value() (driver.Value, error) {
	return j.JSON.Value()
}

func (j *JSON) Scan(value interface{}) error {
	return j.JSON.Scan(value)
}

// GormDBDataType picks the column type per dialect. sqlserver has no json type.
func (JSON) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if t, ok := jsonColumnTypes[db.Dialector.Name()]; ok {
		return t
	}
	return "TEXT"
}
