package models

import "github.com/google/uuid"

// FieldType enumerates the value kinds a template custom field accepts.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeSelect  FieldType = "select"
)

// TemplateField describes one custom field of a template schema.
type TemplateField struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"` // select only
}

// Template is a tenant-owned blueprint: items created from it must share its
// category and their custom fields must satisfy Fields.
type Template struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	Category string
	Fields   []TemplateField
}

// Location is a tenant-owned physical place items can be assigned to.
type Location struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
}

// Tenant is the multi-tenancy boundary.
type Tenant struct {
	ID   uuid.UUID
	Name string
}
