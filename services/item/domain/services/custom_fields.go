package services

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

// dateLayouts are the accepted encodings of a date custom field.
var dateLayouts = []string{time.DateOnly, time.RFC3339}

// ValidateCustomFields checks values against the template schema. Every
// failing key is collected into a single *domain.CustomFieldsError so callers
// can report all problems at once. A nil template accepts any values.
func ValidateCustomFields(tmpl *models.Template, values map[string]any) error {
	if tmpl == nil {
		return nil
	}

	problems := map[string]string{}
	known := make(map[string]struct{}, len(tmpl.Fields))

	for _, f := range tmpl.Fields {
		known[f.Key] = struct{}{}
		v, present := values[f.Key]
		if !present || v == nil {
			if f.Required {
				problems[f.Key] = "is required"
			}
			continue
		}
		if msg := checkFieldValue(f, v); msg != "" {
			problems[f.Key] = msg
		}
	}

	for k := range values {
		if _, ok := known[k]; !ok {
			problems[k] = "is not defined by the template"
		}
	}

	if len(problems) > 0 {
		return &domain.CustomFieldsError{Fields: problems}
	}
	return nil
}

func checkFieldValue(f models.TemplateField, v any) string {
	switch f.Type {
	case models.FieldTypeText:
		if _, ok := v.(string); !ok {
			return "must be a string"
		}
	case models.FieldTypeNumber:
		switch v.(type) {
		case float64, float32, int, int32, int64, json.Number:
		default:
			return "must be a number"
		}
	case models.FieldTypeBoolean:
		if _, ok := v.(bool); !ok {
			return "must be a boolean"
		}
	case models.FieldTypeDate:
		s, ok := v.(string)
		if !ok || !parsesAsDate(s) {
			return "must be a date (YYYY-MM-DD or RFC 3339)"
		}
	case models.FieldTypeSelect:
		s, ok := v.(string)
		if !ok || !slices.Contains(f.Options, s) {
			return fmt.Sprintf("must be one of %v", f.Options)
		}
	default:
		return fmt.Sprintf("has unsupported type %q", f.Type)
	}
	return ""
}

func parsesAsDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
