package vanilla

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
)

// DecodeValues reads a posted form produced by this renderer back into a
// value map keyed by field id. Plain text fields are skipped. Checkboxes
// that were not posted decode as false; other absent fields are left out.
func DecodeValues(form model.FormModel, posted url.Values) map[string]any {
	values := make(map[string]any, len(form.Fields))
	for _, field := range form.Fields {
		if !field.Type.Editable() {
			continue
		}
		raw, present := posted[field.ID]
		switch field.Type {
		case model.FieldTypeCheckbox:
			values[field.ID] = present && checked(raw)
		case model.FieldTypeMultiSelect:
			values[field.ID] = nonEmpty(raw)
		case model.FieldTypeDateTimeRange:
			if parts := nonEmpty(raw); len(parts) == 2 {
				values[field.ID] = parts
			} else if present {
				values[field.ID] = nil
			}
		default:
			if present && len(raw) > 0 {
				values[field.ID] = raw[0]
			}
		}
	}
	return values
}

func checked(raw []string) bool {
	for _, value := range raw {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "on", "1", "yes":
			return true
		}
	}
	return false
}

func nonEmpty(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, value := range raw {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
