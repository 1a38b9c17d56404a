package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formkit/pkg/binding"
)

// HiddenField is a hidden input emitted alongside the configured fields, for
// example a CSRF token or the id of the record being edited.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: binding.Stringify(value)}
}

// CSRFToken constructs a hidden field carrying the provided token.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// RecordKey carries the key of the record being edited so a backend can tell
// edits from creates.
func RecordKey(keyField string, record map[string]any) (HiddenField, bool) {
	value, ok := record[keyField]
	if !ok || value == nil {
		return HiddenField{}, false
	}
	return Hidden(keyField, value), true
}

// SortHiddenFields drops unnamed entries, collapses duplicates (last wins)
// and orders the rest by name.
func SortHiddenFields(fields []HiddenField) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	byName := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		byName[name] = field.Value
	}
	out := make([]HiddenField, 0, len(byName))
	for name, value := range byName {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) == 0 {
		return nil
	}
	return out
}
