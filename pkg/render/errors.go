package render

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages keyed by field id.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises form-level error slices,
// trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapError converts a pipeline error into an ErrorMapping. Validation errors
// keep their field placement; anything else becomes a form-level message.
func MapError(form model.FormModel, err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		return MapErrorPayload(form, verr.Fields)
	}
	return ErrorMapping{Form: normalizeMessages([]string{err.Error()})}
}

// MapErrorPayload normalises server error payloads into field ids. Keys may
// be plain ids, dotted or JSON pointer paths ("/body/name", "data.name",
// "items[0].name"); the first segment naming a field wins. Unknown keys are
// kept as form-level errors so messages are not lost.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	ids := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		ids[field.ID] = struct{}{}
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		id, ok := matchField(key, ids)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[id] = append(mapping.Fields[id], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func matchField(key string, ids map[string]struct{}) (string, bool) {
	if isFormLevelKey(key) {
		return "", false
	}
	if _, ok := ids[strings.TrimSpace(key)]; ok {
		return strings.TrimSpace(key), true
	}
	for _, segment := range pathSegments(key) {
		if _, numeric := strconv.Atoi(segment); numeric == nil {
			continue
		}
		if _, ok := ids[segment]; ok {
			return segment, true
		}
	}
	return "", false
}

func pathSegments(path string) []string {
	clean := strings.NewReplacer("[", ".", "]", "", "~1", "/", "~0", "~").Replace(strings.TrimSpace(path))
	return strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/' || r == '#' || r == '$'
	})
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "msg", "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}
