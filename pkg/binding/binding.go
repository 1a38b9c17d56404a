package binding

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Source carries the per-pass inputs that are not part of the configuration.
type Source struct {
	Mode    model.Mode
	Initial map[string]any
	// Ancestor seeds reference fields of new records. Edit mode ignores it.
	Ancestor map[string]any
	// ItemOptions are attributes applied to every bound field. Field props
	// override them key by key.
	ItemOptions map[string]string
	// Location is used when parsing date strings. Defaults to time.Local.
	Location *time.Location
}

// Bound is the renderer-facing result for a single field.
type Bound struct {
	Key           string
	Field         model.Field
	Value         any
	Options       []model.Option
	Tree          []model.TreeNode
	Editable      bool
	ShowLabel     bool
	InlineCaption bool
	Hidden        bool
	Attributes    map[string]string
}

// DateRange is the bound value of a datetime-range field.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BindAll binds every field with the default registry.
func BindAll(fields []model.Field, src Source) ([]Bound, error) {
	return Default().BindAll(fields, src)
}

// BindAll produces one Bound per field, preserving configuration order.
func (r *Registry) BindAll(fields []model.Field, src Source) ([]Bound, error) {
	out := make([]Bound, 0, len(fields))
	for _, field := range fields {
		bound, err := r.Bind(field, fields, src)
		if err != nil {
			return nil, err
		}
		out = append(out, bound)
	}
	return out, nil
}

// Bind resolves a single field. The option source is consulted lazily and at
// most once.
func (r *Registry) Bind(field model.Field, fields []model.Field, src Source) (Bound, error) {
	bound := Bound{
		Key:        fieldKey(field),
		Field:      field,
		Value:      ResolveValue(field, fields, src),
		Editable:   field.Type.Editable(),
		ShowLabel:  !field.HideLabel,
		Hidden:     field.Hide,
		Attributes: mergeAttributes(src.ItemOptions, field.Props),
	}

	binder := r.Lookup(field.Type)
	if err := binder.Bind(&bound, newLoader(field.ArrayData), src); err != nil {
		if !errors.Is(err, ErrInvalidValue) {
			return Bound{}, fmt.Errorf("binding: field %q: %w", field.ID, err)
		}
		r.log().Warn("value bound as unset",
			zap.String("field", field.ID),
			zap.String("type", string(field.Type)),
			zap.Error(err),
		)
		bound.Value = nil
	}
	return bound, nil
}

// ResolveValue applies the value precedence: initial data, then ancestor data
// for reference fields in create mode, then the configured default, and
// finally the field's Render transform when one is declared.
func ResolveValue(field model.Field, fields []model.Field, src Source) any {
	var value any
	found := false

	if raw, ok := src.Initial[field.ID]; ok {
		if src.Mode == model.ModeEdit || !isEmpty(raw) {
			value, found = raw, true
		}
	}

	if !found && field.IsRefData && src.Mode == model.ModeCreate && src.Ancestor != nil {
		if raw, ok := src.Ancestor[field.RefField]; ok && raw != nil {
			value = raw
		}
	}

	if value == nil && field.DefaultValue != nil {
		value = field.DefaultValue
	}

	if field.Render != nil {
		value = field.Render(value, fields, src.Initial)
	}
	return value
}

// Values extracts the editable value set from bound fields, keyed by id.
func Values(bound []Bound) map[string]any {
	out := make(map[string]any, len(bound))
	for _, item := range bound {
		if !item.Editable {
			continue
		}
		out[item.Field.ID] = item.Value
	}
	return out
}

func fieldKey(field model.Field) string {
	return field.ID + "-" + string(field.Type)
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	}
	return false
}

func mergeAttributes(global, local map[string]string) map[string]string {
	if len(global) == 0 && len(local) == 0 {
		return nil
	}
	out := make(map[string]string, len(global)+len(local))
	for key, value := range global {
		out[key] = value
	}
	for key, value := range local {
		out[key] = value
	}
	return out
}

type loader struct {
	source model.OptionSource
	done   bool
	set    model.OptionSet
	err    error
}

func newLoader(source model.OptionSource) *loader {
	return &loader{source: source}
}

// Load resolves the option source on first use and memoises the result.
func (l *loader) Load() (model.OptionSet, error) {
	if l.done {
		return l.set, l.err
	}
	l.done = true
	if l.source == nil {
		return l.set, nil
	}
	l.set, l.err = l.source.Resolve()
	if l.err != nil {
		l.err = fmt.Errorf("resolve options: %w", l.err)
	}
	return l.set, l.err
}
