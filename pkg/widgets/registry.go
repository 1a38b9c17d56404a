package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Widget identifiers resolved by the built-in matchers. They line up with the
// component names registered by the vanilla renderer.
const (
	WidgetInput       = "input"
	WidgetTextarea    = "textarea"
	WidgetPassword    = "password"
	WidgetNumber      = "number"
	WidgetSelect      = "select"
	WidgetMultiSelect = "multi-select"
	WidgetRadio       = "radio"
	WidgetDate        = "date"
	WidgetDateTime    = "datetime"
	WidgetDateRange   = "datetime-range"
	WidgetCascader    = "cascader"
	WidgetTreeSelect  = "tree-select"
	WidgetCheckbox    = "checkbox"
	WidgetPlainText   = "plain-text"
)

// PropWidget is the field prop that forces a widget for a single field.
const PropWidget = "widget"

// Matcher decides whether a widget renderer should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widget renderers for fields based on explicit props or
// registered matchers. Higher priority wins; ties fall back to registration
// order. An empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. Props["widget"] is honoured
// before matcher evaluation.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := strings.TrimSpace(field.Props[PropWidget]); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator, recording the resolved widget in
// Props["widget"] for every field that does not already carry one.
func (r *Registry) Decorate(form *model.FormModel) error {
	if r == nil || form == nil {
		return nil
	}
	decorated := make([]model.Field, len(form.Fields))
	for idx, field := range form.Fields {
		if widget, ok := r.Resolve(field); ok && field.Props[PropWidget] == "" {
			props := make(map[string]string, len(field.Props)+1)
			for key, value := range field.Props {
				props[key] = value
			}
			props[PropWidget] = widget
			field.Props = props
		}
		decorated[idx] = field
	}
	form.Fields = decorated
	return nil
}

func typeIs(types ...model.FieldType) Matcher {
	return func(field model.Field) bool {
		for _, candidate := range types {
			if field.Type == candidate {
				return true
			}
		}
		return false
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetTextarea, 90, func(field model.Field) bool {
		if field.Type != model.FieldTypeText {
			return false
		}
		return field.Prop("multiline", "") == "true" || field.Prop("rows", "") != ""
	})

	r.Register(WidgetPassword, 80, typeIs(model.FieldTypePassword))
	r.Register(WidgetNumber, 80, typeIs(model.FieldTypeNumber, model.FieldTypeInputNumber))
	r.Register(WidgetSelect, 80, typeIs(model.FieldTypeSelect))
	r.Register(WidgetMultiSelect, 80, typeIs(model.FieldTypeMultiSelect))
	r.Register(WidgetRadio, 80, typeIs(model.FieldTypeRadio))
	r.Register(WidgetDate, 80, typeIs(model.FieldTypeDate))
	r.Register(WidgetDateTime, 80, typeIs(model.FieldTypeDateTime))
	r.Register(WidgetDateRange, 80, typeIs(model.FieldTypeDateTimeRange))
	r.Register(WidgetCascader, 80, typeIs(model.FieldTypeCascader))
	r.Register(WidgetTreeSelect, 80, typeIs(model.FieldTypeTreeSelect))
	r.Register(WidgetCheckbox, 80, typeIs(model.FieldTypeCheckbox))
	r.Register(WidgetPlainText, 80, typeIs(model.FieldTypePlainText))

	r.Register(WidgetInput, 0, func(model.Field) bool { return true })
}
