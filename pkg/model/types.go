package model

import (
	"fmt"
	"strings"
)

// FieldType is the closed set of widget kinds a Field can bind to.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeNumber        FieldType = "number"
	FieldTypeInputNumber   FieldType = "input-number"
	FieldTypePassword      FieldType = "password"
	FieldTypeSelect        FieldType = "select"
	FieldTypeMultiSelect   FieldType = "multi-select"
	FieldTypeRadio         FieldType = "radio"
	FieldTypeDate          FieldType = "date"
	FieldTypeDateTime      FieldType = "datetime"
	FieldTypeDateTimeRange FieldType = "datetime-range"
	FieldTypeCascader      FieldType = "cascader"
	FieldTypeTreeSelect    FieldType = "tree-select"
	FieldTypeCheckbox      FieldType = "checkbox"
	FieldTypePlainText     FieldType = "plain-text"
)

var knownFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeInputNumber,
	FieldTypePassword,
	FieldTypeSelect,
	FieldTypeMultiSelect,
	FieldTypeRadio,
	FieldTypeDate,
	FieldTypeDateTime,
	FieldTypeDateTimeRange,
	FieldTypeCascader,
	FieldTypeTreeSelect,
	FieldTypeCheckbox,
	FieldTypePlainText,
}

// FieldTypes lists every supported field type in declaration order.
func FieldTypes() []FieldType {
	out := make([]FieldType, len(knownFieldTypes))
	copy(out, knownFieldTypes)
	return out
}

// ParseFieldType normalises a textual type name. Matching is case-insensitive
// and tolerates the camel-case spellings used by older configuration files
// (MultiSelect, DateTime, TreeSelect, PlainText, InputNumber).
func ParseFieldType(raw string) (FieldType, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", "-", "").Replace(key)
	for _, candidate := range knownFieldTypes {
		if strings.ReplaceAll(string(candidate), "-", "") == key {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFieldType, raw)
}

// Editable reports whether values of this type are collected from the user.
func (t FieldType) Editable() bool {
	return t != FieldTypePlainText
}

const (
	ValidationRuleRequired  = "required"
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
	ValidationRuleCustom    = "custom"
)

// ValidatorFunc checks a single value against the complete value set.
type ValidatorFunc func(value any, values map[string]any) error

// ValidationRule represents a single validation constraint applied to a field.
// Numeric bounds and length limits encode their threshold in Params["value"],
// pattern rules keep the expression in Params["pattern"], and custom rules
// either carry a Validator or reference a named validator via Params["name"].
type ValidationRule struct {
	Kind      string            `json:"kind" yaml:"kind"`
	Params    map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Message   string            `json:"message,omitempty" yaml:"message,omitempty"`
	Validator ValidatorFunc     `json:"-" yaml:"-"`
}

// RenderFunc maps a resolved storage value to the value shown in the widget.
// Implementations must be pure: same inputs, same output, no side effects.
type RenderFunc func(value any, fields []Field, initial map[string]any) any

// SubmitFunc maps a user-entered value to its wire representation. It receives
// the complete value set so it can derive from sibling fields. Implementations
// must be pure and must not mutate values.
type SubmitFunc func(value any, fields []Field, values map[string]any) any

// Field models a single declarative input.
type Field struct {
	ID           string            `json:"id" yaml:"id"`
	Type         FieldType         `json:"type" yaml:"type"`
	Label        string            `json:"label,omitempty" yaml:"label,omitempty"`
	HideLabel    bool              `json:"hideLabel,omitempty" yaml:"hideLabel,omitempty"`
	Hide         bool              `json:"hide,omitempty" yaml:"hide,omitempty"`
	DefaultValue any               `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	IsRefData    bool              `json:"isRefData,omitempty" yaml:"isRefData,omitempty"`
	RefField     string            `json:"refField,omitempty" yaml:"refField,omitempty"`
	ArrayData    OptionSource      `json:"-" yaml:"-"`
	Render       RenderFunc        `json:"-" yaml:"-"`
	Submit       SubmitFunc        `json:"-" yaml:"-"`
	Rules        []ValidationRule  `json:"rules,omitempty" yaml:"rules,omitempty"`
	Props        map[string]string `json:"props,omitempty" yaml:"props,omitempty"`
}

// Required reports whether the field carries a required rule.
func (f Field) Required() bool {
	for _, rule := range f.Rules {
		if rule.Kind == ValidationRuleRequired {
			return true
		}
	}
	return false
}

// Prop returns a widget property or the fallback when unset.
func (f Field) Prop(key, fallback string) string {
	if value, ok := f.Props[key]; ok && value != "" {
		return value
	}
	return fallback
}

// FormModel is the top-level representation renderers and pipelines consume.
// An Endpoint that is empty or "#" means the form completes locally.
type FormModel struct {
	ID       string            `json:"id" yaml:"id"`
	Title    string            `json:"title,omitempty" yaml:"title,omitempty"`
	Endpoint string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Method   string            `json:"method,omitempty" yaml:"method,omitempty"`
	Fields   []Field           `json:"fields" yaml:"fields"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Local reports whether submissions complete without a network call.
func (f FormModel) Local() bool {
	endpoint := strings.TrimSpace(f.Endpoint)
	return endpoint == "" || endpoint == "#"
}

// Field looks up a field by id.
func (f FormModel) Field(id string) (Field, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// Validate checks structural invariants: every field has an id and a known
// type, and ids are unique within the list.
func (f FormModel) Validate() error {
	seen := make(map[string]struct{}, len(f.Fields))
	for idx, field := range f.Fields {
		if strings.TrimSpace(field.ID) == "" {
			return fmt.Errorf("model: field %d: %w", idx, ErrMissingID)
		}
		if _, err := ParseFieldType(string(field.Type)); err != nil {
			return fmt.Errorf("model: field %q: %w", field.ID, err)
		}
		if _, dup := seen[field.ID]; dup {
			return fmt.Errorf("model: field %q: %w", field.ID, ErrDuplicateID)
		}
		seen[field.ID] = struct{}{}
		if field.IsRefData && field.RefField == "" {
			return fmt.Errorf("model: field %q: isRefData requires refField", field.ID)
		}
	}
	return nil
}
