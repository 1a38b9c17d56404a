package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
)

// NamedValidator implements a custom rule referenced by name from
// configuration files (rule kind "custom" with Params["name"]).
type NamedValidator func(value any, values map[string]any, params map[string]string) error

// Option configures an Engine.
type Option func(*Engine)

// WithValidator registers a named validator.
func WithValidator(name string, fn NamedValidator) Option {
	return func(e *Engine) {
		e.Register(name, fn)
	}
}

// Engine validates values against field rules. It is safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	named    map[string]NamedValidator
	patterns sync.Map
}

// New constructs an engine with the built-in named validators.
func New(options ...Option) *Engine {
	engine := &Engine{named: make(map[string]NamedValidator)}
	engine.Register("equalTo", equalTo)
	for _, opt := range options {
		if opt != nil {
			opt(engine)
		}
	}
	return engine
}

// Register installs or replaces a named validator.
func (e *Engine) Register(name string, fn NamedValidator) {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.named[name] = fn
}

// Validate checks every editable field and returns *Error when any rule
// fails. Hidden fields are validated like visible ones.
func (e *Engine) Validate(fields []model.Field, values map[string]any) error {
	result := &Error{}
	for _, field := range fields {
		if !field.Type.Editable() {
			continue
		}
		for _, message := range e.ValidateField(field, values) {
			result.add(field.ID, message)
		}
	}
	if len(result.order) == 0 {
		return nil
	}
	return result
}

// ValidateField returns the failure messages for a single field.
func (e *Engine) ValidateField(field model.Field, values map[string]any) []string {
	value := values[field.ID]
	var out []string
	for _, rule := range field.Rules {
		if err := e.check(field, rule, value, values); err != nil {
			message := rule.Message
			if message == "" {
				message = err.Error()
			}
			out = append(out, message)
		}
	}
	return out
}

func (e *Engine) check(field model.Field, rule model.ValidationRule, value any, values map[string]any) error {
	label := field.Label
	if label == "" {
		label = field.ID
	}

	if rule.Kind == model.ValidationRuleRequired {
		if isBlank(field, value) {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
	if rule.Kind != model.ValidationRuleCustom && isBlank(field, value) {
		return nil
	}

	switch rule.Kind {
	case model.ValidationRuleMin, model.ValidationRuleMax:
		limit, err := strconv.ParseFloat(rule.Params["value"], 64)
		if err != nil {
			return fmt.Errorf("%s has an invalid %s rule", label, rule.Kind)
		}
		number, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%s must be a number", label)
		}
		if rule.Kind == model.ValidationRuleMin && number < limit {
			return fmt.Errorf("%s must be at least %s", label, rule.Params["value"])
		}
		if rule.Kind == model.ValidationRuleMax && number > limit {
			return fmt.Errorf("%s must be at most %s", label, rule.Params["value"])
		}
	case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
		limit, err := strconv.Atoi(rule.Params["value"])
		if err != nil {
			return fmt.Errorf("%s has an invalid %s rule", label, rule.Kind)
		}
		size := length(value)
		if rule.Kind == model.ValidationRuleMinLength && size < limit {
			return fmt.Errorf("%s must be at least %d characters", label, limit)
		}
		if rule.Kind == model.ValidationRuleMaxLength && size > limit {
			return fmt.Errorf("%s must be at most %d characters", label, limit)
		}
	case model.ValidationRulePattern:
		re, err := e.pattern(rule.Params["pattern"])
		if err != nil {
			return fmt.Errorf("%s has an invalid pattern", label)
		}
		if !re.MatchString(binding.Stringify(value)) {
			return fmt.Errorf("%s has an invalid format", label)
		}
	case model.ValidationRuleCustom:
		if rule.Validator != nil {
			return rule.Validator(value, values)
		}
		name := rule.Params["name"]
		e.mu.RLock()
		fn, ok := e.named[name]
		e.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%s references unknown validator %q", label, name)
		}
		return fn(value, values, rule.Params)
	}
	return nil
}

func (e *Engine) pattern(expr string) (*regexp.Regexp, error) {
	if cached, ok := e.patterns.Load(expr); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	e.patterns.Store(expr, re)
	return re, nil
}

func equalTo(value any, values map[string]any, params map[string]string) error {
	other := params["field"]
	if other == "" {
		return errors.New("equalTo requires a field parameter")
	}
	if binding.Stringify(value) != binding.Stringify(values[other]) {
		return fmt.Errorf("does not match %s", other)
	}
	return nil
}

func isBlank(field model.Field, value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case bool:
		return field.Type == model.FieldTypeCheckbox && !typed
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case string:
		number, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return number, err == nil
	}
	number, err := strconv.ParseFloat(binding.Stringify(value), 64)
	return number, err == nil
}

func length(value any) int {
	if typed, ok := value.(string); ok {
		return utf8.RuneCountInString(typed)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len()
	}
	return utf8.RuneCountInString(binding.Stringify(value))
}
