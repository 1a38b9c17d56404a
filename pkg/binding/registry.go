package binding

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/model"
)

// OptionLoader yields the field's resolved options. Binders that do not need
// options never call it.
type OptionLoader interface {
	Load() (model.OptionSet, error)
}

// Binder performs the type-specific part of binding on an already resolved
// value.
type Binder interface {
	Bind(bound *Bound, options OptionLoader, src Source) error
}

// BinderFunc adapts a function into a Binder.
type BinderFunc func(bound *Bound, options OptionLoader, src Source) error

// Bind calls the underlying function.
func (fn BinderFunc) Bind(bound *Bound, options OptionLoader, src Source) error {
	return fn(bound, options, src)
}

// Registry maps field types to binders. Unknown types fall back to a
// passthrough binder so extra types degrade to plain inputs.
type Registry struct {
	mu      sync.RWMutex
	binders map[model.FieldType]Binder
	logger  *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger reports values that bind as unset.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry with the built-in binders.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry constructs a registry with the built-in binders registered.
func NewRegistry(options ...RegistryOption) *Registry {
	reg := &Registry{binders: make(map[model.FieldType]Binder), logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(reg)
		}
	}
	reg.registerBuiltins()
	return reg
}

func (r *Registry) log() *zap.Logger {
	if r == nil || r.logger == nil {
		return zap.NewNop()
	}
	return r.logger
}

// Register installs or replaces the binder for a field type.
func (r *Registry) Register(fieldType model.FieldType, binder Binder) {
	if r == nil || binder == nil || fieldType == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binders[fieldType] = binder
}

// Lookup returns the binder for a field type or the passthrough binder.
func (r *Registry) Lookup(fieldType model.FieldType) Binder {
	if r != nil {
		r.mu.RLock()
		binder, ok := r.binders[fieldType]
		r.mu.RUnlock()
		if ok {
			return binder
		}
	}
	return BinderFunc(bindPassthrough)
}

// Types returns the registered field types in sorted order.
func (r *Registry) Types() []model.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.FieldType, 0, len(r.binders))
	for fieldType := range r.binders {
		out = append(out, fieldType)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) registerBuiltins() {
	for _, fieldType := range []model.FieldType{
		model.FieldTypeText,
		model.FieldTypeNumber,
		model.FieldTypeInputNumber,
		model.FieldTypePassword,
	} {
		r.Register(fieldType, BinderFunc(bindPassthrough))
	}
	r.Register(model.FieldTypeSelect, BinderFunc(bindSelect))
	r.Register(model.FieldTypeRadio, BinderFunc(bindSelect))
	r.Register(model.FieldTypeMultiSelect, BinderFunc(bindMultiSelect))
	r.Register(model.FieldTypeDate, BinderFunc(bindDate))
	r.Register(model.FieldTypeDateTime, BinderFunc(bindDate))
	r.Register(model.FieldTypeDateTimeRange, BinderFunc(bindDateRange))
	r.Register(model.FieldTypeCascader, BinderFunc(bindTree))
	r.Register(model.FieldTypeTreeSelect, BinderFunc(bindTree))
	r.Register(model.FieldTypeCheckbox, BinderFunc(bindCheckbox))
	r.Register(model.FieldTypePlainText, BinderFunc(bindPlainText))
}
