package container

import (
	"context"
	"maps"
	"sync"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/render"
)

// FuzzyField is the id of the built-in fuzzy-match checkbox.
const FuzzyField = "Fuzzy"

// Search is a filter panel. Submitting never reaches a transport: the
// transformed values go to the OnSearch callback. The search button starts
// disabled and is enabled by the first change.
type Search struct {
	cfg      config
	form     model.FormModel
	pipeline *pipeline.Pipeline

	mu       sync.Mutex
	values   map[string]any
	initial  map[string]any
	disabled bool
	errors   map[string][]string
}

// NewSearch builds a search panel over fields, appending the fuzzy checkbox.
func NewSearch(fields []model.Field, options ...Option) (*Search, error) {
	cfg := newConfig(options)
	form := model.FormModel{
		ID: "search",
		Fields: append(append([]model.Field(nil), fields...), model.Field{
			ID:           FuzzyField,
			Type:         model.FieldTypeCheckbox,
			Label:        cfg.fuzzyLabel,
			DefaultValue: true,
		}),
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	s := &Search{cfg: cfg, form: form, disabled: true}
	opts := []pipeline.Option{
		pipeline.WithLogger(cfg.logger),
		pipeline.WithNotifier(cfg.notifier),
		pipeline.WithOnComplete(func(payload map[string]any) {
			if cfg.onSearch != nil {
				cfg.onSearch(payload)
			}
		}),
	}
	if cfg.validator != nil {
		opts = append(opts, pipeline.WithValidator(cfg.validator))
	}
	s.pipeline = pipeline.New(form, opts...)

	bound, err := binding.BindAll(form.Fields, binding.Source{})
	if err != nil {
		return nil, err
	}
	s.initial = binding.Values(bound)
	s.values = maps.Clone(s.initial)
	return s, nil
}

// Form returns the search form including the fuzzy checkbox.
func (s *Search) Form() model.FormModel {
	return s.form
}

// Rows arranges the search fields in a grid of ItemsPerRow columns. The
// fuzzy checkbox sits with the actions and is not part of the grid.
func (s *Search) Rows() ([][]binding.Bound, error) {
	bound, err := binding.BindAll(s.form.Fields[:len(s.form.Fields)-1], binding.Source{
		Mode:    model.ModeEdit,
		Initial: s.Values(),
	})
	if err != nil {
		return nil, err
	}
	return render.Rows(bound, s.cfg.itemsPerRow), nil
}

// Change records a new value and enables the search button.
func (s *Search) Change(id string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = value
	s.disabled = false
}

// Values returns a copy of the current values.
func (s *Search) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}

// SearchDisabled reports whether the search button is disabled.
func (s *Search) SearchDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

// Errors returns field errors from the last submit.
func (s *Search) Errors() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneErrors(s.errors)
}

// Submit disables the search button, validates and transforms the current
// values and hands them to OnSearch.
func (s *Search) Submit(ctx context.Context) (map[string]any, error) {
	s.mu.Lock()
	s.disabled = true
	values := maps.Clone(s.values)
	s.mu.Unlock()

	outcome, err := s.pipeline.Submit(ctx, values, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.errors = render.MapError(s.form, err).Fields
		return nil, err
	}
	s.errors = nil
	return outcome.Payload, nil
}

// Reset restores the initial values. The button state is left as is.
func (s *Search) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = maps.Clone(s.initial)
	s.errors = nil
}

// Render draws the search panel.
func (s *Search) Render(ctx context.Context, renderer render.Renderer, base render.RenderOptions) ([]byte, error) {
	opts := base
	opts.Source = binding.Source{Mode: model.ModeEdit, Initial: s.Values()}
	opts.Errors = s.Errors()
	layout := base.Layout
	layout.Variant = "search"
	if layout.ItemsPerRow <= 0 {
		layout.ItemsPerRow = s.cfg.itemsPerRow
	}
	layout.SubmitDisabled = s.SearchDisabled()
	opts.Layout = layout
	return renderer.Render(ctx, s.form, opts)
}
