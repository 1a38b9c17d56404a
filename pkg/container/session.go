package container

import (
	"context"
	"errors"
	"maps"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/render"
)

// State is the observable container state.
type State struct {
	Visible bool
	Loading bool
	// Alert is the persistent business error, empty when none.
	Alert  string
	Errors map[string][]string
}

// session is the lifecycle shared by modal and inline containers: one bound
// form, one pipeline, and the state derived from its machine.
type session struct {
	cfg config

	mu       sync.Mutex
	form     model.FormModel
	source   binding.Source
	pipeline *pipeline.Pipeline
	alert    string
	errors   map[string][]string
	loading  bool
	stop     func()
	// entered holds the values of the last rejected submission. Renders
	// show them until the next reset or success.
	entered map[string]any
}

func (s *session) reset(form model.FormModel, src binding.Source) {
	s.mu.Lock()
	if s.stop != nil {
		s.stop()
	}
	s.form = form
	s.source = src
	s.alert = ""
	s.errors = nil
	s.entered = nil
	s.loading = false

	opts := []pipeline.Option{
		pipeline.WithTransport(s.cfg.transport),
		pipeline.WithNotifier(s.cfg.notifier),
		pipeline.WithLogger(s.cfg.logger),
		pipeline.WithOnComplete(s.complete),
	}
	if s.cfg.validator != nil {
		opts = append(opts, pipeline.WithValidator(s.cfg.validator))
	}
	s.pipeline = pipeline.New(form, opts...)
	s.stop = s.pipeline.Machine().Observe(s.observe)
	s.mu.Unlock()
}

func (s *session) observe(event pipeline.Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = event.To == pipeline.StateSubmitting
	switch event.To {
	case pipeline.StateSubmitting:
		s.alert = ""
	case pipeline.StateBusinessError:
		s.alert = event.Message
	}
	s.cfg.logger.Debug("form state",
		zap.String("form", s.form.ID),
		zap.String("state", event.To.String()),
	)
}

func (s *session) complete(payload map[string]any) {
	if s.cfg.onComplete != nil {
		s.cfg.onComplete(payload)
	}
}

// submit runs the pipeline against the initial record when editing. Field
// errors from validation are kept for the next render.
func (s *session) submit(ctx context.Context, values map[string]any) (pipeline.Outcome, error) {
	s.mu.Lock()
	p := s.pipeline
	form := s.form
	var initial map[string]any
	if s.source.Mode == model.ModeEdit {
		initial = s.source.Initial
	}
	s.mu.Unlock()

	if p == nil {
		return pipeline.Outcome{}, ErrNotOpen
	}

	outcome, err := p.Submit(ctx, values, initial)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.errors = nil
		s.entered = nil
		if outcome.State == pipeline.StateBusinessError {
			s.entered = maps.Clone(values)
		}
	case errors.Is(err, pipeline.ErrUnchanged), errors.Is(err, pipeline.ErrBusy):
	default:
		mapping := render.MapError(form, err)
		if len(mapping.Fields) > 0 {
			s.errors = mapping.Fields
		}
		s.entered = maps.Clone(values)
	}
	return outcome, err
}

func (s *session) snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Loading: s.loading,
		Alert:   s.alert,
		Errors:  cloneErrors(s.errors),
	}
}

// view returns the form and options for a render. After a rejected
// submission the entered values are shown as they were typed: they bind as
// edit-mode data and the fields carrying them skip their Render transform.
func (s *session) view(base render.RenderOptions, layout render.Layout) (model.FormModel, render.RenderOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	form := s.form
	opts := base
	opts.Source = s.source
	if s.entered != nil {
		initial := maps.Clone(s.source.Initial)
		if initial == nil {
			initial = make(map[string]any, len(s.entered))
		}
		maps.Copy(initial, s.entered)
		opts.Source.Mode = model.ModeEdit
		opts.Source.Initial = initial

		fields := make([]model.Field, len(form.Fields))
		for idx, field := range form.Fields {
			if _, ok := s.entered[field.ID]; ok {
				field.Render = nil
			}
			fields[idx] = field
		}
		form.Fields = fields
	}
	opts.Errors = cloneErrors(s.errors)
	opts.Alert = s.alert
	opts.Loading = s.loading
	layout.ItemsPerRow = base.Layout.ItemsPerRow
	layout.Action = base.Layout.Action
	if base.Layout.SubmitLabel != "" {
		layout.SubmitLabel = base.Layout.SubmitLabel
	}
	if base.Layout.CancelLabel != "" {
		layout.CancelLabel = base.Layout.CancelLabel
	}
	opts.Layout = layout
	return form, opts
}

func cloneErrors(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]string, len(src))
	for key, value := range src {
		out[key] = append([]string(nil), value...)
	}
	return out
}
