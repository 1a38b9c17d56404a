package container

import (
	"context"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/render"
)

// Inline hosts a form embedded in a page. It has the modal lifecycle without
// visibility.
type Inline struct {
	session
}

// NewInline binds form against src.
func NewInline(form model.FormModel, src binding.Source, options ...Option) *Inline {
	in := &Inline{session: session{cfg: newConfig(options)}}
	in.reset(form, src)
	return in
}

// Submit validates, transforms and dispatches values.
func (in *Inline) Submit(ctx context.Context, values map[string]any) (pipeline.Outcome, error) {
	return in.submit(ctx, values)
}

// Reset rebinds the form and clears alert and errors.
func (in *Inline) Reset() {
	in.mu.Lock()
	form, src := in.form, in.source
	in.mu.Unlock()
	in.reset(form, src)
}

// Form returns the bound form.
func (in *Inline) Form() model.FormModel {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.form
}

// Cancel runs the cancel callback.
func (in *Inline) Cancel() {
	if in.cfg.onCancel != nil {
		in.cfg.onCancel()
	}
}

// State reports loading and alert. Inline forms are always visible.
func (in *Inline) State() State {
	state := in.snapshot()
	state.Visible = true
	return state
}

// Render draws the form inline.
func (in *Inline) Render(ctx context.Context, renderer render.Renderer, base render.RenderOptions) ([]byte, error) {
	form, opts := in.view(base, render.Layout{Variant: "inline", ShowCancel: in.cfg.showCancel})
	return renderer.Render(ctx, form, opts)
}
