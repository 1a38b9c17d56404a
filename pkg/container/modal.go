package container

import (
	"context"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/render"
)

// Modal hosts one form at a time in a dialog. Opening it rebinds the form
// and clears any alert left by the previous interaction.
type Modal struct {
	session

	title   string
	visible bool
}

// NewModal constructs a closed modal.
func NewModal(options ...Option) *Modal {
	return &Modal{session: session{cfg: newConfig(options)}}
}

// Open shows the modal with a freshly bound form.
func (m *Modal) Open(title string, form model.FormModel, src binding.Source) {
	m.reset(form, src)
	m.mu.Lock()
	m.title = title
	m.visible = true
	m.mu.Unlock()
}

// Submit validates, transforms and dispatches values. Business errors stay on
// the modal as an alert; transport errors are reported to the notifier.
func (m *Modal) Submit(ctx context.Context, values map[string]any) (pipeline.Outcome, error) {
	return m.submit(ctx, values)
}

// Cancel hides the modal and runs the cancel callback.
func (m *Modal) Cancel() {
	m.Close()
	if m.cfg.onCancel != nil {
		m.cfg.onCancel()
	}
}

// Close hides the modal without callbacks.
func (m *Modal) Close() {
	m.mu.Lock()
	m.visible = false
	m.mu.Unlock()
}

// Title returns the title passed to Open.
func (m *Modal) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title
}

// Form returns the form currently open.
func (m *Modal) Form() model.FormModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// Source returns the binding source the form was opened with.
func (m *Modal) Source() binding.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// State reports visibility, loading and alert.
func (m *Modal) State() State {
	state := m.snapshot()
	m.mu.Lock()
	state.Visible = m.visible
	m.mu.Unlock()
	return state
}

// Render draws the modal's form. Base options supply theme, hidden inputs
// and labels; state-derived options are filled in by the modal.
func (m *Modal) Render(ctx context.Context, renderer render.Renderer, base render.RenderOptions) ([]byte, error) {
	m.mu.Lock()
	title := m.title
	m.mu.Unlock()
	form, opts := m.view(base, render.Layout{Variant: "modal", Title: title, ShowCancel: true})
	return renderer.Render(ctx, form, opts)
}
