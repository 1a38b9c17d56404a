// Package formkit is the entry point for hosts that only need the common
// path: load declarative forms, render them to HTML and import forms from
// OpenAPI documents. The packages under pkg/ expose the full surface.
package formkit

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/formconfig"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/openapi"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/tui"
	"github.com/goliatone/go-formkit/pkg/renderers/vanilla"
)

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// Source aliases binding.Source.
type Source = binding.Source

// EmbeddedTemplates exposes the built-in vanilla renderer templates.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet and scripts the rendered markup refers to.
//
// Typical mount:
//
//	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServerFS(formkit.AssetsFS())))
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}

// LoadForms reads every form, table and upload document in fsys.
func LoadForms(fsys fs.FS) (*formconfig.Store, error) {
	return formconfig.LoadFS(fsys)
}

// RenderHTML renders form with the vanilla renderer.
func RenderHTML(ctx context.Context, form model.FormModel, opts RenderOptions, options ...vanilla.Option) ([]byte, error) {
	renderer, err := vanilla.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, form, opts)
}

// Renderers returns a registry holding the HTML renderer ("vanilla") and the
// terminal renderer ("tui").
func Renderers(html []vanilla.Option, terminal []tui.Option) (*render.Registry, error) {
	htmlRenderer, err := vanilla.New(html...)
	if err != nil {
		return nil, err
	}
	terminalRenderer, err := tui.New(terminal...)
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(htmlRenderer, terminalRenderer)
}

// FormFromOpenAPI loads an OpenAPI document and builds the form for one
// operation's request body.
func FormFromOpenAPI(ctx context.Context, src openapi.Source, operationID string, loader []openapi.LoaderOption, options ...openapi.Option) (model.FormModel, error) {
	data, err := openapi.Load(ctx, src, loader...)
	if err != nil {
		return model.FormModel{}, err
	}
	return openapi.FormFromOperation(ctx, data, operationID, options...)
}
