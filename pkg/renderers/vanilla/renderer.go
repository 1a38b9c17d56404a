package vanilla

import (
	"context"
	"fmt"
	"html"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	rendertemplate "github.com/goliatone/go-formkit/pkg/render/template"
	gotemplate "github.com/goliatone/go-formkit/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formkit/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

const formTemplate = "templates/form.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	widgets          *widgets.Registry
	binders          *binding.Registry
	policy           *bluemonday.Policy
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithWidgetRegistry replaces the matcher set used to pick components.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithBindingRegistry replaces the per-type binders.
func WithBindingRegistry(registry *binding.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.binders = registry
		}
	}
}

// WithSanitizer sets the policy applied to plain-text fields flagged with
// the "html" prop. Defaults to bluemonday.UGCPolicy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithInlineStylesheet embeds the default stylesheet in a <style> element.
func WithInlineStylesheet(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	components   *components.Registry
	widgets      *widgets.Registry
	binders      *binding.Registry
	policy       *bluemonday.Policy
	alertPolicy  *bluemonday.Policy
	inlineStyles bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}
	if cfg.binders == nil {
		cfg.binders = binding.Default()
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.UGCPolicy()
	}

	return &Renderer{
		templates:    renderer,
		components:   cfg.components,
		widgets:      cfg.widgets,
		binders:      cfg.binders,
		policy:       cfg.policy,
		alertPolicy:  bluemonday.StrictPolicy(),
		inlineStyles: cfg.inlineStyles,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

type formView struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Action      string              `json:"action"`
	Method      string              `json:"method"`
	Variant     string              `json:"variant"`
	Style       string              `json:"style"`
	Rows        [][]string          `json:"rows"`
	Alert       string              `json:"alert"`
	FormErrors  []string            `json:"form_errors"`
	Hidden      []hiddenView        `json:"hidden"`
	Submit      string              `json:"submit"`
	Cancel      string              `json:"cancel"`
	ShowCancel  bool                `json:"show_cancel"`
	Disabled    bool                `json:"disabled"`
	Loading     bool                `json:"loading"`
	Stylesheets []string            `json:"stylesheets"`
	Scripts     []components.Script `json:"scripts"`
	InlineCSS   string              `json:"inline_css"`
}

type hiddenView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Render binds every field against options.Source and renders the form
// chrome for the requested layout variant.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	bound, err := r.binders.BindAll(form.Fields, options.Source)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	var partials map[string]string
	if options.Theme != nil {
		partials = options.Theme.Partials
	}
	fields := newComponentRenderer(r.templates, r.components, r.widgets, partials, r.policy.Sanitize)

	perRow := options.Layout.ItemsPerRow
	if options.Layout.Variant == "search" && perRow <= 0 {
		perRow = 3
	}
	var rows [][]string
	for _, row := range render.Rows(bound, perRow) {
		items := make([]string, 0, len(row))
		for _, item := range row {
			markup, err := fields.render(item, options.Errors[item.Field.ID])
			if err != nil {
				return nil, fmt.Errorf("vanilla renderer: %w", err)
			}
			items = append(items, markup)
		}
		rows = append(rows, items)
	}

	view := formView{
		ID:         form.ID,
		Title:      firstNonEmpty(options.Layout.Title, form.Title),
		Action:     options.Layout.Action,
		Method:     strings.ToLower(firstNonEmpty(form.Method, "post")),
		Variant:    firstNonEmpty(options.Layout.Variant, "modal"),
		Style:      render.CSSVarsStyle(options.Theme),
		Rows:       rows,
		Alert:      html.UnescapeString(r.alertPolicy.Sanitize(options.Alert)),
		FormErrors: options.FormErrors,
		Submit:     options.Layout.SubmitLabel,
		Cancel:     firstNonEmpty(options.Layout.CancelLabel, "Cancel"),
		ShowCancel: options.Layout.ShowCancel,
		Disabled:   options.Loading || options.Layout.SubmitDisabled,
		Loading:    options.Loading,
	}
	if view.Action == "" && !form.Local() {
		view.Action = form.Endpoint
	}
	if view.Submit == "" {
		view.Submit = "Submit"
		if view.Variant == "search" {
			view.Submit = "Search"
		}
	}
	for _, hidden := range render.SortHiddenFields(options.Hidden) {
		view.Hidden = append(view.Hidden, hiddenView{Name: hidden.Name, Value: hidden.Value})
	}

	view.Stylesheets, view.Scripts = fields.assets()
	if options.Theme != nil && options.Theme.AssetURL != nil {
		if href := options.Theme.AssetURL("stylesheet"); href != "" {
			view.Stylesheets = append([]string{href}, view.Stylesheets...)
		}
	}
	if r.inlineStyles {
		view.InlineCSS = defaultStylesheet()
	}

	result, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"form": view,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
