package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/render/template"
	"github.com/goliatone/go-formkit/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	widgets   *widgets.Registry
	partials  map[string]string
	sanitize  func(string) string

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, resolver *widgets.Registry, partials map[string]string, sanitize func(string) string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	if resolver == nil {
		resolver = widgets.NewRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		widgets:        resolver,
		partials:       cloneStringMap(partials),
		sanitize:       sanitize,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(field binding.Bound, errs []string) (string, error) {
	componentName, ok := r.widgets.Resolve(field.Field)
	if !ok || componentName == "" {
		componentName = components.NameInput
	}

	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, field.Field.ID)
	}

	data := components.ComponentData{
		Template:      r.templates,
		ThemePartials: r.partials,
		Errors:        errs,
		Sanitize:      r.sanitize,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, field.Field.ID, err)
	}

	r.usedComponents[componentName] = struct{}{}

	return buildFieldMarkup(field, componentName, control.String(), errs), nil
}

func (r *componentRenderer) assets() (stylesheets []string, scripts []components.Script) {
	if r.registry == nil || len(r.usedComponents) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Assets(names)
}

// buildFieldMarkup wraps a control with its label and error messages. Hidden
// fields keep their markup so submitted values stay intact.
func buildFieldMarkup(field binding.Bound, componentName, control string, errs []string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="formkit-item`)
	if cls := field.Field.Prop("class", ""); cls != "" {
		builder.WriteByte(' ')
		builder.WriteString(html.EscapeString(cls))
	}
	if len(errs) > 0 {
		builder.WriteString(` formkit-item-invalid`)
	}
	builder.WriteString(`" data-field-key="`)
	builder.WriteString(html.EscapeString(field.Key))
	builder.WriteString(`"`)

	if componentName != "" {
		builder.WriteString(` data-component="`)
		builder.WriteString(html.EscapeString(componentName))
		builder.WriteString(`"`)
	}
	if field.Hidden {
		builder.WriteString(` style="display:none"`)
	}
	builder.WriteString(">\n")

	if shouldRenderLabel(field) {
		builder.WriteString(`    <label for="`)
		builder.WriteString(html.EscapeString(components.ControlID(field.Field.ID)))
		builder.WriteString(`" class="formkit-label">`)
		builder.WriteString(html.EscapeString(field.Field.Label))
		if field.Field.Required() {
			builder.WriteString(` *`)
		}
		builder.WriteString("</label>\n")
	}

	if control != "" {
		for _, line := range strings.Split(control, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			builder.WriteString("    ")
			builder.WriteString(line)
			builder.WriteByte('\n')
		}
	}

	if hint := strings.TrimSpace(field.Field.Prop("helpText", "")); hint != "" {
		builder.WriteString(`    <small class="formkit-help">`)
		builder.WriteString(html.EscapeString(hint))
		builder.WriteString("</small>\n")
	}

	for _, msg := range errs {
		builder.WriteString(`    <p class="formkit-error" role="alert">`)
		builder.WriteString(html.EscapeString(msg))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

// Checkbox captions are rendered inline by the control itself.
func shouldRenderLabel(field binding.Bound) bool {
	if !field.ShowLabel || field.InlineCaption {
		return false
	}
	return strings.TrimSpace(field.Field.Label) != ""
}

func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
