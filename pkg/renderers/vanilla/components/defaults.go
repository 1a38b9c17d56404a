package components

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
)

const templatePrefix = "templates/components/"

// Script served alongside cascader controls to expand the option tree.
const cascaderScript = "/assets/formkit-cascader.js"

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the vanilla renderer.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{Renderer: templateComponentRenderer("forms.input", "input.tmpl", "text")})
	registry.MustRegister(NamePassword, Descriptor{Renderer: templateComponentRenderer("forms.password", "input.tmpl", "password")})
	registry.MustRegister(NameNumber, Descriptor{Renderer: templateComponentRenderer("forms.number", "input.tmpl", "number")})
	registry.MustRegister(NameDate, Descriptor{Renderer: templateComponentRenderer("forms.date", "input.tmpl", "date")})
	registry.MustRegister(NameDateTime, Descriptor{Renderer: templateComponentRenderer("forms.datetime", "input.tmpl", "datetime-local")})
	registry.MustRegister(NameTextarea, Descriptor{Renderer: templateComponentRenderer("forms.textarea", "textarea.tmpl", "")})
	registry.MustRegister(NameSelect, Descriptor{Renderer: templateComponentRenderer("forms.select", "select.tmpl", "")})
	registry.MustRegister(NameMultiSelect, Descriptor{Renderer: templateComponentRenderer("forms.select", "select.tmpl", "")})
	registry.MustRegister(NameTreeSelect, Descriptor{Renderer: templateComponentRenderer("forms.tree-select", "select.tmpl", "")})
	registry.MustRegister(NameCascader, Descriptor{
		Renderer: templateComponentRenderer("forms.cascader", "select.tmpl", ""),
		Scripts:  []Script{{Src: cascaderScript, Defer: true}},
	})
	registry.MustRegister(NameRadio, Descriptor{Renderer: templateComponentRenderer("forms.radio", "radio.tmpl", "")})
	registry.MustRegister(NameCheckbox, Descriptor{Renderer: templateComponentRenderer("forms.checkbox", "checkbox.tmpl", "checkbox")})
	registry.MustRegister(NameDateRange, Descriptor{Renderer: dateRangeRenderer})
	registry.MustRegister(NamePlainText, Descriptor{Renderer: plainTextRenderer})

	return registry
}

func templateComponentRenderer(partialKey, templateName, inputType string) Renderer {
	return func(buf *bytes.Buffer, field binding.Bound, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolved := templatePrefix + templateName
		if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
			resolved = candidate
		}

		view := NewControlView(field, inputType, data.Errors)
		rendered, err := data.Template.RenderTemplate(resolved, map[string]any{"control": view})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func dateRangeRenderer(buf *bytes.Buffer, field binding.Bound, data ComponentData) error {
	var start, end string
	if rng, ok := field.Value.(binding.DateRange); ok {
		start = formatDateTime(rng.Start)
		end = formatDateTime(rng.End)
	}
	id := ControlID(field.Field.ID)
	name := html.EscapeString(field.Field.ID)

	buf.WriteString(`<div class="formkit-range" id="`)
	buf.WriteString(html.EscapeString(id))
	buf.WriteString(`">`)
	for idx, value := range []string{start, end} {
		if idx == 1 {
			buf.WriteString(`<span class="formkit-range-sep">~</span>`)
		}
		buf.WriteString(`<input type="datetime-local" name="`)
		buf.WriteString(name)
		buf.WriteString(`" value="`)
		buf.WriteString(html.EscapeString(value))
		buf.WriteString(`"`)
		if len(data.Errors) > 0 {
			buf.WriteString(` aria-invalid="true"`)
		}
		buf.WriteString(`>`)
	}
	buf.WriteString(`</div>`)
	return nil
}

func plainTextRenderer(buf *bytes.Buffer, field binding.Bound, data ComponentData) error {
	content := html.EscapeString(binding.Stringify(field.Value))
	if field.Field.Prop("html", "") == "true" && data.Sanitize != nil {
		content = data.Sanitize(binding.Stringify(field.Value))
	}
	buf.WriteString(`<p class="formkit-plain-text" id="`)
	buf.WriteString(html.EscapeString(ControlID(field.Field.ID)))
	buf.WriteString(`">`)
	buf.WriteString(content)
	buf.WriteString(`</p>`)
	return nil
}

// ControlView is the template-facing projection of a bound field.
type ControlView struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Label    string            `json:"label"`
	Value    string            `json:"value"`
	Checked  bool              `json:"checked"`
	Multiple bool              `json:"multiple"`
	Required bool              `json:"required"`
	Invalid  bool              `json:"invalid"`
	Options  []OptionView      `json:"options,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// OptionView is a single rendered choice. Depth indents tree options.
type OptionView struct {
	Value    string `json:"value"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
	Depth    int    `json:"depth"`
}

// NewControlView projects a bound field for templates.
func NewControlView(field binding.Bound, inputType string, errs []string) ControlView {
	view := ControlView{
		ID:       ControlID(field.Field.ID),
		Name:     field.Field.ID,
		Type:     inputType,
		Label:    field.Field.Label,
		Required: field.Field.Required(),
		Invalid:  len(errs) > 0,
		Attrs:    controlAttrs(field.Attributes),
	}

	switch field.Field.Type {
	case model.FieldTypeCheckbox:
		view.Checked = truthy(field.Value)
		view.Value = "true"
	case model.FieldTypeMultiSelect:
		view.Multiple = true
		selected := selectedSet(field.Value)
		for _, option := range field.Options {
			_, ok := selected[option.Value]
			view.Options = append(view.Options, OptionView{Value: option.Value, Title: option.Title, Selected: ok})
		}
	case model.FieldTypeSelect, model.FieldTypeRadio:
		current := binding.Stringify(field.Value)
		view.Value = current
		for _, option := range field.Options {
			view.Options = append(view.Options, OptionView{Value: option.Value, Title: option.Title, Selected: option.Value == current})
		}
	case model.FieldTypeTreeSelect:
		current := binding.Stringify(field.Value)
		view.Value = current
		walkTree(field.Tree, 0, func(node model.TreeNode, depth int) {
			view.Options = append(view.Options, OptionView{Value: node.Value, Title: node.Label, Selected: node.Value == current, Depth: depth})
		})
	case model.FieldTypeCascader:
		current := ""
		if path, ok := binding.StringSlice(field.Value); ok {
			current = strings.Join(path, ",")
		}
		view.Value = current
		for _, path := range model.Leaves(field.Tree) {
			values := make([]string, len(path))
			titles := make([]string, len(path))
			for idx, node := range path {
				values[idx], titles[idx] = node.Value, node.Label
			}
			value := strings.Join(values, ",")
			view.Options = append(view.Options, OptionView{Value: value, Title: strings.Join(titles, " / "), Selected: value == current})
		}
	case model.FieldTypeDate:
		if t, ok := field.Value.(time.Time); ok {
			view.Value = t.Format(time.DateOnly)
		}
	case model.FieldTypeDateTime:
		if t, ok := field.Value.(time.Time); ok {
			view.Value = formatDateTime(t)
		}
	default:
		view.Value = binding.Stringify(field.Value)
	}
	return view
}

// ControlID is the DOM id used for a field's control and label target.
func ControlID(fieldID string) string {
	trimmed := strings.TrimSpace(fieldID)
	if trimmed == "" {
		return ""
	}
	return "fk-" + trimmed
}

func controlAttrs(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for key, value := range attrs {
		switch key {
		case "widget", "html", "rows", "format":
			continue
		}
		out[key] = value
	}
	if rows := attrs["rows"]; rows != "" {
		out["rows"] = rows
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func walkTree(nodes []model.TreeNode, depth int, visit func(model.TreeNode, int)) {
	for _, node := range nodes {
		visit(node, depth)
		walkTree(node.Children, depth+1, visit)
	}
}

func selectedSet(value any) map[string]struct{} {
	values, ok := binding.StringSlice(value)
	if !ok {
		if value == nil {
			return nil
		}
		values = []string{binding.Stringify(value)}
	}
	out := make(map[string]struct{}, len(values))
	for _, item := range values {
		out[item] = struct{}{}
	}
	return out
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "", "0", "false", "off", "no":
			return false
		}
		return true
	}
	return binding.Stringify(value) != "0"
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}
