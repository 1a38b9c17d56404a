package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/transport"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// Renderer implements render.Renderer for terminal-driven sessions. Each
// editable field becomes a prompt seeded with its bound value; answers are
// validated field by field and re-prompted until they pass.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	validator         *validation.Engine
	binders           *binding.Registry
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	driver, err := newSurveyDriver()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		driver:       driver,
		outputFormat: OutputFormatJSON,
		validator:    validation.New(),
		binders:      binding.Default(),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	case OutputFormatYAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}

// Render collects values, validates the whole form, applies submit
// transforms and serializes the payload.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	if err := r.validator.Validate(form.Fields, values); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	payload := pipeline.TransformForSubmission(values, form.Fields)
	if r.submitTransformer != nil {
		payload, err = r.submitTransformer(payload)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.Serialize(form, payload)
}

// Collect prompts for every visible editable field and returns the raw
// values, before submit transforms. Hidden fields keep their bound value.
func (r *Renderer) Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	bound, err := r.binders.BindAll(form.Fields, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	if alert := strings.TrimSpace(opts.Alert); alert != "" {
		for _, line := range strings.Split(alert, "\n") {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+line); err != nil {
				return nil, err
			}
		}
	}

	state := NewState(binding.Values(bound), opts.Errors)
	for _, item := range bound {
		switch {
		case !item.Editable:
			if item.Hidden {
				continue
			}
			if err := r.driver.Info(ctx, r.theme.InfoPrefix+displayLabel(item.Field)+": "+displayValue(item.Value)); err != nil {
				return nil, err
			}
		case item.Hidden:
			continue
		default:
			if err := r.promptField(ctx, item, state); err != nil {
				return nil, err
			}
		}
	}
	return state.Values(), nil
}

func (r *Renderer) promptField(ctx context.Context, item binding.Bound, state *State) error {
	for _, msg := range state.ErrorsFor(item.Field.ID) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}

	for {
		value, err := r.ask(ctx, item)
		if err != nil {
			return err
		}
		state.SetValue(item.Field.ID, value)

		messages := r.validator.ValidateField(item.Field, state.Values())
		if len(messages) == 0 {
			state.ClearErrors(item.Field.ID)
			return nil
		}
		for _, msg := range messages {
			if err := r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, item.Field.ID, msg)); err != nil {
				return err
			}
		}
	}
}

func (r *Renderer) ask(ctx context.Context, item binding.Bound) (any, error) {
	field := item.Field
	label := displayLabel(field)
	help := field.Prop("helpText", "")

	switch field.Type {
	case model.FieldTypePassword:
		return r.driver.Password(ctx, InputConfig{Message: label, Help: help})

	case model.FieldTypeNumber, model.FieldTypeInputNumber:
		raw, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: binding.Stringify(item.Value),
			Help:    help,
			Check:   numberValidator,
		})
		if err != nil {
			return nil, err
		}
		return parseNumber(raw), nil

	case model.FieldTypeCheckbox:
		current, _ := item.Value.(bool)
		return r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current, Help: help})

	case model.FieldTypeSelect, model.FieldTypeRadio:
		if len(item.Options) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoOptions, field.ID)
		}
		titles, values := optionColumns(item.Options)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      titles,
			DefaultIndex: slices.Index(values, binding.Stringify(item.Value)),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		return pick(values, idx), nil

	case model.FieldTypeMultiSelect:
		if len(item.Options) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoOptions, field.ID)
		}
		titles, values := optionColumns(item.Options)
		current, _ := binding.StringSlice(item.Value)
		var defaults []int
		for _, value := range current {
			if idx := slices.Index(values, value); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: titles, Defaults: defaults, Help: help})
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(picked))
		for _, idx := range picked {
			if value := pick(values, idx); value != "" {
				out = append(out, value)
			}
		}
		return out, nil

	case model.FieldTypeTreeSelect:
		var titles, values []string
		walkTree(item.Tree, 0, func(node model.TreeNode, depth int) {
			titles = append(titles, strings.Repeat("  ", depth)+node.Label)
			values = append(values, node.Value)
		})
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoOptions, field.ID)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      titles,
			DefaultIndex: slices.Index(values, binding.Stringify(item.Value)),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		return pick(values, idx), nil

	case model.FieldTypeCascader:
		paths := model.Leaves(item.Tree)
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoOptions, field.ID)
		}
		current, _ := binding.StringSlice(item.Value)
		titles := make([]string, len(paths))
		defaultIdx := -1
		for idx, path := range paths {
			labels := make([]string, len(path))
			values := make([]string, len(path))
			for pos, node := range path {
				labels[pos], values[pos] = node.Label, node.Value
			}
			titles[idx] = strings.Join(labels, " / ")
			if slices.Equal(values, current) {
				defaultIdx = idx
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: titles, DefaultIndex: defaultIdx, Help: help})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(paths) {
			return []string(nil), nil
		}
		out := make([]string, len(paths[idx]))
		for pos, node := range paths[idx] {
			out[pos] = node.Value
		}
		return out, nil

	case model.FieldTypeDate, model.FieldTypeDateTime:
		current, _ := item.Value.(time.Time)
		return r.askTime(ctx, label, help, current, field.Type == model.FieldTypeDate)

	case model.FieldTypeDateTimeRange:
		current, _ := item.Value.(binding.DateRange)
		start, err := r.askTime(ctx, label+" (start)", help, current.Start, false)
		if err != nil {
			return nil, err
		}
		end, err := r.askTime(ctx, label+" (end)", help, current.End, false)
		if err != nil {
			return nil, err
		}
		if start == nil && end == nil {
			return nil, nil
		}
		rng := binding.DateRange{}
		rng.Start, _ = start.(time.Time)
		rng.End, _ = end.(time.Time)
		return rng, nil
	}

	if field.Prop("multiline", "") == "true" || field.Prop("rows", "") != "" {
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: binding.Stringify(item.Value), Help: help})
	}
	return r.driver.Input(ctx, InputConfig{
		Message:     label,
		Default:     binding.Stringify(item.Value),
		Help:        help,
		Placeholder: field.Prop("placeholder", ""),
	})
}

// askTime returns nil for an empty answer so optional dates stay unset.
func (r *Renderer) askTime(ctx context.Context, label, help string, current time.Time, dateOnly bool) (any, error) {
	layout := time.DateTime
	if dateOnly {
		layout = time.DateOnly
	}
	def := ""
	if !current.IsZero() {
		def = current.Format(layout)
	}
	raw, err := r.driver.Input(ctx, InputConfig{
		Message: label,
		Default: def,
		Help:    help,
		Check:   timeValidator,
	})
	if err != nil {
		return nil, err
	}
	parsed, ok, err := binding.ParseTime(raw, nil)
	if err != nil || !ok {
		return nil, nil
	}
	return parsed, nil
}

// Serialize encodes values in the configured output format.
func (r *Renderer) Serialize(form model.FormModel, values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(transport.EncodeForm(values).Encode()), nil
	case OutputFormatPrettyText:
		return prettyText(form, values), nil
	case OutputFormatYAML:
		out, err := yaml.Marshal(plainValues(values))
		if err != nil {
			return nil, fmt.Errorf("tui: encode yaml: %w", err)
		}
		return out, nil
	default:
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return out, nil
	}
}

// prettyText lists values in field order, then any extra keys sorted.
func prettyText(form model.FormModel, values map[string]any) []byte {
	var builder strings.Builder
	seen := make(map[string]struct{}, len(values))
	for _, field := range form.Fields {
		value, ok := values[field.ID]
		if !ok {
			continue
		}
		seen[field.ID] = struct{}{}
		fmt.Fprintf(&builder, "%s: %s\n", displayLabel(field), displayValue(value))
	}
	var extra []string
	for key := range values {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	for _, key := range extra {
		fmt.Fprintf(&builder, "%s: %s\n", key, displayValue(values[key]))
	}
	return []byte(builder.String())
}

// plainValues converts times into strings so YAML output matches the form
// encoding.
func plainValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		switch typed := value.(type) {
		case time.Time:
			out[key] = typed.Format(time.DateTime)
		case binding.DateRange:
			out[key] = []string{typed.Start.Format(time.DateTime), typed.End.Format(time.DateTime)}
		default:
			out[key] = value
		}
	}
	return out
}

func displayLabel(field model.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return field.ID
}

func displayValue(value any) string {
	switch typed := value.(type) {
	case time.Time:
		if typed.IsZero() {
			return ""
		}
		return typed.Format(time.DateTime)
	case binding.DateRange:
		return displayValue(typed.Start) + " ~ " + displayValue(typed.End)
	}
	if values, ok := binding.StringSlice(value); ok {
		return strings.Join(values, ", ")
	}
	return binding.Stringify(value)
}

func optionColumns(options []model.Option) (titles, values []string) {
	titles = make([]string, len(options))
	values = make([]string, len(options))
	for idx, option := range options {
		titles[idx], values[idx] = option.Title, option.Value
	}
	return titles, values
}

func pick(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return values[idx]
}

func walkTree(nodes []model.TreeNode, depth int, visit func(model.TreeNode, int)) {
	for _, node := range nodes {
		visit(node, depth)
		walkTree(node.Children, depth+1, visit)
	}
}

func numberValidator(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func timeValidator(raw string) error {
	if _, _, err := binding.ParseTime(raw, nil); err != nil {
		return err
	}
	return nil
}

// parseNumber returns nil for a blank answer.
func parseNumber(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	f, _ := strconv.ParseFloat(trimmed, 64)
	return f
}
