package openapi

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
)

// Vendor extensions read from property schemas.
const (
	ExtensionWidget = "x-formkit-widget"
	ExtensionOrder  = "x-formkit-order"
)

// MultilineThreshold turns strings with a larger maxLength into textareas.
const MultilineThreshold = 255

// FormFromOperation builds a form from the request body of operationID.
// Properties become fields ordered by x-formkit-order, then by name.
// Nested objects and arrays without enum items are skipped; their names are
// listed in the form's "skipped" metadata entry.
func FormFromOperation(ctx context.Context, data []byte, operationID string, opts ...Option) (model.FormModel, error) {
	cfg := newOptions(opts)
	doc, err := parse(ctx, data, cfg)
	if err != nil {
		return model.FormModel{}, err
	}

	var found *located
	for _, l := range walk(doc) {
		if opID(l) == operationID {
			l := l
			found = &l
			break
		}
	}
	if found == nil {
		return model.FormModel{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	body := requestSchema(found.operation)
	if body == nil || len(body.Properties) == 0 {
		return model.FormModel{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	form := model.FormModel{
		ID:       operationID,
		Title:    found.operation.Summary,
		Endpoint: endpoint(doc, found.path),
		Method:   found.method,
	}
	if cfg.endpoint != "" {
		form.Endpoint = cfg.endpoint
	}
	if form.Title == "" {
		form.Title = operationID
	}

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	var skipped []string
	for _, name := range propertyOrder(body.Properties) {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			skipped = append(skipped, name)
			continue
		}
		field, ok := fieldFromSchema(name, ref.Value, required[name])
		if !ok {
			skipped = append(skipped, name)
			continue
		}
		form.Fields = append(form.Fields, field)
	}
	if len(skipped) > 0 {
		form.Metadata = map[string]string{"skipped": strings.Join(skipped, ",")}
	}
	if err := form.Validate(); err != nil {
		return model.FormModel{}, fmt.Errorf("openapi: %s: %w", operationID, err)
	}
	return form, nil
}

func propertyOrder(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	order := func(name string) (float64, bool) {
		ref := props[name]
		if ref == nil || ref.Value == nil {
			return 0, false
		}
		switch v := ref.Value.Extensions[ExtensionOrder].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			f, err := strconv.ParseFloat(v, 64)
			return f, err == nil
		}
		return 0, false
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, iok := order(names[i])
		oj, jok := order(names[j])
		switch {
		case iok && jok && oi != oj:
			return oi < oj
		case iok != jok:
			return iok
		}
		return names[i] < names[j]
	})
	return names
}

func fieldFromSchema(name string, schema *openapi3.Schema, required bool) (model.Field, bool) {
	field := model.Field{
		ID:           name,
		Label:        schema.Title,
		DefaultValue: schema.Default,
	}
	if field.Label == "" {
		field.Label = name
	}
	props := map[string]string{}
	if schema.Description != "" {
		props["helpText"] = schema.Description
	}
	if widget, ok := schema.Extensions[ExtensionWidget].(string); ok && widget != "" {
		props["widget"] = widget
	}

	types := schema.Type
	switch {
	case schema.ReadOnly:
		field.Type = model.FieldTypePlainText
	case types.Is(openapi3.TypeBoolean):
		field.Type = model.FieldTypeCheckbox
	case len(schema.Enum) > 0:
		field.Type = model.FieldTypeSelect
		field.ArrayData = enumOptions(schema.Enum)
	case types.Is(openapi3.TypeInteger), types.Is(openapi3.TypeNumber):
		field.Type = model.FieldTypeNumber
	case types.Is(openapi3.TypeString):
		field.Type = stringType(schema.Format)
		if schema.Format == "textarea" || (schema.MaxLength != nil && *schema.MaxLength > MultilineThreshold) {
			props["multiline"] = "true"
		}
	case types.Is(openapi3.TypeArray):
		if schema.Items == nil || schema.Items.Value == nil || len(schema.Items.Value.Enum) == 0 {
			return model.Field{}, false
		}
		field.Type = model.FieldTypeMultiSelect
		field.ArrayData = enumOptions(schema.Items.Value.Enum)
	default:
		return model.Field{}, false
	}

	if len(props) > 0 {
		field.Props = props
	}
	field.Rules = rules(schema, required)
	return field, true
}

func stringType(format string) model.FieldType {
	switch format {
	case "password":
		return model.FieldTypePassword
	case "date":
		return model.FieldTypeDate
	case "date-time":
		return model.FieldTypeDateTime
	}
	return model.FieldTypeText
}

func enumOptions(values []any) model.StaticOptions {
	out := make(model.StaticOptions, 0, len(values))
	for _, value := range values {
		text := binding.Stringify(value)
		out = append(out, model.Option{Value: text, Title: text})
	}
	return out
}

func rules(schema *openapi3.Schema, required bool) []model.ValidationRule {
	var out []model.ValidationRule
	if required {
		out = append(out, model.ValidationRule{Kind: model.ValidationRuleRequired})
	}
	if schema.MinLength > 0 {
		out = append(out, valueRule(model.ValidationRuleMinLength, strconv.FormatUint(schema.MinLength, 10)))
	}
	if schema.MaxLength != nil {
		out = append(out, valueRule(model.ValidationRuleMaxLength, strconv.FormatUint(*schema.MaxLength, 10)))
	}
	if schema.Min != nil {
		out = append(out, valueRule(model.ValidationRuleMin, strconv.FormatFloat(*schema.Min, 'f', -1, 64)))
	}
	if schema.Max != nil {
		out = append(out, valueRule(model.ValidationRuleMax, strconv.FormatFloat(*schema.Max, 'f', -1, 64)))
	}
	if schema.Pattern != "" {
		out = append(out, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": schema.Pattern},
		})
	}
	return out
}

func valueRule(kind, value string) model.ValidationRule {
	return model.ValidationRule{Kind: kind, Params: map[string]string{"value": value}}
}
