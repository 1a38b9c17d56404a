package formconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Marshal writes forms as a YAML document that Parse reads back. Option
// sources are resolved once and stored inline. Render and submit functions
// have no declarative form and are dropped.
func Marshal(forms ...model.FormModel) ([]byte, error) {
	doc := struct {
		Forms map[string]formFile `yaml:"forms"`
	}{Forms: make(map[string]formFile, len(forms))}

	for _, form := range forms {
		if _, dup := doc.Forms[form.ID]; dup {
			return nil, fmt.Errorf("formconfig: duplicate form id %q", form.ID)
		}
		raw := formFile{
			Title:    form.Title,
			Endpoint: form.Endpoint,
			Method:   form.Method,
			Metadata: form.Metadata,
			Fields:   make([]fieldFile, 0, len(form.Fields)),
		}
		for _, field := range form.Fields {
			out, err := exportField(field)
			if err != nil {
				return nil, fmt.Errorf("formconfig: form %q field %q: %w", form.ID, field.ID, err)
			}
			raw.Fields = append(raw.Fields, out)
		}
		doc.Forms[form.ID] = raw
	}
	return yaml.Marshal(doc)
}

func exportField(field model.Field) (fieldFile, error) {
	out := fieldFile{
		ID:           field.ID,
		Type:         string(field.Type),
		Label:        field.Label,
		HideLabel:    field.HideLabel,
		Hide:         field.Hide,
		DefaultValue: field.DefaultValue,
		IsRefData:    field.IsRefData,
		RefField:     field.RefField,
		Rules:        field.Rules,
		Props:        field.Props,
	}
	if field.ArrayData != nil {
		set, err := field.ArrayData.Resolve()
		if err != nil {
			return fieldFile{}, fmt.Errorf("resolve options: %w", err)
		}
		out.Options = optionList(set.Options)
		out.Tree = set.Tree
	}
	return out, nil
}
