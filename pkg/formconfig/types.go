package formconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/table"
	"github.com/goliatone/go-formkit/pkg/upload"
)

// Store keeps the parsed documents. It is safe for concurrent readers when
// treated as immutable after construction.
type Store struct {
	forms   map[string]entry[model.FormModel]
	tables  map[string]entry[table.Params]
	uploads map[string]entry[upload.Config]
	pending []pendingTable
}

type entry[T any] struct {
	value  T
	source string
}

type documentFile struct {
	Forms   map[string]formFile      `yaml:"forms"`
	Tables  map[string]tableFile     `yaml:"tables"`
	Uploads map[string]upload.Config `yaml:"uploads"`
}

type formFile struct {
	Title    string            `yaml:"title,omitempty"`
	Endpoint string            `yaml:"endpoint,omitempty"`
	Method   string            `yaml:"method,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
	Fields   []fieldFile       `yaml:"fields,omitempty"`
}

type fieldFile struct {
	ID           string                 `yaml:"id"`
	Type         string                 `yaml:"type,omitempty"`
	Label        string                 `yaml:"label,omitempty"`
	HideLabel    bool                   `yaml:"hideLabel,omitempty"`
	Hide         bool                   `yaml:"hide,omitempty"`
	DefaultValue any                    `yaml:"defaultValue,omitempty"`
	IsRefData    bool                   `yaml:"isRefData,omitempty"`
	RefField     string                 `yaml:"refField,omitempty"`
	Rules        []model.ValidationRule `yaml:"rules,omitempty"`
	Props        map[string]string      `yaml:"props,omitempty"`
	Options      optionList             `yaml:"options,omitempty"`
	Tree         []model.TreeNode       `yaml:"tree,omitempty"`
	Render       transformChain         `yaml:"render,omitempty"`
	Submit       transformChain         `yaml:"submit,omitempty"`
}

type pageFile struct {
	Name      string       `yaml:"name"`
	KeyField  string       `yaml:"keyField"`
	AddURL    string       `yaml:"addUrl"`
	RemoveURL string       `yaml:"removeUrl"`
	Form      string       `yaml:"form"`
	Table     table.Config `yaml:"table"`
}

type tableFile struct {
	Parent pageFile  `yaml:"parent"`
	Child  *pageFile `yaml:"child"`
}

// optionList accepts a sequence of {value, title} mappings or bare scalars,
// or a value: title mapping kept in document order.
type optionList []model.Option

func (o *optionList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(optionList, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			out = append(out, model.Option{Value: node.Content[i].Value, Title: node.Content[i+1].Value})
		}
		*o = out
		return nil
	case yaml.SequenceNode:
		out := make(optionList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				out = append(out, model.Option{Value: item.Value, Title: item.Value})
				continue
			}
			var opt model.Option
			if err := item.Decode(&opt); err != nil {
				return err
			}
			if opt.Title == "" {
				opt.Title = opt.Value
			}
			out = append(out, opt)
		}
		*o = out
		return nil
	}
	return fmt.Errorf("line %d: options must be a list or a map", node.Line)
}

// transformRef names a registered transform and its arguments.
type transformRef struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

// transformChain accepts "upper", {name: prefix, args: [x]} or a list of
// either.
type transformChain []transformRef

func (t *transformChain) UnmarshalYAML(node *yaml.Node) error {
	decodeOne := func(n *yaml.Node) (transformRef, error) {
		if n.Kind == yaml.ScalarNode {
			return transformRef{Name: n.Value}, nil
		}
		type plain transformRef
		var ref plain
		if err := n.Decode(&ref); err != nil {
			return transformRef{}, err
		}
		return transformRef(ref), nil
	}
	if node.Kind == yaml.SequenceNode {
		out := make(transformChain, 0, len(node.Content))
		for _, item := range node.Content {
			ref, err := decodeOne(item)
			if err != nil {
				return err
			}
			out = append(out, ref)
		}
		*t = out
		return nil
	}
	ref, err := decodeOne(node)
	if err != nil {
		return err
	}
	*t = transformChain{ref}
	return nil
}
