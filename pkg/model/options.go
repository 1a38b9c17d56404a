package model

import (
	"fmt"
	"sort"
)

// Option is a single flat choice.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Title string `json:"title" yaml:"title"`
}

// TreeNode is a hierarchical choice used by cascader and tree-select fields.
type TreeNode struct {
	Value    string     `json:"value" yaml:"value"`
	Label    string     `json:"label" yaml:"label"`
	Children []TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// OptionSet is what an OptionSource produces: flat options, a tree, or both.
type OptionSet struct {
	Options []Option
	Tree    []TreeNode
}

// OptionSource supplies the choices for select-like fields. Resolve must be
// free of side effects; the binding layer calls it at most once per pass.
type OptionSource interface {
	Resolve() (OptionSet, error)
}

// StaticOptions is a fixed flat option list.
type StaticOptions []Option

func (s StaticOptions) Resolve() (OptionSet, error) {
	return OptionSet{Options: append([]Option(nil), s...)}, nil
}

// StaticTree is a fixed hierarchical option list.
type StaticTree []TreeNode

func (s StaticTree) Resolve() (OptionSet, error) {
	return OptionSet{Tree: append([]TreeNode(nil), s...)}, nil
}

// OptionsFunc adapts a zero-argument producer.
type OptionsFunc func() (OptionSet, error)

func (fn OptionsFunc) Resolve() (OptionSet, error) {
	if fn == nil {
		return OptionSet{}, nil
	}
	return fn()
}

// OptionsFromMap builds a flat option list from a value→title map, ordered by
// value so output stays deterministic.
func OptionsFromMap(values map[string]string) StaticOptions {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make(StaticOptions, 0, len(keys))
	for _, key := range keys {
		out = append(out, Option{Value: key, Title: values[key]})
	}
	return out
}

// FindPath returns the chain of nodes from a root to the node holding value.
func FindPath(nodes []TreeNode, value string) ([]TreeNode, bool) {
	for _, node := range nodes {
		if node.Value == value {
			return []TreeNode{node}, true
		}
		if path, ok := FindPath(node.Children, value); ok {
			return append([]TreeNode{node}, path...), true
		}
	}
	return nil, false
}

// Leaves flattens a tree into root-to-leaf paths.
func Leaves(nodes []TreeNode) [][]TreeNode {
	var out [][]TreeNode
	var walk func(prefix []TreeNode, items []TreeNode)
	walk = func(prefix []TreeNode, items []TreeNode) {
		for _, node := range items {
			path := append(append([]TreeNode(nil), prefix...), node)
			if len(node.Children) == 0 {
				out = append(out, path)
				continue
			}
			walk(path, node.Children)
		}
	}
	walk(nil, nodes)
	return out
}

func (o Option) String() string {
	return fmt.Sprintf("%s (%s)", o.Title, o.Value)
}
