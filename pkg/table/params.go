package table

import "github.com/goliatone/go-formkit/pkg/model"

// DefaultKeyField identifies rows when a page does not name its key.
const DefaultKeyField = "ID"

// DefaultPageSize is the initial parent page size.
const DefaultPageSize = 20

// Column describes one table column.
type Column struct {
	Title string `json:"title" yaml:"title"`
	Key   string `json:"key" yaml:"key"`
}

// Config points a table at its data.
type Config struct {
	URL     string   `json:"url" yaml:"url"`
	Columns []Column `json:"columns" yaml:"columns"`
	// ParentQuery maps a parent row onto the child request: the first entry
	// is the child parameter name, the second the parent row field.
	ParentQuery [2]string `json:"parentQuery,omitempty" yaml:"parentQuery,omitempty"`
}

// PageParam describes one level of the master/detail view.
type PageParam struct {
	Name      string          `json:"name" yaml:"name"`
	KeyField  string          `json:"keyField,omitempty" yaml:"keyField,omitempty"`
	AddURL    string          `json:"addUrl" yaml:"addUrl"`
	RemoveURL string          `json:"removeUrl" yaml:"removeUrl"`
	Form      model.FormModel `json:"form" yaml:"form"`
	Table     Config          `json:"table" yaml:"table"`
}

func (p PageParam) key() string {
	if p.KeyField == "" {
		return DefaultKeyField
	}
	return p.KeyField
}

// Params pairs the parent level with an optional child level.
type Params struct {
	Parent PageParam  `json:"parent" yaml:"parent"`
	Child  *PageParam `json:"child,omitempty" yaml:"child,omitempty"`
}

// Pagination is the parent table position.
type Pagination struct {
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// Sorter orders the parent table. Order is "ascend" or "descend".
type Sorter struct {
	Field string
	Order string
}

// Row is one record as returned by the list endpoints.
type Row = map[string]any
