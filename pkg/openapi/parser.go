package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	// ErrOperationNotFound is returned when no operation has the requested id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without an object body.
	ErrNoRequestBody = errors.New("openapi: operation has no request body schema")
)

// Operation summarises one operation of a document.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	HasBody bool
}

type options struct {
	validate bool
	endpoint string
}

// Option configures parsing.
type Option func(*options)

// WithoutValidation skips document validation.
func WithoutValidation() Option {
	return func(o *options) {
		o.validate = false
	}
}

// WithEndpoint overrides the form endpoint derived from servers and path.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

func newOptions(opts []Option) options {
	cfg := options{validate: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func parse(ctx context.Context, data []byte, cfg options) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return doc, nil
}

type located struct {
	method    string
	path      string
	operation *openapi3.Operation
}

func walk(doc *openapi3.T) []located {
	var out []located
	if doc.Paths == nil {
		return nil
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			out = append(out, located{method: strings.ToUpper(method), path: path, operation: op})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return opID(out[i]) < opID(out[j])
	})
	return out
}

func opID(l located) string {
	if l.operation.OperationID != "" {
		return l.operation.OperationID
	}
	return strings.ToLower(l.method) + ":" + l.path
}

// Operations lists the operations of a document ordered by id. Operations
// without an operationId are named "method:path".
func Operations(ctx context.Context, data []byte, opts ...Option) ([]Operation, error) {
	doc, err := parse(ctx, data, newOptions(opts))
	if err != nil {
		return nil, err
	}
	located := walk(doc)
	out := make([]Operation, 0, len(located))
	for _, l := range located {
		out = append(out, Operation{
			ID:      opID(l),
			Method:  l.method,
			Path:    l.path,
			Summary: l.operation.Summary,
			HasBody: requestSchema(l.operation) != nil,
		})
	}
	return out, nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func endpoint(doc *openapi3.T, path string) string {
	if len(doc.Servers) == 0 || doc.Servers[0] == nil {
		return path
	}
	base := strings.TrimRight(doc.Servers[0].URL, "/")
	if base == "" || base == "/" {
		return path
	}
	return base + path
}
