// Package openapi builds form models from the request bodies of OpenAPI 3
// operations. Documents are parsed with kin-openapi; each property of the
// request schema becomes one field, with JSON Schema keywords mapped onto
// field types and validation rules.
package openapi
