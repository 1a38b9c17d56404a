// Package binding turns declarative field configuration into bound fields:
// resolved values, resolved options, and display flags a host renderer can
// draw without further lookups. Type-specific behaviour is dispatched through
// a Registry keyed by model.FieldType so new widget kinds plug in without
// touching the resolution pipeline.
package binding
