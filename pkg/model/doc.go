// Package model defines the declarative field configuration consumed by the
// binding, pipeline, and renderer packages. A FormModel is an ordered list of
// Field values; each Field names a FieldType, display metadata, a value seed
// (default, ancestor reference), an optional option source, and two pure
// transforms: Render (storage value to display value) and Submit (display value
// to wire value). Validation rules expose canonical identifiers (required,
// min/max, minLength/maxLength, pattern, custom) with string parameters so
// renderers can map them onto HTML attributes or runtime validators.
package model
