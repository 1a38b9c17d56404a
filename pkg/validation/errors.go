package validation

import (
	"fmt"
	"strings"
)

// Issue is a single field-level failure.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error aggregates field failures in configuration order.
type Error struct {
	Fields map[string][]string
	order  []string
}

func (e *Error) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Issues flattens the failures in field order.
func (e *Error) Issues() []Issue {
	if e == nil {
		return nil
	}
	var out []Issue
	for _, field := range e.order {
		for _, message := range e.Fields[field] {
			out = append(out, Issue{Field: field, Message: message})
		}
	}
	return out
}

// First returns the first message recorded for a field.
func (e *Error) First(field string) string {
	if e == nil || len(e.Fields[field]) == 0 {
		return ""
	}
	return e.Fields[field][0]
}

func (e *Error) Error() string {
	if e == nil || len(e.order) == 0 {
		return "validation: no issues"
	}
	return fmt.Sprintf("validation: %d field(s) invalid: %s", len(e.order), strings.Join(e.order, ", "))
}
