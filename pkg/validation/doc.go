// Package validation evaluates model.ValidationRule lists against collected
// form values. Failures are reported per field through *Error so hosts can
// place messages next to the offending widget.
package validation
