package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formkit/pkg/binding"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model.
type RenderOptions struct {
	// Source feeds value resolution: mode, initial record, ancestor record and
	// the attributes applied to every control.
	Source binding.Source
	// Errors surfaces validation feedback keyed by field id.
	Errors map[string][]string
	// FormErrors are messages that do not belong to a single field.
	FormErrors []string
	// Alert is the persistent business error shown above the fields.
	Alert string
	// Loading disables the submit control while a request is in flight.
	Loading bool
	// Hidden fields are emitted as hidden inputs alongside the fields.
	Hidden []HiddenField
	// Theme supplies partial overrides, tokens and CSS variables.
	Theme  *theme.RendererConfig
	Layout Layout
}

// Layout controls the chrome around the fields.
type Layout struct {
	// Variant is one of "modal", "inline" or "search".
	Variant string
	// Title is shown in the header of modal forms.
	Title string
	// ItemsPerRow arranges fields in a grid. Zero means one per row.
	ItemsPerRow int
	// Action overrides the form endpoint in the rendered markup.
	Action         string
	SubmitLabel    string
	CancelLabel    string
	ShowCancel     bool
	SubmitDisabled bool
}

// Rows splits bound fields into rows of at most perRow visible items. Hidden
// fields stay in the row where they appear but do not count toward the limit.
func Rows(bound []binding.Bound, perRow int) [][]binding.Bound {
	if perRow <= 0 {
		perRow = 1
	}
	var (
		rows    [][]binding.Bound
		current []binding.Bound
		visible int
	)
	for _, item := range bound {
		if !item.Hidden && visible == perRow {
			rows = append(rows, current)
			current, visible = nil, 0
		}
		current = append(current, item)
		if !item.Hidden {
			visible++
		}
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}
