package components

// Canonical component names used by the vanilla renderer and default registry.
const (
	NameInput       = "input"
	NameTextarea    = "textarea"
	NamePassword    = "password"
	NameNumber      = "number"
	NameSelect      = "select"
	NameMultiSelect = "multi-select"
	NameRadio       = "radio"
	NameDate        = "date"
	NameDateTime    = "datetime"
	NameDateRange   = "datetime-range"
	NameCascader    = "cascader"
	NameTreeSelect  = "tree-select"
	NameCheckbox    = "checkbox"
	NamePlainText   = "plain-text"
)
