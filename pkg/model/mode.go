package model

// Mode tells the binding layer whether the form is creating a new record or
// editing an existing one. Edit mode treats any key present in the initial
// data as authoritative, even when its value is empty.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// ModeFor infers the mode from initial data: non-empty data means edit.
func ModeFor(initial map[string]any) Mode {
	if len(initial) > 0 {
		return ModeEdit
	}
	return ModeCreate
}

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}
