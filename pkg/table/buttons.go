package table

import "context"

// Built-in button ids.
const (
	ButtonParentAdd    = "parent-add"
	ButtonParentRemove = "parent-remove"
	ButtonParentEdit   = "parent-edit"
	ButtonChildAdd     = "child-add"
	ButtonChildRemove  = "child-remove"
	ButtonChildEdit    = "child-edit"
)

// Button is one toolbar entry.
type Button struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Primary  bool   `json:"primary,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Buttons returns the toolbar for the current selection: the built-in
// buttons allowed by the display mask, then any caller buttons.
func (c *Controller) Buttons() []Button {
	c.mu.Lock()
	parentSelected := len(c.parentKeys)
	childSelected := len(c.childKeys)
	c.mu.Unlock()

	display := c.cfg.display
	parent := c.params.Parent
	var buttons []Button
	add := func(index int, button Button) {
		if display[index] {
			buttons = append(buttons, button)
		}
	}

	add(0, Button{ID: ButtonParentAdd, Label: "Add " + parent.Name, Primary: true})
	add(1, Button{ID: ButtonParentRemove, Label: "Remove " + parent.Name, Disabled: parentSelected == 0})
	add(2, Button{ID: ButtonParentEdit, Label: "Edit " + parent.Name, Disabled: parentSelected != 1})
	if child := c.params.Child; child != nil {
		add(3, Button{ID: ButtonChildAdd, Label: "Add " + child.Name, Primary: true, Disabled: parentSelected != 1})
		add(4, Button{ID: ButtonChildRemove, Label: "Remove " + child.Name, Disabled: childSelected == 0})
		add(5, Button{ID: ButtonChildEdit, Label: "Edit " + child.Name, Disabled: childSelected != 1})
	}
	return append(buttons, c.cfg.extra...)
}

// Press runs the action behind a built-in button.
func (c *Controller) Press(ctx context.Context, id string) error {
	switch id {
	case ButtonParentAdd:
		return c.Add(true)
	case ButtonParentRemove:
		return c.Remove(ctx, true)
	case ButtonParentEdit:
		return c.Edit(true)
	case ButtonChildAdd:
		return c.Add(false)
	case ButtonChildRemove:
		return c.Remove(ctx, false)
	case ButtonChildEdit:
		return c.Edit(false)
	}
	return nil
}

// RowClass stripes odd rows.
func RowClass(index int) string {
	if index%2 == 1 {
		return "striped"
	}
	return ""
}
