package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
)

func TestResolve_ExplicitWidgetWins(t *testing.T) {
	reg := NewRegistry()
	field := model.Field{
		ID:    "remember",
		Type:  model.FieldTypeCheckbox,
		Props: map[string]string{"widget": "custom-toggle"},
	}

	if got, ok := reg.Resolve(field); !ok || got != "custom-toggle" {
		t.Fatalf("expected explicit widget to win, got %q (ok=%v)", got, ok)
	}
}

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		field  model.Field
		expect string
	}{
		{name: "plain text input", field: model.Field{Type: model.FieldTypeText}, expect: WidgetInput},
		{name: "multiline text", field: model.Field{Type: model.FieldTypeText, Props: map[string]string{"rows": "4"}}, expect: WidgetTextarea},
		{name: "input number", field: model.Field{Type: model.FieldTypeInputNumber}, expect: WidgetNumber},
		{name: "number", field: model.Field{Type: model.FieldTypeNumber}, expect: WidgetNumber},
		{name: "password", field: model.Field{Type: model.FieldTypePassword}, expect: WidgetPassword},
		{name: "multi select", field: model.Field{Type: model.FieldTypeMultiSelect}, expect: WidgetMultiSelect},
		{name: "range", field: model.Field{Type: model.FieldTypeDateTimeRange}, expect: WidgetDateRange},
		{name: "cascader", field: model.Field{Type: model.FieldTypeCascader}, expect: WidgetCascader},
		{name: "checkbox", field: model.Field{Type: model.FieldTypeCheckbox}, expect: WidgetCheckbox},
		{name: "readonly", field: model.Field{Type: model.FieldTypePlainText}, expect: WidgetPlainText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.field)
			if !ok {
				t.Fatalf("expected widget %q, got none", tc.expect)
			}
			if got != tc.expect {
				t.Fatalf("widget mismatch: want %q got %q", tc.expect, got)
			}
		})
	}
}

func TestResolve_PriorityAndOrder(t *testing.T) {
	reg := &Registry{}
	reg.Register("first", 10, func(model.Field) bool { return true })
	reg.Register("second", 10, func(model.Field) bool { return true })
	reg.Register("winner", 20, func(field model.Field) bool { return field.Type == model.FieldTypeDate })

	if got, _ := reg.Resolve(model.Field{Type: model.FieldTypeDate}); got != "winner" {
		t.Fatalf("expected higher priority to win, got %q", got)
	}
	if got, _ := reg.Resolve(model.Field{Type: model.FieldTypeText}); got != "first" {
		t.Fatalf("expected registration order tie-break, got %q", got)
	}
}

func TestResolve_EmptyRegistry(t *testing.T) {
	reg := &Registry{}
	if got, ok := reg.Resolve(model.Field{Type: model.FieldTypeText}); ok {
		t.Fatalf("expected no widget, got %q", got)
	}
}

func TestDecorate_SetsWidgetProp(t *testing.T) {
	reg := NewRegistry()
	props := map[string]string{"placeholder": "Name"}
	form := model.FormModel{
		ID: "user",
		Fields: []model.Field{
			{ID: "name", Type: model.FieldTypeText, Props: props},
			{ID: "role", Type: model.FieldTypeSelect, Props: map[string]string{"widget": "chips"}},
		},
	}

	if err := model.Apply(&form, reg); err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := []map[string]string{
		{"placeholder": "Name", "widget": WidgetInput},
		{"widget": "chips"},
	}
	got := []map[string]string{form.Fields[0].Props, form.Fields[1].Props}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}
	if _, ok := props["widget"]; ok {
		t.Fatalf("decorate must not mutate the caller's props map")
	}
}
