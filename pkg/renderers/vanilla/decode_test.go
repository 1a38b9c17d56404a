package vanilla

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
)

func TestDecodeValues(t *testing.T) {
	form := model.FormModel{Fields: []model.Field{
		{ID: "name", Type: model.FieldTypeText},
		{ID: "active", Type: model.FieldTypeCheckbox},
		{ID: "remember", Type: model.FieldTypeCheckbox},
		{ID: "tags", Type: model.FieldTypeMultiSelect},
		{ID: "window", Type: model.FieldTypeDateTimeRange},
		{ID: "note", Type: model.FieldTypePlainText},
		{ID: "missing", Type: model.FieldTypeNumber},
	}}
	posted := url.Values{
		"name":   {"Depot"},
		"active": {"true"},
		"tags":   {"a", "", "b"},
		"window": {"2024-01-02T10:00", "2024-01-03T10:00"},
		"note":   {"ignored"},
	}

	want := map[string]any{
		"name":     "Depot",
		"active":   true,
		"remember": false,
		"tags":     []string{"a", "b"},
		"window":   []string{"2024-01-02T10:00", "2024-01-03T10:00"},
	}
	if diff := cmp.Diff(want, DecodeValues(form, posted)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
