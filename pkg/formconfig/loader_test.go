package formconfig_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/formconfig"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/transforms"
)

func TestParse_FieldsAndTransforms(t *testing.T) {
	doc := `
forms:
  profile:
    title: Profile
    endpoint: /save
    fields:
      - {id: title, defaultValue: text, render: {name: prefix, args: [new]}}
      - {id: code, submit: [trim, upper]}
      - id: colour
        type: select
        options: {r: Red, g: Green}
      - id: size
        type: radio
        options: [S, {value: M, title: Medium}]
`
	store, err := formconfig.Parse([]byte(doc), "inline.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, ok := store.Form("profile")
	if !ok {
		t.Fatal("profile form missing")
	}
	if form.Title != "Profile" || form.Endpoint != "/save" {
		t.Fatalf("unexpected form header: %+v", form)
	}
	if form.Fields[0].Type != model.FieldTypeText {
		t.Fatalf("missing type should default to text, got %q", form.Fields[0].Type)
	}

	bound, err := binding.BindAll(form.Fields, binding.Source{})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if bound[0].Value != "newtext" {
		t.Fatalf("render transform not applied: %v", bound[0].Value)
	}

	payload := pipeline.TransformForSubmission(map[string]any{"code": "  ab ", "colour": "r"}, form.Fields)
	if diff := cmp.Diff(map[string]any{"code": "AB", "colour": "r"}, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	colours, err := form.Fields[2].ArrayData.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]model.Option{{Value: "r", Title: "Red"}, {Value: "g", Title: "Green"}}, colours.Options); diff != "" {
		t.Fatalf("map options mismatch (-want +got):\n%s", diff)
	}
	sizes, _ := form.Fields[3].ArrayData.Resolve()
	if diff := cmp.Diff([]model.Option{{Value: "S", Title: "S"}, {Value: "M", Title: "Medium"}}, sizes.Options); diff != "" {
		t.Fatalf("list options mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSONDocument(t *testing.T) {
	doc := `{"forms": {"login": {"fields": [{"id": "pwd", "type": "password", "submit": "sha1"}]}}}`
	store, err := formconfig.Parse([]byte(doc), "inline.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, _ := store.Form("login")
	got := form.Fields[0].Submit("secret", form.Fields, nil)
	if got != "e5e9fa1ba31ecd1ae84f75caaa474f3a663f05f4" {
		t.Fatalf("sha1 submit = %v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
		is   error
	}{
		{name: "empty", doc: "  ", want: "is empty"},
		{name: "duplicate field", doc: "forms: {a: {fields: [{id: x}, {id: x}]}}", is: model.ErrDuplicateID},
		{name: "unknown type", doc: "forms: {a: {fields: [{id: x, type: slider}]}}", is: model.ErrUnknownFieldType},
		{name: "unknown transform", doc: "forms: {a: {fields: [{id: x, render: rot13}]}}", is: transforms.ErrUnknown},
		{name: "bad options", doc: "forms: {a: {fields: [{id: x, options: 3}]}}", want: "options must be a list or a map"},
		{name: "unknown table form", doc: "tables: {t: {parent: {name: P, form: nope, table: {url: /l}}}}", want: `unknown form "nope"`},
		{name: "upload without url", doc: "uploads: {u: {accept: .csv}}", want: "url is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formconfig.Parse([]byte(tt.doc), "doc.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("expected %v, got %v", tt.is, err)
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFS_DuplicateFormAcrossFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml":     {Data: []byte("forms: {login: {fields: [{id: user}]}}")},
		"b/c.yml":    {Data: []byte("forms: {login: {fields: [{id: user}]}}")},
		"readme.txt": {Data: []byte("ignored")},
	}
	_, err := formconfig.LoadFS(fsys)
	if err == nil || !strings.Contains(err.Error(), `duplicate form "login"`) {
		t.Fatalf("expected duplicate form error, got %v", err)
	}
}

func TestLoadFS_NilAndCrossFileTables(t *testing.T) {
	store, err := formconfig.LoadFS(nil)
	if err != nil || !store.Empty() {
		t.Fatalf("nil fs should give an empty store, got %v %v", store, err)
	}

	fsys := fstest.MapFS{
		"tables.yaml": {Data: []byte("tables: {t: {parent: {name: Site, form: site, table: {url: /list}}}}")},
		"forms.yaml":  {Data: []byte("forms: {site: {fields: [{id: Name}]}}")},
	}
	store, err = formconfig.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	params, ok := store.Table("t")
	if !ok {
		t.Fatal("table missing")
	}
	if params.Parent.Form.ID != "site" || params.Parent.Table.URL != "/list" {
		t.Fatalf("unexpected params: %+v", params.Parent)
	}
	if store.Source("site") != "forms.yaml" {
		t.Fatalf("source = %q", store.Source("site"))
	}
}

func TestEmbeddedFS_Demo(t *testing.T) {
	store, err := formconfig.LoadFS(formconfig.EmbeddedFS())
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	if diff := cmp.Diff([]string{"item", "showcase", "site", "site-search"}, store.FormIDs()); diff != "" {
		t.Fatalf("form ids mismatch (-want +got):\n%s", diff)
	}
	params, ok := store.Table("sites")
	if !ok || params.Child == nil {
		t.Fatal("sites table with child level expected")
	}
	if diff := cmp.Diff([2]string{"ParentID", "ID"}, params.Child.Table.ParentQuery); diff != "" {
		t.Fatalf("parent query mismatch (-want +got):\n%s", diff)
	}
	cfg, ok := store.Upload("sites")
	if !ok || cfg.Accept != ".csv" || cfg.MaxSizeMB != 2 || !cfg.Multiple {
		t.Fatalf("unexpected upload config: %+v", cfg)
	}

	showcase, _ := store.Form("showcase")
	bound, err := binding.BindAll(showcase.Fields, binding.Source{})
	if err != nil {
		t.Fatalf("bind showcase: %v", err)
	}
	if len(bound) != len(showcase.Fields) {
		t.Fatalf("bound %d of %d fields", len(bound), len(showcase.Fields))
	}
	values := binding.Values(bound)
	if diff := cmp.Diff([]string{"1", "2"}, values["tags"]); diff != "" {
		t.Fatalf("multi-select default mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	form := model.FormModel{
		ID:       "createSite",
		Title:    "Create site",
		Endpoint: "/api/sites",
		Method:   "POST",
		Metadata: map[string]string{"skipped": "address"},
		Fields: []model.Field{
			{
				ID:    "name",
				Type:  model.FieldTypeText,
				Label: "Name",
				Rules: []model.ValidationRule{
					{Kind: model.ValidationRuleRequired},
					{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "40"}},
				},
				Props: map[string]string{"helpText": "Shown on the map"},
			},
			{
				ID:           "kind",
				Type:         model.FieldTypeSelect,
				Label:        "Kind",
				DefaultValue: "store",
				ArrayData:    model.StaticOptions{{Value: "store", Title: "Store"}, {Value: "dc", Title: "Warehouse"}},
			},
		},
	}

	data, err := formconfig.Marshal(form)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	store, err := formconfig.Parse(data, "export.yaml")
	if err != nil {
		t.Fatalf("parse exported document: %v\n%s", err, data)
	}
	got, ok := store.Form("createSite")
	if !ok {
		t.Fatalf("form missing from exported document:\n%s", data)
	}
	if diff := cmp.Diff(form, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := formconfig.Marshal(form, form); err == nil {
		t.Fatal("expected duplicate id error")
	}
}
