package formkit

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formkit/pkg/formconfig"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/openapi"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	if _, err := fs.ReadFile(AssetsFS(), "formkit.css"); err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
}

func TestLoadAndRender(t *testing.T) {
	store, err := LoadForms(formconfig.EmbeddedFS())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	form, ok := store.Form("site")
	if !ok {
		t.Fatal("site form missing")
	}
	html, err := RenderHTML(context.Background(), form, RenderOptions{
		Source: Source{Mode: model.ModeEdit, Initial: map[string]any{"ID": "P1", "Name": "Harbour"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(html), "Harbour") {
		t.Fatalf("initial value not rendered:\n%s", html)
	}
}

func TestFormFromOpenAPI(t *testing.T) {
	doc := `
openapi: 3.0.3
info: {title: Notes, version: "1"}
paths:
  /notes:
    post:
      operationId: createNote
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                body: {type: string}
      responses:
        "201": {description: created}
`
	files := fstest.MapFS{"api.yaml": {Data: []byte(doc)}}
	form, err := FormFromOpenAPI(context.Background(), openapi.SourceFromFS("api.yaml"), "createNote",
		[]openapi.LoaderOption{openapi.WithFileSystem(files)})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if form.Endpoint != "/notes" || len(form.Fields) != 1 || form.Fields[0].ID != "body" {
		t.Fatalf("unexpected form %+v", form)
	}
}

func TestRenderers(t *testing.T) {
	reg, err := Renderers(nil, nil)
	if err != nil {
		t.Fatalf("renderers: %v", err)
	}
	if got := strings.Join(reg.Names(), ","); got != "tui,vanilla" {
		t.Fatalf("names = %q", got)
	}
	html, err := reg.ForContentType("text/html")
	if err != nil || html.Name() != "vanilla" {
		t.Fatalf("html lookup = %v, %v", html, err)
	}
	out, err := reg.Render(context.Background(), "vanilla", model.FormModel{
		ID:     "note",
		Fields: []model.Field{{ID: "body", Type: model.FieldTypeText, Label: "Body"}},
	}, RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `data-field-key=`) {
		t.Fatalf("unexpected markup:\n%s", out)
	}
}
