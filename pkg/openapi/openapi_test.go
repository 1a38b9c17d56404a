package openapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
)

const sitesDocument = `
openapi: 3.0.3
info:
  title: Sites
  version: "1.0"
servers:
  - url: https://api.example.com/v1/
paths:
  /sites:
    get:
      summary: List sites
      responses:
        "200":
          description: ok
    post:
      operationId: createSite
      summary: Create site
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
                  title: Site name
                  minLength: 2
                  maxLength: 40
                  x-formkit-order: 1
                kind:
                  type: string
                  enum: [store, warehouse]
                  default: store
                capacity:
                  type: integer
                  minimum: 0
                  maximum: 100
                active:
                  type: boolean
                opened:
                  type: string
                  format: date
                secret:
                  type: string
                  format: password
                  pattern: "^[a-z]+$"
                notes:
                  type: string
                  format: textarea
                  description: Free text
                tags:
                  type: array
                  items:
                    type: string
                    enum: [a, b]
                address:
                  type: object
                  properties:
                    street:
                      type: string
                id:
                  type: string
                  readOnly: true
      responses:
        "200":
          description: ok
  /sites/{id}:
    delete:
      operationId: deleteSite
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "204":
          description: gone
`

func TestOperations(t *testing.T) {
	ops, err := Operations(context.Background(), []byte(sitesDocument))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	want := []Operation{
		{ID: "createSite", Method: "POST", Path: "/sites", Summary: "Create site", HasBody: true},
		{ID: "deleteSite", Method: "DELETE", Path: "/sites/{id}"},
		{ID: "get:/sites", Method: "GET", Path: "/sites", Summary: "List sites"},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestFormFromOperation(t *testing.T) {
	form, err := FormFromOperation(context.Background(), []byte(sitesDocument), "createSite")
	if err != nil {
		t.Fatalf("form: %v", err)
	}

	want := model.FormModel{
		ID:       "createSite",
		Title:    "Create site",
		Endpoint: "https://api.example.com/v1/sites",
		Method:   "POST",
		Metadata: map[string]string{"skipped": "address"},
		Fields: []model.Field{
			{
				ID:    "name",
				Type:  model.FieldTypeText,
				Label: "Site name",
				Rules: []model.ValidationRule{
					{Kind: model.ValidationRuleRequired},
					{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "2"}},
					{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "40"}},
				},
			},
			{ID: "active", Type: model.FieldTypeCheckbox, Label: "active"},
			{
				ID:    "capacity",
				Type:  model.FieldTypeNumber,
				Label: "capacity",
				Rules: []model.ValidationRule{
					{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "0"}},
					{Kind: model.ValidationRuleMax, Params: map[string]string{"value": "100"}},
				},
			},
			{ID: "id", Type: model.FieldTypePlainText, Label: "id"},
			{
				ID:           "kind",
				Type:         model.FieldTypeSelect,
				Label:        "kind",
				DefaultValue: "store",
				ArrayData: model.StaticOptions{
					{Value: "store", Title: "store"},
					{Value: "warehouse", Title: "warehouse"},
				},
			},
			{
				ID:    "notes",
				Type:  model.FieldTypeText,
				Label: "notes",
				Props: map[string]string{"helpText": "Free text", "multiline": "true"},
			},
			{ID: "opened", Type: model.FieldTypeDate, Label: "opened"},
			{
				ID:    "secret",
				Type:  model.FieldTypePassword,
				Label: "secret",
				Rules: []model.ValidationRule{
					{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": "^[a-z]+$"}},
				},
			},
			{
				ID:    "tags",
				Type:  model.FieldTypeMultiSelect,
				Label: "tags",
				ArrayData: model.StaticOptions{
					{Value: "a", Title: "a"},
					{Value: "b", Title: "b"},
				},
			},
		},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestFormFromOperation_EndpointOverride(t *testing.T) {
	form, err := FormFromOperation(context.Background(), []byte(sitesDocument), "createSite", WithEndpoint("/api/sites"))
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if form.Endpoint != "/api/sites" {
		t.Fatalf("endpoint = %q", form.Endpoint)
	}
}

func TestFormFromOperation_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := FormFromOperation(ctx, []byte(sitesDocument), "missing"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := FormFromOperation(ctx, []byte(sitesDocument), "deleteSite"); !errors.Is(err, ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}
	if _, err := FormFromOperation(ctx, nil, "createSite"); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := FormFromOperation(ctx, []byte("openapi: 3.0.3\npaths: {}\n"), "createSite"); err == nil {
		t.Fatal("expected validation error for document without info")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Operations(cancelled, []byte(sitesDocument)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "sites.yaml")
	if err := os.WriteFile(path, []byte(sitesDocument), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, err := DetectSource(path)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	data, err := Load(ctx, src)
	if err != nil || string(data) != sitesDocument {
		t.Fatalf("file load: %v", err)
	}

	files := fstest.MapFS{"specs/sites.yaml": {Data: []byte(sitesDocument)}}
	data, err = Load(ctx, SourceFromFS("specs/sites.yaml"), WithFileSystem(files))
	if err != nil || string(data) != sitesDocument {
		t.Fatalf("fs load: %v", err)
	}
	if _, err := Load(ctx, SourceFromFS("specs/sites.yaml")); err == nil {
		t.Fatal("expected error without filesystem")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sitesDocument))
	}))
	defer server.Close()

	remote, err := DetectSource(server.URL + "/openapi.yaml")
	if err != nil {
		t.Fatalf("detect url: %v", err)
	}
	if remote.Kind != SourceKindURL {
		t.Fatalf("kind = %q", remote.Kind)
	}
	if _, err := Load(ctx, remote); err == nil {
		t.Fatal("expected http to be disabled by default")
	}
	data, err = Load(ctx, remote, WithHTTPClient(server.Client()))
	if err != nil || string(data) != sitesDocument {
		t.Fatalf("url load: %v", err)
	}
	missing, _ := SourceFromURL(server.URL + "/missing")
	if _, err := Load(ctx, missing, WithHTTPClient(server.Client())); err == nil {
		t.Fatal("expected status error")
	}
	if _, err := SourceFromURL(""); err == nil {
		t.Fatal("expected empty url error")
	}
}
