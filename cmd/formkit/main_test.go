package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/components/mockapi"
	"github.com/goliatone/go-formkit/internal/ui"
	"github.com/goliatone/go-formkit/pkg/account"
	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/formconfig"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/testsupport"
	"github.com/goliatone/go-formkit/pkg/transforms"
	"github.com/goliatone/go-formkit/pkg/transport"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "formkit ") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestRenderCommand(t *testing.T) {
	out, err := execute(t, "render", "site", "--variant", "inline", "--initial", `{"ID":"P1","Name":"Warehouse North"}`, "--csrf-token", "tok123")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		`data-field-key=`,
		`Warehouse North`,
		`<input type="hidden" name="ID" value="P1">`,
		`<input type="hidden" name="_csrf" value="tok123">`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered form missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "render", "site-search", "--variant", "search"); err != nil {
		t.Fatalf("render search: %v", err)
	}
	if _, err := execute(t, "render", "site", "--variant", "drawer"); err == nil {
		t.Fatal("expected unknown variant error")
	}
	if _, err := execute(t, "render", "missing"); err == nil || !strings.Contains(err.Error(), "available") {
		t.Fatalf("expected unknown form error listing ids, got %v", err)
	}
	if _, err := execute(t, "render", "site", "--initial", "{not json"); err == nil {
		t.Fatal("expected invalid JSON error")
	}
}

func TestRenderCommand_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.html")
	if _, err := execute(t, "render", "site", "-o", path); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		t.Fatalf("expected output file, got %v", err)
	}
}

const importDocument = `
openapi: 3.0.3
info: {title: Sites, version: "1.0"}
paths:
  /sites:
    post:
      operationId: createSite
      summary: Create site
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [Name]
              properties:
                Name: {type: string, maxLength: 40}
                City: {type: string, enum: [Oslo, Seville]}
      responses:
        "200": {description: ok}
`

func TestImportOpenAPICommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	if err := os.WriteFile(path, []byte(importDocument), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	list, err := execute(t, "import-openapi", path, "--list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(list, "createSite") || !strings.Contains(list, "POST") {
		t.Fatalf("unexpected listing:\n%s", list)
	}

	out, err := execute(t, "import-openapi", path, "--endpoint", "/api/add")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	store, err := formconfig.Parse([]byte(out), "import.yaml")
	if err != nil {
		t.Fatalf("imported document does not load: %v\n%s", err, out)
	}
	form, ok := store.Form("createSite")
	if !ok {
		t.Fatalf("imported form missing:\n%s", out)
	}
	if form.Endpoint != "/api/add" || len(form.Fields) != 2 {
		t.Fatalf("unexpected imported form %+v", form)
	}
	if form.Fields[0].ID != "City" || form.Fields[0].Type != model.FieldTypeSelect {
		t.Fatalf("expected City select first, got %+v", form.Fields[0])
	}
	if !form.Fields[1].Required() {
		t.Fatal("Name should be required")
	}
}

type scriptedCollector struct {
	answers []map[string]any
	seen    []render.RenderOptions
}

func (c *scriptedCollector) Collect(_ context.Context, _ model.FormModel, opts render.RenderOptions) (map[string]any, error) {
	c.seen = append(c.seen, opts)
	if len(c.seen) > len(c.answers) {
		return nil, errors.New("no more answers")
	}
	return c.answers[len(c.seen)-1], nil
}

func (c *scriptedCollector) Serialize(_ model.FormModel, values map[string]any) ([]byte, error) {
	return json.Marshal(values)
}

func TestRunFill_LocalFormRetriesInvalidInput(t *testing.T) {
	form := model.FormModel{
		ID:       "profile",
		Endpoint: "#",
		Fields: []model.Field{{
			ID:    "name",
			Type:  model.FieldTypeText,
			Rules: []model.ValidationRule{{Kind: model.ValidationRuleRequired}},
			Submit: func(value any, _ []model.Field, _ map[string]any) any {
				return strings.ToUpper(binding.Stringify(value))
			},
		}},
	}
	prompts := &scriptedCollector{answers: []map[string]any{{"name": ""}, {"name": "ada"}}}
	var out bytes.Buffer
	if err := runFill(context.Background(), &out, prompts, form, binding.Source{}, 3); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(prompts.seen) != 2 {
		t.Fatalf("expected two prompt rounds, got %d", len(prompts.seen))
	}
	if diff := cmp.Diff([]string{"name is required"}, prompts.seen[1].Errors["name"]); diff != "" {
		t.Fatalf("retry errors mismatch (-want +got):\n%s", diff)
	}
	if got := prompts.seen[1].Source.Initial["name"]; got != "" {
		t.Fatalf("retry should be prefilled with the previous answer, got %v", got)
	}
	if !strings.Contains(out.String(), `{"name":"ADA"}`) {
		t.Fatalf("payload not printed:\n%s", out.String())
	}
}

func TestRunFill_RemoteBusinessError(t *testing.T) {
	backend := testsupport.NewBackend(t)

	form := model.FormModel{
		ID:       "site",
		Endpoint: resolveEndpoint(backend.Server.URL, backend.Paths.Add),
		Fields:   []model.Field{{ID: "Name", Type: model.FieldTypeText}},
	}
	prompts := &scriptedCollector{answers: []map[string]any{{"Name": ""}, {"Name": "Depot"}}}
	var out bytes.Buffer
	if err := runFill(context.Background(), &out, prompts, form, binding.Source{}, 3); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(prompts.seen) != 2 {
		t.Fatalf("expected two prompt rounds, got %d", len(prompts.seen))
	}
	if got := prompts.seen[1].Alert; got != "Name is required" {
		t.Fatalf("alert = %q, want the server message", got)
	}
	if !strings.Contains(out.String(), "submitted") {
		t.Fatalf("success not reported:\n%s", out.String())
	}
	if _, total := backend.API.Store().List(mockapi.Query{}); total != 6 {
		t.Fatalf("expected the new site to be stored, total = %d", total)
	}
}

func TestRunFill_GivesUp(t *testing.T) {
	form := model.FormModel{
		ID:       "profile",
		Endpoint: "#",
		Fields:   []model.Field{{ID: "name", Type: model.FieldTypeText, Rules: []model.ValidationRule{{Kind: model.ValidationRuleRequired}}}},
	}
	prompts := &scriptedCollector{answers: []map[string]any{{"name": ""}, {"name": ""}}}
	if err := runFill(context.Background(), io.Discard, prompts, form, binding.Source{}, 2); err == nil {
		t.Fatal("expected an error after the last attempt")
	}
}

func TestResolveEndpoint(t *testing.T) {
	tests := []struct{ base, endpoint, want string }{
		{"http://h:1/", "/api/add", "http://h:1/api/add"},
		{"http://h:1", "api/add", "http://h:1/api/add"},
		{"http://h:1", "#", "#"},
		{"http://h:1", "https://other/x", "https://other/x"},
		{"", "/api/add", "/api/add"},
	}
	for _, tt := range tests {
		if got := resolveEndpoint(tt.base, tt.endpoint); got != tt.want {
			t.Errorf("resolveEndpoint(%q, %q) = %q, want %q", tt.base, tt.endpoint, got, tt.want)
		}
	}
}

func TestDemoServer(t *testing.T) {
	store, err := formconfig.LoadFS(formconfig.EmbeddedFS())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	handler, endpoints, err := newDemoServer(store, &serveFlags{apiBase: "/api", pageSize: 5})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	if endpoints.List != "/api/list" {
		t.Fatalf("list endpoint = %q", endpoints.List)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	get := func(path string) string {
		t.Helper()
		resp, err := server.Client().Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: status %d: %s", path, resp.StatusCode, body)
		}
		return string(body)
	}

	if index := get("/"); !strings.Contains(index, `/forms/site`) || !strings.Contains(index, `/tables/sites`) {
		t.Fatalf("index missing links:\n%s", index)
	}
	if form := get("/forms/showcase"); !strings.Contains(form, "data-field-key") {
		t.Fatalf("form page missing fields:\n%s", form)
	}
	page := get("/tables/sites?parent=P1")
	for _, want := range []string{"Warehouse North", "Pallet jack", "Forklift", "Add Item"} {
		if !strings.Contains(page, want) {
			t.Fatalf("table page missing %q:\n%s", want, page)
		}
	}
	if strings.Contains(page, "Shelf unit") {
		t.Fatal("only the selected parent should be expanded")
	}
	if css := get("/assets/formkit.css"); css == "" {
		t.Fatal("stylesheet not served")
	}

	resp, err := server.Client().Get(server.URL + "/forms/missing")
	if err != nil {
		t.Fatalf("GET missing: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDemoServer_FormsAndTableActions(t *testing.T) {
	store, err := formconfig.LoadFS(formconfig.EmbeddedFS())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	handler, _, err := newDemoServer(store, &serveFlags{apiBase: "/api", pageSize: 5})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	client := server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	post := func(path string, form url.Values) (int, string, string) {
		t.Helper()
		resp, err := client.PostForm(server.URL+path, form)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, resp.Header.Get("Location"), string(body)
	}
	get := func(path string) string {
		t.Helper()
		resp, err := client.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}

	if page := get("/forms/site"); !strings.Contains(page, `action="/forms/site"`) {
		t.Fatalf("form page should post back to itself:\n%s", page)
	}

	status, _, body := post("/forms/site", url.Values{"Name": {""}, "Code": {"xy"}})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("invalid form status = %d, want 422", status)
	}
	for _, want := range []string{"Name is required", `value="xy"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("rejected form missing %q:\n%s", want, body)
		}
	}

	status, _, body = post("/forms/site", url.Values{"ID": {""}, "Name": {"Depot East"}, "Code": {" de "}, "City": {"Oslo"}})
	if status != http.StatusOK || !strings.Contains(body, "Saved") {
		t.Fatalf("site submit = %d:\n%s", status, body)
	}
	if page := get("/tables/sites?page=2"); !strings.Contains(page, "Depot East") || !strings.Contains(page, "<td>DE</td>") {
		t.Fatalf("submitted site should be stored with transformed code:\n%s", page)
	}

	status, _, body = post("/forms/showcase", url.Values{"title": {"hello"}})
	if status != http.StatusOK || !strings.Contains(body, "hello") {
		t.Fatalf("local form submit = %d:\n%s", status, body)
	}

	status, _, body = post("/tables/sites/press?page=1", url.Values{"action": {"parent-add"}})
	if status != http.StatusOK || !strings.Contains(body, "/tables/sites/submit?action=parent-add") {
		t.Fatalf("add should open a form posting to submit, got %d:\n%s", status, body)
	}

	status, _, body = post("/tables/sites/submit?action=parent-add&page=1", url.Values{"Name": {""}})
	if status != http.StatusUnprocessableEntity || !strings.Contains(body, "Name is required") {
		t.Fatalf("invalid modal submit = %d:\n%s", status, body)
	}

	status, location, _ := post("/tables/sites/submit?action=parent-add&page=1", url.Values{"Name": {"Yard West"}, "Code": {"yw"}})
	if status != http.StatusSeeOther || location != "/tables/sites?page=1" {
		t.Fatalf("modal submit = %d %q, want 303 to the table", status, location)
	}
	if page := get("/tables/sites?page=2"); !strings.Contains(page, "Yard West") {
		t.Fatalf("added site missing:\n%s", page)
	}

	status, _, _ = post("/tables/sites/press?page=1", url.Values{"action": {"parent-edit"}})
	if status != http.StatusBadRequest {
		t.Fatalf("edit without selection = %d, want 400", status)
	}

	status, _, body = post("/tables/sites/press?page=1&parent=P1&child=C2", url.Values{"action": {"child-edit"}})
	if status != http.StatusOK || !strings.Contains(body, "Forklift") {
		t.Fatalf("child edit should open the selected row, got %d:\n%s", status, body)
	}

	status, location, _ = post("/tables/sites/press?page=1&parent=P2", url.Values{"action": {"parent-remove"}})
	if status != http.StatusSeeOther || location != "/tables/sites?page=1" {
		t.Fatalf("remove = %d %q, want 303 to the table", status, location)
	}
	if page := get("/tables/sites"); strings.Contains(page, "Warehouse South") {
		t.Fatalf("removed site still listed:\n%s", page)
	}
}

func TestRunLogin_RetriesInvalidAndRefusedAttempts(t *testing.T) {
	var posted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		posted = append(posted, r.PostForm.Get(account.FieldPassword))
		w.Header().Set("Content-Type", "application/json")
		if len(posted) == 1 {
			_, _ = io.WriteString(w, `{"msg":"Wrong password","data":null}`)
			return
		}
		_, _ = io.WriteString(w, `{"msg":"","data":{"ok":true}}`)
	}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	flow := account.NewLogin(srv.URL, "/home",
		account.WithTransport(transport.New()),
		account.WithNotifier(ui.Notifier{Out: &out}),
	)
	prompts := &scriptedCollector{answers: []map[string]any{
		{"userName": "a", "password": "secret1", "remember": true},
		{"userName": "ada", "password": "wrong11", "remember": true},
		{"userName": "ada", "password": "secret1", "remember": true},
	}}
	if err := runLogin(context.Background(), &out, prompts, flow, 5); err != nil {
		t.Fatalf("login: %v", err)
	}

	if len(prompts.seen) != 3 {
		t.Fatalf("expected three prompt rounds, got %d", len(prompts.seen))
	}
	if diff := cmp.Diff([]string{"Please enter your user name"}, prompts.seen[1].Errors[account.FieldUserName]); diff != "" {
		t.Fatalf("retry errors mismatch (-want +got):\n%s", diff)
	}
	if _, ok := prompts.seen[1].Source.Initial[account.FieldPassword]; ok {
		t.Fatal("password must not be prefilled on retry")
	}
	want := []string{transforms.SHA1("wrong11").(string), transforms.SHA1("secret1").(string)}
	if diff := cmp.Diff(want, posted); diff != "" {
		t.Fatalf("posted passwords mismatch (-want +got):\n%s", diff)
	}
	for _, text := range []string{"Wrong password", "accepted", "redirect: /home"} {
		if !strings.Contains(out.String(), text) {
			t.Fatalf("output missing %q:\n%s", text, out.String())
		}
	}
}
