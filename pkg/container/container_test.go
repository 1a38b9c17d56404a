package container

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/transport"
	"github.com/goliatone/go-formkit/pkg/validation"
)

type stubTransport struct {
	calls     int
	responses []transport.Response
	err       error
	// observed is captured while the request is in flight.
	observed func()
}

func (s *stubTransport) Submit(_ context.Context, _ string, _ map[string]any) (transport.Response, error) {
	s.calls++
	if s.observed != nil {
		s.observed()
	}
	if s.err != nil {
		return transport.Response{}, s.err
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

type captureRenderer struct {
	form model.FormModel
	opts render.RenderOptions
}

func (c *captureRenderer) Name() string        { return "capture" }
func (c *captureRenderer) ContentType() string { return "text/plain" }
func (c *captureRenderer) Render(_ context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	c.form, c.opts = form, opts
	return []byte("ok"), nil
}

func userForm() model.FormModel {
	return model.FormModel{
		ID:       "user",
		Endpoint: "/users/save",
		Fields: []model.Field{
			{ID: "name", Type: model.FieldTypeText, Label: "Name", Rules: []model.ValidationRule{{Kind: model.ValidationRuleRequired}}},
		},
	}
}

func TestModal_BusinessErrorKeepsModalOpen(t *testing.T) {
	tr := &stubTransport{responses: []transport.Response{{Msg: transport.Messages{"name taken"}}}}
	completed := 0
	modal := NewModal(WithTransport(tr), WithOnComplete(func(map[string]any) { completed++ }))
	modal.Open("Add user", userForm(), binding.Source{})

	outcome, err := modal.Submit(context.Background(), map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.State != pipeline.StateBusinessError {
		t.Fatalf("expected business error, got %s", outcome.State)
	}
	want := State{Visible: true, Alert: "name taken"}
	if diff := cmp.Diff(want, modal.State()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if completed != 0 {
		t.Fatalf("completion must not run on business error")
	}
}

func TestModal_LoadingObservedDuringRequest(t *testing.T) {
	var loading bool
	tr := &stubTransport{responses: []transport.Response{{}}}
	modal := NewModal(WithTransport(tr), WithOnComplete(func(map[string]any) {}))
	tr.observed = func() { loading = modal.State().Loading }
	modal.Open("Add user", userForm(), binding.Source{})

	if _, err := modal.Submit(context.Background(), map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !loading {
		t.Fatalf("expected loading while the request is in flight")
	}
	if modal.State().Loading {
		t.Fatalf("loading must clear after the response")
	}
}

func TestModal_SuccessCompletesAndReopenClearsAlert(t *testing.T) {
	tr := &stubTransport{responses: []transport.Response{{Msg: transport.Messages{"oops"}}, {}}}
	var payloads []map[string]any
	modal := NewModal(WithTransport(tr))
	modal.cfg.onComplete = func(payload map[string]any) {
		payloads = append(payloads, payload)
		modal.Close()
	}
	modal.Open("Add user", userForm(), binding.Source{})

	if _, err := modal.Submit(context.Background(), map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	modal.Open("Add user", userForm(), binding.Source{})
	if alert := modal.State().Alert; alert != "" {
		t.Fatalf("open must clear alert, got %q", alert)
	}

	if _, err := modal.Submit(context.Background(), map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if diff := cmp.Diff([]map[string]any{nil}, payloads); diff != "" {
		t.Fatalf("completion mismatch (-want +got):\n%s", diff)
	}
	if modal.State().Visible {
		t.Fatalf("expected completion callback to close the modal")
	}
}

func TestModal_TransportErrorNotifies(t *testing.T) {
	var notes []string
	tr := &stubTransport{err: errors.New("dial tcp: refused")}
	modal := NewModal(
		WithTransport(tr),
		WithNotifier(pipeline.NotifierFuncs{OnError: func(msg string) { notes = append(notes, msg) }}),
	)
	modal.Open("Add user", userForm(), binding.Source{})

	_, err := modal.Submit(context.Background(), map[string]any{"name": "Ada"})
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if diff := cmp.Diff([]string{pipeline.DefaultNetworkMessage}, notes); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
	if state := modal.State(); state.Alert != "" || state.Loading || !state.Visible {
		t.Fatalf("transport errors leave the form as is, got %+v", state)
	}
}

func TestModal_ValidationErrorsRendered(t *testing.T) {
	tr := &stubTransport{}
	modal := NewModal(WithTransport(tr))
	modal.Open("Add user", userForm(), binding.Source{})

	_, err := modal.Submit(context.Background(), map[string]any{"name": ""})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("transport must not be called on invalid input")
	}

	renderer := &captureRenderer{}
	if _, err := modal.Render(context.Background(), renderer, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"name": {"Name is required"}}, renderer.opts.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if renderer.opts.Layout.Variant != "modal" || renderer.opts.Layout.Title != "Add user" || !renderer.opts.Layout.ShowCancel {
		t.Fatalf("unexpected layout %+v", renderer.opts.Layout)
	}
}

func TestModal_UnchangedEditSkipsTransport(t *testing.T) {
	tr := &stubTransport{}
	modal := NewModal(WithTransport(tr))
	initial := map[string]any{"name": "Ada"}
	modal.Open("Edit user", userForm(), binding.Source{Mode: model.ModeEdit, Initial: initial})

	_, err := modal.Submit(context.Background(), map[string]any{"name": "Ada"})
	if !errors.Is(err, pipeline.ErrUnchanged) {
		t.Fatalf("expected ErrUnchanged, got %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("unchanged edit must not reach the transport")
	}
}

func TestModal_CancelHides(t *testing.T) {
	cancelled := false
	modal := NewModal(WithOnCancel(func() { cancelled = true }))
	if _, err := modal.Submit(context.Background(), nil); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	modal.Open("Add", userForm(), binding.Source{})
	modal.Cancel()
	if modal.State().Visible || !cancelled {
		t.Fatalf("expected cancel to hide the modal and run the callback")
	}
}

func TestInline_LocalFormCompletesWithPayload(t *testing.T) {
	form := userForm()
	form.Endpoint = "#"
	var got map[string]any
	inline := NewInline(form, binding.Source{}, WithOnComplete(func(payload map[string]any) { got = payload }), WithCancelButton(true))

	if _, err := inline.Submit(context.Background(), map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "Ada"}, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	renderer := &captureRenderer{}
	if _, err := inline.Render(context.Background(), renderer, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if renderer.opts.Layout.Variant != "inline" || !renderer.opts.Layout.ShowCancel {
		t.Fatalf("unexpected layout %+v", renderer.opts.Layout)
	}
}

func TestSearch_Lifecycle(t *testing.T) {
	var searched []map[string]any
	fields := []model.Field{
		{ID: "name", Type: model.FieldTypeText},
		{ID: "city", Type: model.FieldTypeText},
		{ID: "code", Type: model.FieldTypeText, Submit: func(v any, _ []model.Field, _ map[string]any) any {
			return "C-" + binding.Stringify(v)
		}},
		{ID: "zip", Type: model.FieldTypeText},
	}
	search, err := NewSearch(fields, WithItemsPerRow(3), WithOnSearch(func(payload map[string]any) {
		searched = append(searched, payload)
	}))
	if err != nil {
		t.Fatalf("new search: %v", err)
	}

	if !search.SearchDisabled() {
		t.Fatalf("search button starts disabled")
	}
	rows, err := search.Rows()
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 || len(rows[0]) != 3 || len(rows[1]) != 1 {
		t.Fatalf("unexpected grid shape %d rows", len(rows))
	}

	search.Change("code", "42")
	if search.SearchDisabled() {
		t.Fatalf("change must enable the search button")
	}

	payload, err := search.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if payload["code"] != "C-42" || payload[FuzzyField] != true {
		t.Fatalf("unexpected payload %v", payload)
	}
	if len(searched) != 1 {
		t.Fatalf("expected one OnSearch call, got %d", len(searched))
	}
	if !search.SearchDisabled() {
		t.Fatalf("submit disables the search button again")
	}

	search.Reset()
	if v := search.Values()["code"]; v != "" && v != nil {
		t.Fatalf("reset must restore the initial value, got %v", v)
	}
}

func TestInline_RejectedValuesRenderAsEntered(t *testing.T) {
	form := userForm()
	form.Fields = append(form.Fields, model.Field{
		ID:   "code",
		Type: model.FieldTypeText,
		Render: func(v any, _ []model.Field, _ map[string]any) any {
			return "C-" + binding.Stringify(v)
		},
	})
	tr := &stubTransport{responses: []transport.Response{{Msg: transport.Messages{"code taken"}}}}
	inline := NewInline(form, binding.Source{Mode: model.ModeCreate}, WithTransport(tr))

	if _, err := inline.Submit(context.Background(), map[string]any{"name": "", "code": "C-7"}); err == nil {
		t.Fatal("expected validation error")
	}
	renderer := &captureRenderer{}
	if _, err := inline.Render(context.Background(), renderer, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := binding.Source{Mode: model.ModeEdit, Initial: map[string]any{"name": "", "code": "C-7"}}
	if diff := cmp.Diff(want, renderer.opts.Source); diff != "" {
		t.Fatalf("source mismatch (-want +got):\n%s", diff)
	}
	if renderer.form.Fields[1].Render != nil {
		t.Fatal("entered values must not be transformed again")
	}

	if _, err := inline.Submit(context.Background(), map[string]any{"name": "Ada", "code": "C-7"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := inline.Render(context.Background(), renderer, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if renderer.opts.Alert != "code taken" || renderer.opts.Source.Initial["name"] != "Ada" {
		t.Fatalf("business error should keep alert and entered values, got %+v", renderer.opts)
	}

	inline.Reset()
	if _, err := inline.Render(context.Background(), renderer, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if renderer.opts.Source.Mode != model.ModeCreate || renderer.opts.Source.Initial != nil {
		t.Fatalf("reset should restore the bound source, got %+v", renderer.opts.Source)
	}
}
