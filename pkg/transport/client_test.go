package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSubmitFormEncoded(t *testing.T) {
	var got map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = r.PostForm
		io.WriteString(w, `{"msg":"","data":{"id":1}}`)
	}))
	defer server.Close()

	resp, err := New().Submit(context.Background(), server.URL, map[string]any{
		"name":  "alice",
		"ids":   []any{1, "2"},
		"when":  time.Date(2016, 12, 12, 12, 12, 12, 0, time.UTC),
		"extra": map[string]any{"a": true},
		"empty": nil,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Failed() {
		t.Fatalf("expected success, got %v", resp.Msg)
	}

	want := map[string][]string{
		"name":     {"alice"},
		"ids":      {"1", "2"},
		"when":     {"2016-12-12 12:12:12"},
		"extra[a]": {"true"},
		"empty":    {""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if r.Header.Get("X-Token") != "abc" {
			t.Errorf("missing custom header")
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["A"] != float64(1) {
			t.Errorf("unexpected body %v", body)
		}
		io.WriteString(w, `{"msg":["first","second"]}`)
	}))
	defer server.Close()

	client := New(WithEncoding(EncodingJSON), WithHeader("X-Token", "abc"))
	resp, err := client.Submit(context.Background(), server.URL, map[string]any{"A": 1})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Failed() {
		t.Fatal("expected business failure")
	}
	if diff := cmp.Diff(Messages{"first", "second"}, resp.Msg); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/500":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/garbage":
			io.WriteString(w, "<html>")
		}
	}))
	defer server.Close()

	client := New()
	_, err := client.Submit(context.Background(), server.URL+"/500", nil)
	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindHTTP || terr.Status != 500 || !terr.Retryable() {
		t.Fatalf("expected retryable http error, got %#v", err)
	}

	_, err = client.Submit(context.Background(), server.URL+"/garbage", nil)
	if !errors.As(err, &terr) || terr.Kind != KindDecode {
		t.Fatalf("expected decode error, got %v", err)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()
	_, err = client.Submit(context.Background(), closedURL, nil)
	if !errors.As(err, &terr) || terr.Kind != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Submit(ctx, server.URL, nil)
	if !errors.As(err, &terr) || terr.Kind != KindCanceled {
		t.Fatalf("expected canceled error, got %v", err)
	}
}

func TestUploadMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("size") != "11" || r.FormValue("kind") != "report" {
			t.Errorf("unexpected fields %v", r.MultipartForm.Value)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if header.Filename != "report.xlsx" || string(content) != "hello world" {
			t.Errorf("unexpected file %q %q", header.Filename, content)
		}
		io.WriteString(w, `{"msg":"uploaded","data":"ok"}`)
	}))
	defer server.Close()

	var last int64
	resp, err := New().Upload(context.Background(), server.URL, FilePart{
		Name:   "report.xlsx",
		Size:   11,
		Reader: strings.NewReader("hello world"),
	}, map[string]any{"size": 11, "kind": "report"}, func(sent, total int64) {
		last = sent
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !resp.HasData() || resp.Msg.String() != "uploaded" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if last != 11 {
		t.Fatalf("expected progress to reach 11 bytes, got %d", last)
	}
}

func TestResponseHelpers(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(`{"msg":null,"data":[{"ID":1,"name":"a"}],"total":7}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Failed() || resp.Total != 7 {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	rows, err := resp.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "a" || rows[0]["ID"] != json.Number("1") {
		t.Fatalf("unexpected rows %v", rows)
	}

	for raw, want := range map[string]bool{`null`: false, `""`: false, `0`: false, `false`: false, `[]`: true, `"x"`: true} {
		if got := (Response{Data: json.RawMessage(raw)}).HasData(); got != want {
			t.Fatalf("HasData(%s) = %v, want %v", raw, got, want)
		}
	}

	if !(Messages{" ", ""}).Empty() {
		t.Fatal("blank lines should count as empty")
	}
}
