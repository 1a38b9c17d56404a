package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/upload"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		sent, total int64
		want        float64
	}{
		{0, 100, 0},
		{50, 100, 0.5},
		{150, 100, 1},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := Percent(tt.sent, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %v, want %v", tt.sent, tt.total, got, tt.want)
		}
	}
}

func TestRenderAlert(t *testing.T) {
	out := RenderAlert(upload.Alert{Type: upload.AlertError, Messages: []string{"File: a.csv", upload.Separator, "row 2: missing Name"}})
	for _, want := range []string{FailureMarker + " File: a.csv", "row 2: missing Name"} {
		if !strings.Contains(out, want) {
			t.Fatalf("alert %q missing %q", out, want)
		}
	}
}

func TestRenderOutcome(t *testing.T) {
	out := RenderOutcome(pipeline.Outcome{State: pipeline.StateBusinessError, Message: "name taken"})
	if !strings.Contains(out, "business-error") || !strings.Contains(out, "name taken") {
		t.Fatalf("unexpected outcome rendering %q", out)
	}
	if out := RenderOutcome(pipeline.Outcome{State: pipeline.StateSuccess}); !strings.Contains(out, "submitted") {
		t.Fatalf("unexpected success rendering %q", out)
	}
}

func TestUploadProgress_SkipsRepeatedPercentages(t *testing.T) {
	var buf bytes.Buffer
	p := NewUploadProgress(&buf, 20)
	p.Update(upload.Progress{File: "a.csv", Sent: 1, Total: 1000})
	first := buf.Len()
	p.Update(upload.Progress{File: "a.csv", Sent: 2, Total: 1000})
	if buf.Len() != first {
		t.Fatal("expected no redraw for the same percentage")
	}
	p.Update(upload.Progress{File: "a.csv", Sent: 1000, Total: 1000})
	if !strings.HasSuffix(buf.String(), "a.csv\n") {
		t.Fatalf("expected a finished line, got %q", buf.String())
	}
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	Notifier{Out: &buf}.Error("network error")
	if !strings.Contains(buf.String(), "network error") {
		t.Fatalf("notification not written: %q", buf.String())
	}
}
