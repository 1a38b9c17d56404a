package transforms

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/binding"
)

func TestLookup(t *testing.T) {
	cases := []struct {
		name  string
		args  []string
		input any
		want  any
	}{
		{name: "prefix", args: []string{"new"}, input: "text", want: "newtext"},
		{name: "suffix", args: []string{"!"}, input: "hi", want: "hi!"},
		{name: "upper", input: []any{"a", 1}, want: []string{"A", "1"}},
		{name: "lower", input: "ABC", want: "abc"},
		{name: "trim", input: "  x ", want: "x"},
		{name: "sha1", input: "secret", want: "e5e9fa1ba31ecd1ae84f75caaa474f3a663f05f4"},
		{name: "sha1", input: nil, want: nil},
		{name: "date", input: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC), want: "2024-03-09"},
		{name: "date", args: []string{"02/01/2006"}, input: "2024-03-09", want: "09/03/2024"},
		{name: "join", args: []string{"|"}, input: []string{"a", "b"}, want: "a|b"},
		{name: "number", input: "42", want: int64(42)},
		{name: "number", input: "4.5", want: 4.5},
		{name: "number", input: " ", want: nil},
		{name: "bool", input: "on", want: true},
		{name: "bool", input: nil, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fn, err := Lookup(tc.name, tc.args...)
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if diff := cmp.Diff(tc.want, fn(tc.input)); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookupErrors(t *testing.T) {
	if _, err := Lookup("nope"); !errors.Is(err, ErrUnknown) || !strings.Contains(err.Error(), "sha1") {
		t.Fatalf("expected ErrUnknown listing the registered names, got %v", err)
	}
	if _, err := Lookup("prefix"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestDateRangeAndChain(t *testing.T) {
	rng := binding.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff([]string{"2024-01-01", "2024-01-31"}, Date(time.DateOnly)(rng)); diff != "" {
		t.Fatalf("range mismatch (-want +got):\n%s", diff)
	}

	fn := Chain(Trim, Upper, Prefix("id-"))
	if got := fn(" ab "); got != "id-AB" {
		t.Fatalf("unexpected chain result %v", got)
	}
	if got := Render(Prefix("new"))("text", nil, nil); got != "newtext" {
		t.Fatalf("unexpected render adapter result %v", got)
	}
}
