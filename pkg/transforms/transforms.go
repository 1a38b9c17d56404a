// Package transforms provides the named value transforms that declarative
// form documents reference from a field's render and submit slots.
package transforms

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
)

// ErrUnknown is returned by Lookup for unregistered names.
var ErrUnknown = errors.New("transforms: unknown transform")

// Func maps one value to another. Implementations must be pure. A nil input
// is passed through unless the transform documents otherwise.
type Func func(value any) any

// Factory builds a Func from its arguments.
type Factory func(args []string) (Func, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{
		"prefix": func(args []string) (Func, error) {
			arg, err := single("prefix", args)
			if err != nil {
				return nil, err
			}
			return Prefix(arg), nil
		},
		"suffix": func(args []string) (Func, error) {
			arg, err := single("suffix", args)
			if err != nil {
				return nil, err
			}
			return Suffix(arg), nil
		},
		"upper": noArgs(Upper),
		"lower": noArgs(Lower),
		"trim":  noArgs(Trim),
		"sha1":  noArgs(SHA1),
		"date": func(args []string) (Func, error) {
			layout := time.DateOnly
			if len(args) > 0 && args[0] != "" {
				layout = args[0]
			}
			return Date(layout), nil
		},
		"join": func(args []string) (Func, error) {
			sep := ","
			if len(args) > 0 {
				sep = args[0]
			}
			return Join(sep), nil
		},
		"number": noArgs(Number),
		"bool":   noArgs(Bool),
	}
)

// Register adds or replaces a named transform.
func Register(name string, factory Factory) {
	if factory == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(strings.TrimSpace(name))] = factory
}

// Names lists registered transforms.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup builds the named transform.
func Lookup(name string, args ...string) (Func, error) {
	mu.RLock()
	factory, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknown, name, strings.Join(Names(), ", "))
	}
	return factory(args)
}

// Chain applies fns left to right.
func Chain(fns ...Func) Func {
	return func(value any) any {
		for _, fn := range fns {
			value = fn(value)
		}
		return value
	}
}

// Render adapts fn to a field's render slot.
func Render(fn Func) model.RenderFunc {
	return func(value any, _ []model.Field, _ map[string]any) any {
		return fn(value)
	}
}

// Submit adapts fn to a field's submit slot.
func Submit(fn Func) model.SubmitFunc {
	return func(value any, _ []model.Field, _ map[string]any) any {
		return fn(value)
	}
}

func Prefix(p string) Func {
	return stringFunc(func(s string) string { return p + s })
}

func Suffix(p string) Func {
	return stringFunc(func(s string) string { return s + p })
}

func Upper(value any) any { return stringFunc(strings.ToUpper)(value) }

func Lower(value any) any { return stringFunc(strings.ToLower)(value) }

func Trim(value any) any { return stringFunc(strings.TrimSpace)(value) }

// SHA1 returns the lowercase hex digest of the value's string form.
func SHA1(value any) any {
	if value == nil {
		return nil
	}
	sum := sha1.Sum([]byte(binding.Stringify(value)))
	return hex.EncodeToString(sum[:])
}

// Date formats time-like values with layout. Unparseable values pass
// through.
func Date(layout string) Func {
	return func(value any) any {
		if value == nil {
			return nil
		}
		if rng, ok := value.(binding.DateRange); ok {
			return []string{rng.Start.Format(layout), rng.End.Format(layout)}
		}
		parsed, ok, err := binding.ParseTime(value, nil)
		if err != nil || !ok {
			return value
		}
		return parsed.Format(layout)
	}
}

// Join concatenates slice values with sep. Scalars pass through.
func Join(sep string) Func {
	return func(value any) any {
		values, ok := binding.StringSlice(value)
		if !ok {
			return value
		}
		return strings.Join(values, sep)
	}
}

// Number parses numeric strings. Blank strings become nil.
func Number(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return value
}

// Bool interprets common truthy spellings. Nil becomes false.
func Bool(value any) any {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "1", "true", "on", "yes", "y":
			return true
		}
		return false
	}
	return binding.Stringify(value) != "0"
}

func stringFunc(fn func(string) string) Func {
	return func(value any) any {
		if value == nil {
			return nil
		}
		if values, ok := binding.StringSlice(value); ok {
			out := make([]string, len(values))
			for idx, item := range values {
				out[idx] = fn(item)
			}
			return out
		}
		return fn(binding.Stringify(value))
	}
}

func noArgs(fn Func) Factory {
	return func([]string) (Func, error) {
		return fn, nil
	}
}

func single(name string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("transforms: %s takes one argument, got %d", name, len(args))
	}
	return args[0], nil
}
