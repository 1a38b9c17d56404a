package binding

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidValue marks a value a binder could not interpret. The field is
// still bound, with its value unset.
var ErrInvalidValue = errors.New("binding: invalid value")

var errRangeShape = fmt.Errorf("%w: datetime range expects two values", ErrInvalidValue)

// dateLayouts are tried in order when a date arrives as a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

func bindPassthrough(*Bound, OptionLoader, Source) error {
	return nil
}

func bindSelect(bound *Bound, options OptionLoader, _ Source) error {
	set, err := options.Load()
	if err != nil {
		return err
	}
	bound.Options = set.Options
	if bound.Value == nil {
		bound.Value = ""
		return nil
	}
	bound.Value = Stringify(bound.Value)
	return nil
}

func bindMultiSelect(bound *Bound, options OptionLoader, _ Source) error {
	set, err := options.Load()
	if err != nil {
		return err
	}
	bound.Options = set.Options
	if values, ok := StringSlice(bound.Value); ok {
		bound.Value = values
	}
	return nil
}

func bindDate(bound *Bound, _ OptionLoader, src Source) error {
	if bound.Value == nil {
		return nil
	}
	parsed, ok, err := ParseTime(bound.Value, src.Location)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if !ok {
		bound.Value = nil
		return nil
	}
	bound.Value = parsed
	return nil
}

func bindDateRange(bound *Bound, _ OptionLoader, src Source) error {
	if bound.Value == nil {
		return nil
	}
	if existing, ok := bound.Value.(DateRange); ok {
		bound.Value = existing
		return nil
	}
	items := reflect.ValueOf(bound.Value)
	if items.Kind() != reflect.Slice && items.Kind() != reflect.Array {
		return errRangeShape
	}
	if items.Len() != 2 {
		return errRangeShape
	}
	var out DateRange
	for idx := 0; idx < 2; idx++ {
		parsed, _, err := ParseTime(items.Index(idx).Interface(), src.Location)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		if idx == 0 {
			out.Start = parsed
		} else {
			out.End = parsed
		}
	}
	bound.Value = out
	return nil
}

func bindTree(bound *Bound, options OptionLoader, _ Source) error {
	set, err := options.Load()
	if err != nil {
		return err
	}
	bound.Tree = set.Tree
	return nil
}

func bindCheckbox(bound *Bound, _ OptionLoader, _ Source) error {
	bound.InlineCaption = true
	bound.ShowLabel = false
	return nil
}

func bindPlainText(bound *Bound, _ OptionLoader, _ Source) error {
	bound.Editable = false
	return nil
}

// Stringify converts a scalar into its display string. Nil becomes "".
func Stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case time.Time:
		return typed.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return typed.String()
	}
	return fmt.Sprint(value)
}

// StringSlice converts any slice or array into a slice of strings. Strings
// are not treated as slices.
func StringSlice(value any) ([]string, bool) {
	if value == nil {
		return nil, false
	}
	if typed, ok := value.([]string); ok {
		return append([]string(nil), typed...), true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]string, rv.Len())
	for idx := range out {
		out[idx] = Stringify(rv.Index(idx).Interface())
	}
	return out, true
}

// ParseTime interprets a date value. The boolean result is false when the
// value is an empty string, which binds as unset.
func ParseTime(value any, loc *time.Location) (time.Time, bool, error) {
	if loc == nil {
		loc = time.Local
	}
	switch typed := value.(type) {
	case time.Time:
		return typed, true, nil
	case *time.Time:
		if typed == nil {
			return time.Time{}, false, nil
		}
		return *typed, true, nil
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return time.Time{}, false, nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
				return parsed, true, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("parse date %q", typed)
	case int:
		return time.Unix(int64(typed), 0).In(loc), true, nil
	case int64:
		return time.Unix(typed, 0).In(loc), true, nil
	case float64:
		return time.Unix(int64(typed), 0).In(loc), true, nil
	case json.Number:
		seconds, err := typed.Int64()
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse date %q: %w", typed, err)
		}
		return time.Unix(seconds, 0).In(loc), true, nil
	}
	return time.Time{}, false, fmt.Errorf("parse date: unsupported value %T", value)
}
