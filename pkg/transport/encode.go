package transport

import (
	"net/url"
	"reflect"
	"sort"
	"time"

	"github.com/goliatone/go-formkit/pkg/binding"
)

// EncodeForm flattens a payload into form values. Slices repeat the key,
// nested maps use bracket notation (parent[child]), and times are formatted
// as "2006-01-02 15:04:05".
func EncodeForm(payload map[string]any) url.Values {
	out := url.Values{}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		encodeValue(out, key, payload[key])
	}
	return out
}

func encodeValue(out url.Values, key string, value any) {
	switch typed := value.(type) {
	case nil:
		out.Add(key, "")
		return
	case time.Time:
		out.Add(key, typed.Format(time.DateTime))
		return
	case binding.DateRange:
		out.Add(key, typed.Start.Format(time.DateTime))
		out.Add(key, typed.End.Format(time.DateTime))
		return
	case []byte:
		out.Add(key, string(typed))
		return
	case map[string]any:
		for _, child := range sortedKeys(typed) {
			encodeValue(out, key+"["+child+"]", typed[child])
		}
		return
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for idx := 0; idx < rv.Len(); idx++ {
			encodeValue(out, key, rv.Index(idx).Interface())
		}
		return
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			children := make(map[string]any, rv.Len())
			for _, mk := range rv.MapKeys() {
				children[mk.String()] = rv.MapIndex(mk).Interface()
			}
			encodeValue(out, key, children)
			return
		}
	}
	out.Add(key, binding.Stringify(value))
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
