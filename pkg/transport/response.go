package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Messages holds the envelope's msg member, which servers send either as a
// single string or as a list of lines.
type Messages []string

// UnmarshalJSON accepts a string, a list of strings, or null.
func (m *Messages) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}
	if trimmed[0] == '[' {
		var lines []any
		if err := json.Unmarshal(trimmed, &lines); err != nil {
			return err
		}
		out := make(Messages, 0, len(lines))
		for _, line := range lines {
			if line == nil {
				continue
			}
			out = append(out, fmt.Sprint(line))
		}
		*m = out
		return nil
	}
	var single string
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return fmt.Errorf("msg must be a string or list of strings: %w", err)
	}
	if single == "" {
		*m = nil
		return nil
	}
	*m = Messages{single}
	return nil
}

// MarshalJSON emits a single string for one line and a list otherwise.
func (m Messages) MarshalJSON() ([]byte, error) {
	switch len(m) {
	case 0:
		return []byte(`""`), nil
	case 1:
		return json.Marshal(m[0])
	}
	return json.Marshal([]string(m))
}

// Empty reports whether no non-blank line is present.
func (m Messages) Empty() bool {
	for _, line := range m {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

func (m Messages) String() string {
	return strings.Join(m, "\n")
}

// Response is the server envelope.
type Response struct {
	Msg   Messages        `json:"msg"`
	Data  json.RawMessage `json:"data,omitempty"`
	Total int             `json:"total,omitempty"`
}

// Failed reports a business failure: the server answered with a message.
func (r Response) Failed() bool {
	return !r.Msg.Empty()
}

// HasData reports whether data carries a meaningful value. Null, empty
// strings, zero and false count as absent.
func (r Response) HasData() bool {
	switch strings.TrimSpace(string(r.Data)) {
	case "", "null", `""`, "0", "false":
		return false
	}
	return true
}

// DecodeData unmarshals data into v.
func (r Response) DecodeData(v any) error {
	if !r.HasData() {
		return errors.New("transport: response has no data")
	}
	return json.Unmarshal(r.Data, v)
}

// Rows decodes data as a list of records.
func (r Response) Rows() ([]map[string]any, error) {
	if !r.HasData() {
		return nil, nil
	}
	var rows []map[string]any
	decoder := json.NewDecoder(bytes.NewReader(r.Data))
	decoder.UseNumber()
	if err := decoder.Decode(&rows); err != nil {
		return nil, fmt.Errorf("transport: decode rows: %w", err)
	}
	return rows, nil
}
