package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/formconfig"
	"github.com/goliatone/go-formkit/pkg/model"
)

func loadStore(flags *globalFlags) (*formconfig.Store, error) {
	if flags.configDir == "" {
		return formconfig.LoadFS(formconfig.EmbeddedFS())
	}
	info, err := os.Stat(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config: %s is not a directory", flags.configDir)
	}
	return formconfig.LoadFS(os.DirFS(flags.configDir))
}

func lookupForm(store *formconfig.Store, id string) (model.FormModel, error) {
	form, ok := store.Form(id)
	if !ok {
		return model.FormModel{}, fmt.Errorf("unknown form %q (available: %s)", id, strings.Join(store.FormIDs(), ", "))
	}
	return form, nil
}

// recordFlags describe the record a form is opened with.
type recordFlags struct {
	initial  string
	ancestor string
	edit     bool
}

// source decodes the JSON records. Edit mode is explicit or inferred from a
// non-empty initial record.
func (f recordFlags) source() (binding.Source, error) {
	initial, err := decodeRecord("initial", f.initial)
	if err != nil {
		return binding.Source{}, err
	}
	ancestor, err := decodeRecord("ancestor", f.ancestor)
	if err != nil {
		return binding.Source{}, err
	}
	mode := model.ModeFor(initial)
	if f.edit {
		mode = model.ModeEdit
	}
	return binding.Source{Mode: mode, Initial: initial, Ancestor: ancestor}, nil
}

// decodeRecord accepts inline JSON or @path to a JSON file.
func decodeRecord(name, raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if strings.HasPrefix(raw, "@") {
		var err error
		data, err = os.ReadFile(raw[1:])
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("--%s: invalid JSON object: %w", name, err)
	}
	return record, nil
}
