package formconfig

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/table"
	"github.com/goliatone/go-formkit/pkg/transforms"
	"github.com/goliatone/go-formkit/pkg/upload"
)

// LoadFS walks fsys and parses every JSON/YAML document. When fsys is nil or
// holds no documents, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := newStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("formconfig: read %s: %w", path, err)
		}
		return store.add(data, path)
	})
	if err != nil {
		return nil, err
	}
	if err := store.link(); err != nil {
		return nil, err
	}
	return store, nil
}

// Parse loads a single document. source names it in error messages.
func Parse(data []byte, source string) (*Store, error) {
	store := newStore()
	if err := store.add(data, source); err != nil {
		return nil, err
	}
	if err := store.link(); err != nil {
		return nil, err
	}
	return store, nil
}

func newStore() *Store {
	return &Store{
		forms:   make(map[string]entry[model.FormModel]),
		tables:  make(map[string]entry[table.Params]),
		uploads: make(map[string]entry[upload.Config]),
	}
}

// pendingTable holds table documents until every form is known.
type pendingTable struct {
	id     string
	source string
	raw    tableFile
}

func (s *Store) add(data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}

	for rawID, raw := range doc.Forms {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return fmt.Errorf("formconfig: file %s defines an empty form id", source)
		}
		if prev, exists := s.forms[id]; exists {
			return fmt.Errorf("formconfig: duplicate form %q (files %s and %s)", id, prev.source, source)
		}
		form, err := normaliseForm(raw, id, source)
		if err != nil {
			return err
		}
		s.forms[id] = entry[model.FormModel]{value: form, source: source}
	}

	for rawID, raw := range doc.Uploads {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return fmt.Errorf("formconfig: file %s defines an empty upload id", source)
		}
		if prev, exists := s.uploads[id]; exists {
			return fmt.Errorf("formconfig: duplicate upload %q (files %s and %s)", id, prev.source, source)
		}
		if strings.TrimSpace(raw.URL) == "" {
			return fmt.Errorf("formconfig: upload %q (file %s): %w", id, source, upload.ErrNoURL)
		}
		s.uploads[id] = entry[upload.Config]{value: raw, source: source}
	}

	for rawID, raw := range doc.Tables {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return fmt.Errorf("formconfig: file %s defines an empty table id", source)
		}
		if _, exists := s.tables[id]; exists {
			return fmt.Errorf("formconfig: duplicate table %q (file %s)", id, source)
		}
		for _, p := range s.pending {
			if p.id == id {
				return fmt.Errorf("formconfig: duplicate table %q (files %s and %s)", id, p.source, source)
			}
		}
		s.pending = append(s.pending, pendingTable{id: id, source: source, raw: raw})
	}
	return nil
}

// link resolves table form references once all documents are read.
func (s *Store) link() error {
	for _, p := range s.pending {
		parent, err := s.page(p.raw.Parent, p.id, p.source)
		if err != nil {
			return err
		}
		params := table.Params{Parent: parent}
		if p.raw.Child != nil {
			child, err := s.page(*p.raw.Child, p.id, p.source)
			if err != nil {
				return err
			}
			params.Child = &child
		}
		s.tables[p.id] = entry[table.Params]{value: params, source: p.source}
	}
	s.pending = nil
	return nil
}

func (s *Store) page(raw pageFile, tableID, source string) (table.PageParam, error) {
	page := table.PageParam{
		Name:      raw.Name,
		KeyField:  raw.KeyField,
		AddURL:    raw.AddURL,
		RemoveURL: raw.RemoveURL,
		Table:     raw.Table,
	}
	if raw.Form != "" {
		form, ok := s.forms[raw.Form]
		if !ok {
			return table.PageParam{}, fmt.Errorf("formconfig: table %q (file %s) references unknown form %q", tableID, source, raw.Form)
		}
		page.Form = form.value
	}
	return page, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("formconfig: file %s is empty", source)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("formconfig: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseForm(raw formFile, id, source string) (model.FormModel, error) {
	form := model.FormModel{
		ID:       id,
		Title:    raw.Title,
		Endpoint: raw.Endpoint,
		Method:   raw.Method,
		Fields:   make([]model.Field, 0, len(raw.Fields)),
	}
	if len(raw.Metadata) > 0 {
		form.Metadata = make(map[string]string, len(raw.Metadata))
		for k, v := range raw.Metadata {
			form.Metadata[k] = v
		}
	}

	for _, rawField := range raw.Fields {
		field, err := normaliseField(rawField)
		if err != nil {
			return model.FormModel{}, fmt.Errorf("formconfig: form %q (file %s) field %q: %w", id, source, rawField.ID, err)
		}
		form.Fields = append(form.Fields, field)
	}
	if err := form.Validate(); err != nil {
		return model.FormModel{}, fmt.Errorf("formconfig: form %q (file %s): %w", id, source, err)
	}
	return form, nil
}

func normaliseField(raw fieldFile) (model.Field, error) {
	fieldType := model.FieldTypeText
	if strings.TrimSpace(raw.Type) != "" {
		parsed, err := model.ParseFieldType(raw.Type)
		if err != nil {
			return model.Field{}, err
		}
		fieldType = parsed
	}
	field := model.Field{
		ID:           strings.TrimSpace(raw.ID),
		Type:         fieldType,
		Label:        raw.Label,
		HideLabel:    raw.HideLabel,
		Hide:         raw.Hide,
		DefaultValue: raw.DefaultValue,
		IsRefData:    raw.IsRefData,
		RefField:     raw.RefField,
		Rules:        append([]model.ValidationRule(nil), raw.Rules...),
	}
	if len(raw.Props) > 0 {
		field.Props = make(map[string]string, len(raw.Props))
		for k, v := range raw.Props {
			field.Props[k] = v
		}
	}

	switch {
	case len(raw.Tree) > 0 && len(raw.Options) > 0:
		options, tree := []model.Option(raw.Options), raw.Tree
		field.ArrayData = model.OptionsFunc(func() (model.OptionSet, error) {
			return model.OptionSet{Options: append([]model.Option(nil), options...), Tree: tree}, nil
		})
	case len(raw.Tree) > 0:
		field.ArrayData = model.StaticTree(raw.Tree)
	case len(raw.Options) > 0:
		field.ArrayData = model.StaticOptions(raw.Options)
	}

	if len(raw.Render) > 0 {
		fn, err := buildChain(raw.Render)
		if err != nil {
			return model.Field{}, fmt.Errorf("render: %w", err)
		}
		field.Render = transforms.Render(fn)
	}
	if len(raw.Submit) > 0 {
		fn, err := buildChain(raw.Submit)
		if err != nil {
			return model.Field{}, fmt.Errorf("submit: %w", err)
		}
		field.Submit = transforms.Submit(fn)
	}
	return field, nil
}

func buildChain(refs transformChain) (transforms.Func, error) {
	fns := make([]transforms.Func, 0, len(refs))
	for _, ref := range refs {
		fn, err := transforms.Lookup(ref.Name, ref.Args...)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	if len(fns) == 1 {
		return fns[0], nil
	}
	return transforms.Chain(fns...), nil
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Form returns the form with id.
func (s *Store) Form(id string) (model.FormModel, bool) {
	if s == nil {
		return model.FormModel{}, false
	}
	form, ok := s.forms[id]
	return form.value, ok
}

// Table returns the master/detail definition with id.
func (s *Store) Table(id string) (table.Params, bool) {
	if s == nil {
		return table.Params{}, false
	}
	params, ok := s.tables[id]
	return params.value, ok
}

// Upload returns the upload target with id.
func (s *Store) Upload(id string) (upload.Config, bool) {
	if s == nil {
		return upload.Config{}, false
	}
	cfg, ok := s.uploads[id]
	return cfg.value, ok
}

// Source reports the file a form was loaded from.
func (s *Store) Source(formID string) string {
	if s == nil {
		return ""
	}
	return s.forms[formID].source
}

// FormIDs lists form ids in sorted order.
func (s *Store) FormIDs() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.forms)
}

func (s *Store) TableIDs() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.tables)
}

func (s *Store) UploadIDs() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.uploads)
}

// Empty reports whether the store holds no forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func sortedKeys[T any](m map[string]entry[T]) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
