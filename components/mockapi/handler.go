package mockapi

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/transport"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type envelope struct {
	Msg   transport.Messages `json:"msg"`
	Data  any                `json:"data"`
	Total int                `json:"total,omitempty"`
}

// API serves the dataset endpoints.
type API struct {
	opts  Options
	store *Store
}

// NewAPI builds the endpoints. Without WithStore a store seeded from the
// embedded dataset is used.
func NewAPI(fns ...OptionFn) (*API, error) {
	opts := NewOptions(fns...)
	store := opts.Store
	if store == nil {
		data, err := DefaultDataset()
		if err != nil {
			return nil, err
		}
		store = NewStore(data, opts.ParentParam)
	}
	return &API{opts: opts, store: store}, nil
}

// Store returns the backing store.
func (a *API) Store() *Store {
	return a.store
}

func (a *API) ListHandler() http.Handler     { return a.post(a.list) }
func (a *API) ChildrenHandler() http.Handler { return a.post(a.children) }
func (a *API) AddHandler() http.Handler      { return a.post(a.add) }
func (a *API) RemoveHandler() http.Handler   { return a.post(a.remove) }
func (a *API) UploadHandler() http.Handler   { return a.post(a.upload) }

func (a *API) post(fn func(r *http.Request) (envelope, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if a.opts.Guard != nil {
			if err := a.opts.Guard(r); err != nil {
				writeError(w, err, http.StatusForbidden)
				return
			}
		}

		body, err := fn(r)
		if err != nil {
			a.opts.Logger.Warn("mockapi request failed", zap.String("url", r.URL.Path), zap.Error(err))
			writeError(w, err, http.StatusBadRequest)
			return
		}
		a.opts.Logger.Debug("mockapi request", zap.String("url", r.URL.Path), zap.Bool("failed", !body.Msg.Empty()))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(body)
	})
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	code := fallback
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	http.Error(w, http.StatusText(code), code)
}

func (a *API) list(r *http.Request) (envelope, error) {
	values, err := a.readValues(r)
	if err != nil {
		return envelope{}, err
	}
	query := Query{
		Current:   parseInt(values.Get("current")),
		PageSize:  parseInt(values.Get("pageSize")),
		SortField: values.Get("sortField"),
		SortOrder: values.Get("sortOrder"),
		Filters:   map[string]string{},
	}
	query.Fuzzy, _ = strconv.ParseBool(values.Get(a.opts.FuzzyParam))
	for key := range values {
		switch key {
		case "current", "pageSize", "sortField", "sortOrder", a.opts.FuzzyParam:
			continue
		}
		query.Filters[key] = values.Get(key)
	}
	rows, total := a.store.List(query)
	return envelope{Data: rows, Total: total}, nil
}

func (a *API) children(r *http.Request) (envelope, error) {
	values, err := a.readValues(r)
	if err != nil {
		return envelope{}, err
	}
	rows := a.store.Children(values.Get(a.opts.ParentParam))
	return envelope{Data: rows, Total: len(rows)}, nil
}

func (a *API) add(r *http.Request) (envelope, error) {
	values, err := a.readValues(r)
	if err != nil {
		return envelope{}, err
	}
	record := Record{}
	for key, list := range values {
		if len(list) == 1 {
			record[key] = list[0]
			continue
		}
		record[key] = append([]string{}, list...)
	}

	var missing transport.Messages
	for _, field := range a.opts.RequiredFields {
		if strings.TrimSpace(binding.Stringify(record[field])) == "" {
			missing = append(missing, field+" is required")
		}
	}
	if len(missing) > 0 {
		return envelope{Msg: missing}, nil
	}

	saved, err := a.store.Save(record)
	if err != nil {
		return envelope{Msg: transport.Messages{err.Error()}}, nil
	}
	return envelope{Data: saved}, nil
}

func (a *API) remove(r *http.Request) (envelope, error) {
	values, err := a.readValues(r)
	if err != nil {
		return envelope{}, err
	}
	ids := values["ids"]
	if len(ids) == 0 {
		return envelope{Msg: transport.Messages{"no ids given"}}, nil
	}
	removed := a.store.Remove(ids)
	if removed == 0 {
		return envelope{Msg: transport.Messages{"no matching records"}}, nil
	}
	return envelope{Data: map[string]any{"removed": removed}}, nil
}

func (a *API) upload(r *http.Request) (envelope, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, a.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.opts.MaxUploadBytes); err != nil {
		return envelope{}, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("mockapi: parse upload: %w", err)}
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return envelope{}, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("mockapi: upload file: %w", err)}
	}
	defer func() { _ = file.Close() }()

	if !accepted(header.Filename, a.opts.UploadAccept) {
		return envelope{Msg: transport.Messages{"unsupported file type: " + header.Filename}}, nil
	}

	records, problems := readCSV(file)
	if len(problems) > 0 {
		return envelope{Msg: problems}, nil
	}
	for _, record := range records {
		if _, err := a.store.Save(record); err != nil {
			return envelope{Msg: transport.Messages{err.Error()}}, nil
		}
	}
	message := fmt.Sprintf("imported %d rows from %s", len(records), header.Filename)
	return envelope{
		Msg:  transport.Messages{message},
		Data: map[string]any{"rows": len(records), "file": header.Filename},
	}, nil
}

func accepted(name, accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	for _, item := range strings.Split(accept, ",") {
		if strings.ToLower(strings.TrimPrefix(strings.TrimSpace(item), ".")) == ext {
			return true
		}
	}
	return false
}

// readCSV reads Name,Code,City rows. A leading header row is skipped.
func readCSV(r io.Reader) ([]Record, transport.Messages) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		records  []Record
		problems transport.Messages
	)
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("row %d: %v", line, err))
			break
		}
		if line == 1 && len(row) > 0 && strings.EqualFold(row[0], "name") {
			continue
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			problems = append(problems, fmt.Sprintf("row %d: name is required", line))
			continue
		}
		record := Record{"Name": strings.TrimSpace(row[0])}
		if len(row) > 1 {
			record["Code"] = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			record["City"] = strings.TrimSpace(row[2])
		}
		records = append(records, record)
	}
	if len(records) == 0 && len(problems) == 0 {
		problems = append(problems, "file contains no rows")
	}
	return records, problems
}

func (a *API) readValues(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var payload map[string]any
		decoder := json.NewDecoder(r.Body)
		decoder.UseNumber()
		if err := decoder.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			return nil, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("mockapi: decode body: %w", err)}
		}
		return transport.EncodeForm(payload), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(a.opts.MaxUploadBytes); err != nil {
			return nil, StatusError{Code: http.StatusBadRequest, Err: err}
		}
		return r.MultipartForm.Value, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, StatusError{Code: http.StatusBadRequest, Err: err}
	}
	return r.PostForm, nil
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
