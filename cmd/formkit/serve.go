package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	gotemplatepkg "github.com/goliatone/go-template"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/components/mockapi"
	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/container"
	"github.com/goliatone/go-formkit/pkg/formconfig"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/render"
	rendertemplate "github.com/goliatone/go-formkit/pkg/render/template"
	"github.com/goliatone/go-formkit/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formkit/pkg/renderers/vanilla"
	"github.com/goliatone/go-formkit/pkg/table"
	"github.com/goliatone/go-formkit/pkg/transport"
	"github.com/goliatone/go-formkit/pkg/validation"
)

//go:embed pages/*.tmpl
var pagesFS embed.FS

var errTableNotFound = errors.New("table not found")

type serveFlags struct {
	addr     string
	apiBase  string
	pageSize int
}

func newServeCmd(global *globalFlags) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo backend and the configured forms",
		Long: `Start an HTTP server with the in-memory demo backend mounted under
--api and an HTML page per configured form and table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(global)
			if err != nil {
				return err
			}
			handler, endpoints, err := newDemoServer(store, flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := logging.Logger()
			server := &http.Server{
				Addr:              flags.addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()
			logger.Info("serving", zap.String("addr", flags.addr), zap.String("list", endpoints.List))
			fmt.Fprintf(cmd.OutOrStdout(), "Serving forms on http://%s (Ctrl+C to stop)\n", displayAddr(flags.addr))

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdown)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "localhost:8383", "Listen address")
	cmd.Flags().StringVar(&flags.apiBase, "api", "/api", "Mount path of the demo backend")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 5, "Parent rows per table page")
	return cmd
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// demoServer serves the pages. Table pages call the backend over HTTP on the
// request's own origin, the same way a browser client would.
type demoServer struct {
	store     *formconfig.Store
	pages     rendertemplate.TemplateRenderer
	forms     *vanilla.Renderer
	endpoints mockapi.Endpoints
	pageSize  int
	logger    *zap.Logger
}

func newDemoServer(store *formconfig.Store, flags *serveFlags) (http.Handler, mockapi.Endpoints, error) {
	logger := logging.Logger()
	api, err := mockapi.NewAPI(mockapi.WithLogger(logger))
	if err != nil {
		return nil, mockapi.Endpoints{}, err
	}
	mux := http.NewServeMux()
	endpoints, err := api.RegisterRoutes(mux, flags.apiBase)
	if err != nil {
		return nil, mockapi.Endpoints{}, err
	}

	pages, err := fs.Sub(pagesFS, "pages")
	if err != nil {
		return nil, mockapi.Endpoints{}, err
	}
	engine, err := gotemplate.NewRenderer(
		gotemplatepkg.WithFS(pages),
		gotemplatepkg.WithExtension(".tmpl"),
		gotemplatepkg.WithGlobalData(map[string]any{"app": "formkit"}),
	)
	if err != nil {
		return nil, mockapi.Endpoints{}, err
	}
	forms, err := vanilla.New()
	if err != nil {
		return nil, mockapi.Endpoints{}, err
	}

	srv := &demoServer{
		store:     store,
		pages:     engine,
		forms:     forms,
		endpoints: endpoints,
		pageSize:  flags.pageSize,
		logger:    logger,
	}
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))
	mux.HandleFunc("GET /forms/{id}", srv.form)
	mux.HandleFunc("POST /forms/{id}", srv.submitForm)
	mux.HandleFunc("GET /tables/{id}", srv.table)
	mux.HandleFunc("POST /tables/{id}/press", srv.press)
	mux.HandleFunc("POST /tables/{id}/submit", srv.submitTable)
	mux.HandleFunc("GET /{$}", srv.index)
	return mux, endpoints, nil
}

func (s *demoServer) index(w http.ResponseWriter, r *http.Request) {
	uploads := make([]map[string]string, 0)
	for _, id := range s.store.UploadIDs() {
		cfg, _ := s.store.Upload(id)
		tip, _ := cfg.Tips()
		uploads = append(uploads, map[string]string{"id": id, "tip": tip})
	}
	e := s.endpoints
	s.page(w, http.StatusOK, "index", map[string]any{
		"title":     "",
		"forms":     s.store.FormIDs(),
		"tables":    s.store.TableIDs(),
		"uploads":   uploads,
		"origin":    origin(r),
		"endpoints": []string{e.List, e.Children, e.Add, e.Remove, e.Upload},
	})
}

// inline binds a configured form for one request. Relative endpoints are
// resolved against the request origin so the pipeline posts to the mounted
// backend.
func (s *demoServer) inline(r *http.Request, notices *[]string, completed *map[string]any) (*container.Inline, error) {
	form, err := lookupForm(s.store, r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	form.Endpoint = resolveEndpoint(origin(r), form.Endpoint)
	return container.NewInline(form, binding.Source{},
		container.WithTransport(transport.New(transport.WithLogger(s.logger))),
		container.WithLogger(s.logger),
		container.WithNotifier(pipeline.NotifierFuncs{
			OnError: func(message string) { *notices = append(*notices, message) },
		}),
		container.WithOnComplete(func(payload map[string]any) { *completed = payload }),
	), nil
}

func (s *demoServer) form(w http.ResponseWriter, r *http.Request) {
	var notices []string
	var completed map[string]any
	inline, err := s.inline(r, &notices, &completed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.renderInline(w, r, inline, http.StatusOK, nil)
}

// submitForm runs a posted form through the submission pipeline. Rejected
// values are rendered again with their field errors and alert.
func (s *demoServer) submitForm(w http.ResponseWriter, r *http.Request) {
	var notices []string
	var completed map[string]any
	inline, err := s.inline(r, &notices, &completed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	values := vanilla.DecodeValues(inline.Form(), r.PostForm)
	outcome, err := inline.Submit(r.Context(), values)
	var invalid *validation.Error
	switch {
	case err == nil && outcome.State == pipeline.StateSuccess:
		data := map[string]any{"title": inline.Form().Title, "notice": "Saved"}
		if completed != nil {
			payload, err := json.MarshalIndent(completed, "", "  ")
			if err != nil {
				s.fail(w, err)
				return
			}
			data["payload"] = string(payload)
		}
		s.logger.Info("demo form submitted", zap.String("form", inline.Form().ID))
		s.page(w, http.StatusOK, "form", data)
	case err == nil, errors.As(err, &invalid):
		s.renderInline(w, r, inline, http.StatusUnprocessableEntity, notices)
	default:
		s.logger.Warn("demo form failed", zap.String("form", inline.Form().ID), zap.Error(err))
		s.renderInline(w, r, inline, http.StatusBadGateway, notices)
	}
}

func (s *demoServer) renderInline(w http.ResponseWriter, r *http.Request, inline *container.Inline, status int, notices []string) {
	markup, err := inline.Render(r.Context(), s.forms, render.RenderOptions{
		FormErrors: notices,
		Layout:     render.Layout{Action: r.URL.Path},
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.page(w, status, "form", map[string]any{"title": inline.Form().Title, "form": string(markup)})
}

// tableView is a controller restored from the query of a table request:
// the page, the expanded parent and the selected child.
type tableView struct {
	id       string
	params   table.Params
	ctrl     *table.Controller
	page     int
	parent   string
	child    string
	children []table.Row
}

func (v *tableView) url() string {
	return "/tables/" + v.id + "?" + v.query().Encode()
}

func (v *tableView) link(route string, extra url.Values) string {
	query := v.query()
	for key, list := range extra {
		query[key] = list
	}
	return "/tables/" + v.id + "/" + route + "?" + query.Encode()
}

func (v *tableView) query() url.Values {
	query := url.Values{"page": {strconv.Itoa(v.page)}}
	if v.parent != "" {
		query.Set("parent", v.parent)
	}
	if v.child != "" {
		query.Set("child", v.child)
	}
	return query
}

func (s *demoServer) openTable(r *http.Request) (*tableView, error) {
	id := r.PathValue("id")
	params, ok := s.store.Table(id)
	if !ok {
		return nil, errTableNotFound
	}
	ctrl, err := table.New(absoluteParams(params, origin(r)),
		table.WithClient(transport.New(transport.WithLogger(s.logger))),
		table.WithLogger(s.logger),
		table.WithPageSize(s.pageSize),
	)
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()
	view := &tableView{
		id:     id,
		params: params,
		ctrl:   ctrl,
		parent: query.Get("parent"),
		child:  query.Get("child"),
	}
	view.page, _ = strconv.Atoi(query.Get("page"))
	if view.page < 1 {
		view.page = 1
	}

	ctx := r.Context()
	if err := ctrl.ChangePage(ctx, table.Pagination{Current: view.page, PageSize: s.pageSize}, table.Sorter{}, nil); err != nil {
		return nil, err
	}
	if params.Child == nil || view.parent == "" {
		return view, nil
	}

	keyField, childKey := keyOf(params.Parent), keyOf(*params.Child)
	for _, row := range ctrl.Rows() {
		if binding.Stringify(row[keyField]) != view.parent {
			continue
		}
		children, err := ctrl.Expand(ctx, row)
		if err != nil {
			return nil, err
		}
		ctrl.SelectParent([]string{view.parent}, []table.Row{row})
		view.children = children
		for _, child := range children {
			if view.child != "" && binding.Stringify(child[childKey]) == view.child {
				ctrl.SelectChild([]string{view.child}, []table.Row{child})
			}
		}
	}
	return view, nil
}

func (s *demoServer) table(w http.ResponseWriter, r *http.Request) {
	view, err := s.openTable(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	params, ctrl := view.params, view.ctrl

	var children []map[string]any
	selectedParent, selectedChild := ctrl.Selection()
	if len(selectedParent) == 1 {
		childKey := keyOf(*params.Child)
		for j, child := range view.children {
			key := binding.Stringify(child[childKey])
			children = append(children, map[string]any{
				"key":      key,
				"class":    table.RowClass(j),
				"selected": len(selectedChild) == 1 && selectedChild[0] == key,
				"cells":    cells(params.Child.Table.Columns, child),
			})
		}
	}

	keyField := keyOf(params.Parent)
	rows := make([]map[string]any, 0, len(ctrl.Rows()))
	for i, row := range ctrl.Rows() {
		key := binding.Stringify(row[keyField])
		rows = append(rows, map[string]any{
			"key":      key,
			"class":    table.RowClass(i),
			"expanded": len(selectedParent) == 1 && selectedParent[0] == key,
			"cells":    cells(params.Parent.Table.Columns, row),
		})
	}

	page := ctrl.Pagination()
	data := map[string]any{
		"title":     params.Parent.Name,
		"columns":   params.Parent.Table.Columns,
		"rows":      rows,
		"has_child": params.Child != nil,
		"children":  children,
		"buttons":   ctrl.Buttons(),
		"press":     view.link("press", nil),
		"page":      page,
	}
	if params.Child != nil {
		data["child_columns"] = params.Child.Table.Columns
	}
	if page.Current > 1 {
		data["prev"] = page.Current - 1
	}
	if page.Current*page.PageSize < page.Total {
		data["next"] = page.Current + 1
	}
	s.page(w, http.StatusOK, "table", data)
}

// press runs a toolbar button. Buttons that open a form render it; the rest
// redirect back to the table.
func (s *demoServer) press(w http.ResponseWriter, r *http.Request) {
	view, err := s.openTable(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	action := r.PostFormValue("action")
	if err := view.ctrl.Press(r.Context(), action); err != nil {
		s.fail(w, err)
		return
	}
	if view.ctrl.Modal() != nil {
		s.renderModal(w, r, view, action, http.StatusOK)
		return
	}
	if action == table.ButtonParentRemove {
		view.parent = ""
	}
	view.child = ""
	http.Redirect(w, r, view.url(), http.StatusSeeOther)
}

// submitTable reopens the form behind action and submits the posted values
// through the controller.
func (s *demoServer) submitTable(w http.ResponseWriter, r *http.Request) {
	view, err := s.openTable(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	action := r.URL.Query().Get("action")
	switch action {
	case table.ButtonParentAdd, table.ButtonParentEdit, table.ButtonChildAdd, table.ButtonChildEdit:
	default:
		http.Error(w, fmt.Sprintf("action %q does not open a form", action), http.StatusBadRequest)
		return
	}
	if err := view.ctrl.Press(r.Context(), action); err != nil {
		s.fail(w, err)
		return
	}
	modal := view.ctrl.Modal()
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := view.ctrl.Submit(r.Context(), vanilla.DecodeValues(modal.Form(), r.PostForm))
	var invalid *validation.Error
	switch {
	case errors.Is(err, pipeline.ErrUnchanged), err == nil && outcome.State == pipeline.StateSuccess:
		view.child = ""
		http.Redirect(w, r, view.url(), http.StatusSeeOther)
	case err == nil, errors.As(err, &invalid):
		s.renderModal(w, r, view, action, http.StatusUnprocessableEntity)
	default:
		s.fail(w, err)
	}
}

func (s *demoServer) renderModal(w http.ResponseWriter, r *http.Request, view *tableView, action string, status int) {
	modal := view.ctrl.Modal()
	markup, err := modal.Render(r.Context(), s.forms, render.RenderOptions{
		Layout: render.Layout{Action: view.link("submit", url.Values{"action": {action}})},
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.page(w, status, "form", map[string]any{
		"title": modal.Title(),
		"form":  string(markup),
		"back":  view.url(),
	})
}

func (s *demoServer) page(w http.ResponseWriter, status int, name string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := s.pages.RenderTemplate(name, data, w); err != nil {
		s.logger.Error("render page", zap.String("page", name), zap.Error(err))
	}
}

func (s *demoServer) fail(w http.ResponseWriter, err error) {
	s.logger.Warn("demo request failed", zap.Error(err))
	var terr *transport.Error
	switch {
	case errors.Is(err, errTableNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, table.ErrSelection):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &terr), errors.Is(err, table.ErrRejected):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func keyOf(page table.PageParam) string {
	if page.KeyField == "" {
		return table.DefaultKeyField
	}
	return page.KeyField
}

func cells(columns []table.Column, row table.Row) []string {
	out := make([]string, 0, len(columns))
	for _, column := range columns {
		out = append(out, binding.Stringify(row[column.Key]))
	}
	return out
}

// absoluteParams resolves every relative URL of a table against base.
func absoluteParams(params table.Params, base string) table.Params {
	resolve := func(page table.PageParam) table.PageParam {
		page.Table.URL = resolveEndpoint(base, page.Table.URL)
		page.AddURL = resolveEndpoint(base, page.AddURL)
		page.RemoveURL = resolveEndpoint(base, page.RemoveURL)
		page.Form.Endpoint = resolveEndpoint(base, page.Form.Endpoint)
		return page
	}
	params.Parent = resolve(params.Parent)
	if params.Child != nil {
		child := resolve(*params.Child)
		params.Child = &child
	}
	return params
}
