package table

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/container"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/transport"
)

// Controller drives a master/detail view: a paginated parent table, child
// rows loaded per parent on demand, per-level selection and the modal used
// to add or edit rows.
type Controller struct {
	params Params
	cfg    config

	mu         sync.Mutex
	rows       []Row
	pagination Pagination
	sorter     Sorter
	filters    map[string]any
	search     map[string]any
	token      string
	loading    bool

	// children is keyed by the parent row key.
	children map[string][]Row

	parentKeys []string
	parentRow  Row
	childKeys  []string
	childRow   Row

	modal       *container.Modal
	modalParent bool
	modalEdit   bool
}

// New validates params and returns an empty controller. Call Load to fetch
// the first page.
func New(params Params, opts ...Option) (*Controller, error) {
	if strings.TrimSpace(params.Parent.Table.URL) == "" {
		return nil, ErrNoParentURL
	}
	cfg := config{
		notifier:       pipeline.NotifierFuncs{},
		logger:         zap.NewNop(),
		display:        DefaultButtonsDisplay,
		pageSize:       DefaultPageSize,
		networkMessage: pipeline.DefaultNetworkMessage,
		removedMessage: DefaultRemovedMessage,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.client == nil {
		cfg.client = transport.New(transport.WithLogger(cfg.logger))
	}
	return &Controller{
		params:     params,
		cfg:        cfg,
		pagination: Pagination{Current: 1, PageSize: cfg.pageSize},
		children:   make(map[string][]Row),
	}, nil
}

// Load fetches the current parent page with the active search params.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	query := c.queryLocked()
	c.mu.Unlock()
	return c.fetchParents(ctx, query)
}

// ChangePage moves the parent table and reloads it.
func (c *Controller) ChangePage(ctx context.Context, page Pagination, sorter Sorter, filters map[string]any) error {
	c.mu.Lock()
	if page.Current > 0 {
		c.pagination.Current = page.Current
	}
	if page.PageSize > 0 {
		c.pagination.PageSize = page.PageSize
	}
	c.sorter = sorter
	c.filters = maps.Clone(filters)
	query := c.queryLocked()
	c.mu.Unlock()
	return c.fetchParents(ctx, query)
}

func (c *Controller) queryLocked() map[string]any {
	query := map[string]any{
		"current":  c.pagination.Current,
		"pageSize": c.pagination.PageSize,
	}
	if c.sorter.Field != "" {
		query["sortField"] = c.sorter.Field
		query["sortOrder"] = c.sorter.Order
	}
	maps.Copy(query, c.filters)
	maps.Copy(query, c.search)
	return query
}

func (c *Controller) fetchParents(ctx context.Context, query map[string]any) error {
	url := c.params.Parent.Table.URL
	c.setLoading(true)
	defer c.setLoading(false)

	rows, total, err := c.fetch(ctx, url, query)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.rows = rows
	c.pagination.Total = total
	c.mu.Unlock()
	c.cfg.logger.Debug("table loaded", zap.String("url", url), zap.Int("rows", len(rows)), zap.Int("total", total))
	return nil
}

func (c *Controller) fetch(ctx context.Context, url string, query map[string]any) ([]Row, int, error) {
	resp, err := c.cfg.client.Fetch(ctx, url, query)
	if err != nil {
		c.cfg.notifier.Error(c.cfg.networkMessage)
		return nil, 0, fmt.Errorf("table: fetch %s: %w", url, err)
	}
	if resp.Failed() {
		message := resp.Msg.String()
		c.cfg.notifier.Error(message)
		return nil, 0, fmt.Errorf("%w: %s", ErrRejected, message)
	}
	rows, err := resp.Rows()
	if err != nil {
		return nil, 0, fmt.Errorf("table: fetch %s: %w", url, err)
	}
	return rows, resp.Total, nil
}

func (c *Controller) setLoading(loading bool) {
	c.mu.Lock()
	c.loading = loading
	c.mu.Unlock()
}

// Expand returns the child rows of a parent row, fetching them on first use.
func (c *Controller) Expand(ctx context.Context, parent Row) ([]Row, error) {
	child := c.params.Child
	if child == nil {
		return nil, ErrNoChild
	}
	key := binding.Stringify(parent[c.params.Parent.key()])

	c.mu.Lock()
	if rows, ok := c.children[key]; ok {
		c.mu.Unlock()
		return cloneRows(rows), nil
	}
	c.mu.Unlock()

	query := map[string]any{}
	if param, field := child.Table.ParentQuery[0], child.Table.ParentQuery[1]; param != "" && field != "" {
		query[param] = parent[field]
	}
	rows, _, err := c.fetch(ctx, child.Table.URL, query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.children[key] = rows
	c.mu.Unlock()
	c.cfg.logger.Debug("child rows loaded", zap.String("parent", key), zap.Int("rows", len(rows)))
	return cloneRows(rows), nil
}

// ChildRows returns cached child rows for a parent key.
func (c *Controller) ChildRows(parentKey string) ([]Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.children[parentKey]
	return cloneRows(rows), ok
}

// Refresh reloads the parent page, or drops cached child rows so they are
// fetched again on the next Expand.
func (c *Controller) Refresh(ctx context.Context, parent bool) error {
	if parent {
		return c.Load(ctx)
	}
	c.mu.Lock()
	c.invalidateLocked()
	c.mu.Unlock()
	return nil
}

func (c *Controller) invalidateLocked() {
	c.children = make(map[string][]Row)
}

// SetSearch replaces the search params. A change drops cached child rows
// and reloads the parent page.
func (c *Controller) SetSearch(ctx context.Context, search map[string]any) error {
	c.mu.Lock()
	if cmp.Equal(search, c.search, cmpopts.EquateEmpty()) {
		c.mu.Unlock()
		return nil
	}
	c.search = maps.Clone(search)
	c.invalidateLocked()
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetRefreshToken reloads everything when token differs from the last one.
func (c *Controller) SetRefreshToken(ctx context.Context, token string) error {
	c.mu.Lock()
	if token == c.token {
		c.mu.Unlock()
		return nil
	}
	c.token = token
	c.invalidateLocked()
	c.mu.Unlock()
	return c.Load(ctx)
}

// SelectParent records the parent selection. The row is remembered only
// when exactly one is selected; any other selection forgets it.
func (c *Controller) SelectParent(keys []string, rows []Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parentKeys = append([]string(nil), keys...)
	c.parentRow = single(rows)
}

// SelectChild records the child selection.
func (c *Controller) SelectChild(keys []string, rows []Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.childKeys = append([]string(nil), keys...)
	c.childRow = single(rows)
}

func single(rows []Row) Row {
	if len(rows) != 1 {
		return nil
	}
	return rows[0]
}

// Add opens the modal with an empty form. A child form is seeded with the
// selected parent row as ancestor data.
func (c *Controller) Add(parent bool) error {
	page, err := c.page(parent)
	if err != nil {
		return err
	}
	src := binding.Source{Mode: model.ModeCreate}
	if !parent {
		c.mu.Lock()
		if len(c.parentKeys) != 1 {
			c.mu.Unlock()
			return fmt.Errorf("%w: add %s needs one %s", ErrSelection, page.Name, c.params.Parent.Name)
		}
		src.Ancestor = maps.Clone(c.parentRow)
		c.mu.Unlock()
	}
	c.open("Add "+page.Name, page, src, parent, false)
	return nil
}

// Edit opens the modal with the selected row. Edit mode binds from the row
// alone: ancestor data only seeds reference fields of new records.
func (c *Controller) Edit(parent bool) error {
	page, err := c.page(parent)
	if err != nil {
		return err
	}
	src := binding.Source{Mode: model.ModeEdit}
	c.mu.Lock()
	if parent {
		if len(c.parentKeys) != 1 {
			c.mu.Unlock()
			return fmt.Errorf("%w: edit needs one %s", ErrSelection, page.Name)
		}
		src.Initial = maps.Clone(c.parentRow)
	} else {
		if len(c.childKeys) != 1 {
			c.mu.Unlock()
			return fmt.Errorf("%w: edit needs one %s", ErrSelection, page.Name)
		}
		src.Initial = maps.Clone(c.childRow)
	}
	c.mu.Unlock()
	c.open("Edit "+page.Name, page, src, parent, true)
	return nil
}

func (c *Controller) page(parent bool) (PageParam, error) {
	if parent {
		return c.params.Parent, nil
	}
	if c.params.Child == nil {
		return PageParam{}, ErrNoChild
	}
	return *c.params.Child, nil
}

func (c *Controller) open(title string, page PageParam, src binding.Source, parent, edit bool) {
	form := page.Form
	form.Endpoint = page.AddURL
	if form.ID == "" {
		form.ID = page.Name
	}
	modal := container.NewModal(
		container.WithTransport(c.cfg.client),
		container.WithValidator(c.cfg.validator),
		container.WithNotifier(c.cfg.notifier),
		container.WithLogger(c.cfg.logger),
	)
	modal.Open(title, form, src)

	c.mu.Lock()
	c.modal = modal
	c.modalParent = parent
	c.modalEdit = edit
	c.mu.Unlock()
}

// Modal returns the open form, or nil.
func (c *Controller) Modal() *container.Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

// Submit sends the open form. On success the modal closes and the level it
// belongs to is refreshed; a finished edit also clears that level's
// selection.
func (c *Controller) Submit(ctx context.Context, values map[string]any) (pipeline.Outcome, error) {
	c.mu.Lock()
	modal, parent, edit := c.modal, c.modalParent, c.modalEdit
	c.mu.Unlock()
	if modal == nil {
		return pipeline.Outcome{}, ErrNoModal
	}

	outcome, err := modal.Submit(ctx, values)
	if err != nil || outcome.State != pipeline.StateSuccess {
		return outcome, err
	}

	modal.Close()
	c.mu.Lock()
	c.modal = nil
	if edit {
		if parent {
			c.parentKeys = nil
		} else {
			c.childKeys = nil
		}
	}
	c.mu.Unlock()
	return outcome, c.Refresh(ctx, parent)
}

// CancelForm closes the open form without submitting.
func (c *Controller) CancelForm() {
	c.mu.Lock()
	modal := c.modal
	c.modal = nil
	c.mu.Unlock()
	if modal != nil {
		modal.Cancel()
	}
}

// Remove posts the selected keys of one level as ids.
func (c *Controller) Remove(ctx context.Context, parent bool) error {
	page, err := c.page(parent)
	if err != nil {
		return err
	}
	c.mu.Lock()
	keys := c.childKeys
	if parent {
		keys = c.parentKeys
	}
	keys = append([]string(nil), keys...)
	c.mu.Unlock()
	if len(keys) == 0 {
		return fmt.Errorf("%w: nothing selected", ErrSelection)
	}

	c.setLoading(true)
	resp, err := c.cfg.client.Submit(ctx, page.RemoveURL, map[string]any{"ids": keys})
	c.setLoading(false)
	if err != nil {
		c.cfg.notifier.Error(c.cfg.networkMessage)
		return fmt.Errorf("table: remove %s: %w", page.Name, err)
	}
	if resp.Failed() {
		message := resp.Msg.String()
		c.cfg.notifier.Error(message)
		return fmt.Errorf("%w: %s", ErrRejected, message)
	}

	c.cfg.notifier.Success(c.cfg.removedMessage)
	c.cfg.logger.Info("rows removed", zap.String("table", page.Name), zap.Strings("ids", keys))
	c.mu.Lock()
	if parent {
		c.parentKeys = nil
	} else {
		c.childKeys = nil
	}
	c.mu.Unlock()
	return c.Refresh(ctx, parent)
}

// Rows returns the current parent page.
func (c *Controller) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRows(c.rows)
}

func (c *Controller) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Selection returns the selected keys of both levels.
func (c *Controller) Selection() (parent, child []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.parentKeys...), append([]string(nil), c.childKeys...)
}

// Params returns the level definitions.
func (c *Controller) Params() Params {
	return c.params
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	return append([]Row(nil), rows...)
}
