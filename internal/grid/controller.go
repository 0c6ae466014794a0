// Package grid orchestrates dashboard editing: the viewing/editing state
// machine, reorder and resize requests, and widget data fan-out. Every
// mutation round-trips through the layout store before the controller will
// report it, so a dashboard never shows state that was not durably saved.
package grid

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/freightboard/dashboard-api/internal/dto"
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/internal/sizing"
	"github.com/freightboard/dashboard-api/pkg/logger"
)

// DefaultDebounce coalesces rapid hover reorders into one layout save.
const DefaultDebounce = 750 * time.Millisecond

// fetchConcurrency caps parallel widget data fetches per dashboard.
const fetchConcurrency = 8

type layoutStore interface {
	Load(ctx context.Context, key models.OwnerKey) (models.LayoutDocument, error)
	AddWidget(ctx context.Context, key models.OwnerKey, widgetID string) (models.LayoutDocument, error)
	RemoveWidget(ctx context.Context, key models.OwnerKey, widgetID string) (models.LayoutDocument, error)
	Reorder(ctx context.Context, key models.OwnerKey, newOrder []string) (models.LayoutDocument, error)
	SetSize(ctx context.Context, key models.OwnerKey, widgetID string, size models.SizeLevel) (models.LayoutDocument, error)
}

// definitionResolver answers what a widget id is, across the built-in
// catalog and the owner's custom namespace.
type definitionResolver interface {
	Resolve(ctx context.Context, owner models.OwnerContext, widgetID string) (ResolvedWidget, error)
}

// ResolvedWidget is the slice of a definition the grid needs.
type ResolvedWidget struct {
	Name   string
	Type   models.WidgetType
	Custom bool
}

type dataFetcher interface {
	GetWidgetData(ctx context.Context, owner models.OwnerContext, execCtx models.ExecContext, widgetID string) (dto.WidgetDataResponse, error)
}

type session struct {
	editing  bool
	selected string
}

type pendingReorder struct {
	order []string
	timer *time.Timer
}

type fetchSlot struct {
	key      models.OwnerKey
	widgetID string
}

type Controller struct {
	layouts  layoutStore
	resolver definitionResolver
	data     dataFetcher
	debounce time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	sessions map[models.OwnerKey]*session
	pending  map[models.OwnerKey]*pendingReorder
	fetchGen map[fetchSlot]uint64

	// saveLocks serializes layout writes per owner; concurrent whole-document
	// replacement for the same owner would silently drop the earlier write.
	saveMu    sync.Mutex
	saveLocks map[models.OwnerKey]*sync.Mutex
}

func NewController(layouts layoutStore, resolver definitionResolver, data dataFetcher, debounce time.Duration, log *slog.Logger) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		layouts:   layouts,
		resolver:  resolver,
		data:      data,
		debounce:  debounce,
		log:       log,
		sessions:  make(map[models.OwnerKey]*session),
		pending:   make(map[models.OwnerKey]*pendingReorder),
		fetchGen:  make(map[fetchSlot]uint64),
		saveLocks: make(map[models.OwnerKey]*sync.Mutex),
	}
}

// --- Edit-mode state machine ---

func (c *Controller) EnterEdit(key models.OwnerKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session(key).editing = true
}

// ExitEdit clears the in-flight selection only. Each mutation was persisted
// as it happened, so leaving edit mode rolls nothing back.
func (c *Controller) ExitEdit(key models.OwnerKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session(key)
	s.editing = false
	s.selected = ""
}

func (c *Controller) Editing(key models.OwnerKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session(key).editing
}

func (c *Controller) SelectWidget(key models.OwnerKey, widgetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session(key)
	if !s.editing {
		return errs.NewValidationError("widget selection requires edit mode")
	}
	s.selected = widgetID
	return nil
}

func (c *Controller) Selected(key models.OwnerKey) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session(key).selected
}

// session must be called with c.mu held.
func (c *Controller) session(key models.OwnerKey) *session {
	s, ok := c.sessions[key]
	if !ok {
		s = &session{}
		c.sessions[key] = s
	}
	return s
}

// --- Layout mutations ---

// AddWidget appends a widget to the layout. Allowed in any mode: adding is
// how an empty dashboard gets its first widget.
func (c *Controller) AddWidget(ctx context.Context, owner models.OwnerContext, key models.OwnerKey, widgetID string) (dto.DashboardView, error) {
	if _, err := c.resolver.Resolve(ctx, owner, widgetID); err != nil {
		return dto.DashboardView{}, err
	}
	unlock := c.lockOwner(key)
	layout, err := c.layouts.AddWidget(ctx, key, widgetID)
	unlock()
	if err != nil {
		return dto.DashboardView{}, err
	}
	return c.render(ctx, owner, key, layout), nil
}

func (c *Controller) RemoveWidget(ctx context.Context, owner models.OwnerContext, key models.OwnerKey, widgetID string) (dto.DashboardView, error) {
	if !c.Editing(key) {
		return dto.DashboardView{}, errs.NewValidationError("removing a widget requires edit mode")
	}
	unlock := c.lockOwner(key)
	layout, err := c.layouts.RemoveWidget(ctx, key, widgetID)
	unlock()
	if err != nil {
		return dto.DashboardView{}, err
	}
	c.mu.Lock()
	if c.session(key).selected == widgetID {
		c.session(key).selected = ""
	}
	c.mu.Unlock()
	return c.render(ctx, owner, key, layout), nil
}

// ChangeSize clamps the requested level against the widget's constraints
// before persisting; an out-of-range request narrows, it never fails.
func (c *Controller) ChangeSize(ctx context.Context, owner models.OwnerContext, key models.OwnerKey, widgetID string, requested models.SizeLevel) (dto.DashboardView, error) {
	if !c.Editing(key) {
		return dto.DashboardView{}, errs.NewValidationError("resizing a widget requires edit mode")
	}
	resolved, err := c.resolver.Resolve(ctx, owner, widgetID)
	if err != nil {
		return dto.DashboardView{}, err
	}
	size := sizing.Clamp(requested, widgetID, resolved.Type)
	unlock := c.lockOwner(key)
	layout, err := c.layouts.SetSize(ctx, key, widgetID, size)
	unlock()
	if err != nil {
		return dto.DashboardView{}, err
	}
	return c.render(ctx, owner, key, layout), nil
}

// Reorder consumes a single move message. Edit-mode reorders persist
// immediately. Hover reorders are allowed while viewing, but only for
// widgets that do not own pointer gestures, and rapid successive moves are
// debounced into one save.
func (c *Controller) Reorder(ctx context.Context, owner models.OwnerContext, key models.OwnerKey, req dto.ReorderRequest) (dto.DashboardView, error) {
	layout, err := c.layouts.Load(ctx, key)
	if err != nil {
		return dto.DashboardView{}, err
	}

	base := layout.WidgetIDs
	c.mu.Lock()
	if p, ok := c.pending[key]; ok {
		base = p.order
	}
	c.mu.Unlock()

	newOrder, err := moveIndex(base, req.OldIndex, req.NewIndex)
	if err != nil {
		return dto.DashboardView{}, err
	}

	if req.Hover {
		if c.Editing(key) {
			return dto.DashboardView{}, errs.NewValidationError("hover reorder is a viewing-mode affordance")
		}
		if req.OldIndex < len(base) {
			resolved, err := c.resolver.Resolve(ctx, owner, base[req.OldIndex])
			if err != nil {
				return dto.DashboardView{}, err
			}
			// Hard rule: pan/zoom widgets never hover-reorder.
			if resolved.Type.PointerDriven() {
				return dto.DashboardView{}, errs.NewValidationError("widget type does not support hover reorder")
			}
		}
		c.scheduleReorder(key, newOrder)
		// The view reflects persisted state; the pending order lands after
		// the debounce window.
		return c.render(ctx, owner, key, layout), nil
	}

	if !c.Editing(key) {
		return dto.DashboardView{}, errs.NewValidationError("reordering requires edit mode")
	}
	unlock := c.lockOwner(key)
	layout, err = c.layouts.Reorder(ctx, key, newOrder)
	unlock()
	if err != nil {
		return dto.DashboardView{}, err
	}
	return c.render(ctx, owner, key, layout), nil
}

// scheduleReorder buffers the latest hover order and (re)arms the debounce
// timer.
func (c *Controller) scheduleReorder(key models.OwnerKey, order []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[key]; ok {
		p.order = order
		p.timer.Reset(c.debounce)
		return
	}
	p := &pendingReorder{order: order}
	p.timer = time.AfterFunc(c.debounce, func() { c.flushReorder(key) })
	c.pending[key] = p
}

func (c *Controller) flushReorder(key models.OwnerKey) {
	c.mu.Lock()
	p, ok := c.pending[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	order := p.order
	c.mu.Unlock()

	ctx := logger.ToContext(context.Background(), c.log)
	unlock := c.lockOwner(key)
	_, err := c.layouts.Reorder(ctx, key, order)
	unlock()
	if err != nil {
		c.log.Error("debounced reorder failed", "kind", key.Kind, "owner", key.OwnerID, "error", err)
	}
}

// FlushPending persists any buffered hover reorder immediately. Called on
// dashboard unmount so a fresh hover move is not lost with the session.
func (c *Controller) FlushPending(key models.OwnerKey) {
	c.mu.Lock()
	p, ok := c.pending[key]
	if ok {
		p.timer.Stop()
	}
	c.mu.Unlock()
	if ok {
		c.flushPendingNow(key, p.order)
	}
}

func (c *Controller) flushPendingNow(key models.OwnerKey, order []string) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()

	ctx := logger.ToContext(context.Background(), c.log)
	unlock := c.lockOwner(key)
	_, err := c.layouts.Reorder(ctx, key, order)
	unlock()
	if err != nil {
		c.log.Error("flushed reorder failed", "kind", key.Kind, "owner", key.OwnerID, "error", err)
	}
}

// --- Views and data ---

// View resolves the persisted layout into renderable widget slots. A widget
// whose definition no longer resolves is skipped so the rest of the
// dashboard still renders.
func (c *Controller) View(ctx context.Context, owner models.OwnerContext, key models.OwnerKey) (dto.DashboardView, error) {
	layout, err := c.layouts.Load(ctx, key)
	if err != nil {
		return dto.DashboardView{}, err
	}
	return c.render(ctx, owner, key, layout), nil
}

func (c *Controller) render(ctx context.Context, owner models.OwnerContext, key models.OwnerKey, layout models.LayoutDocument) dto.DashboardView {
	log := logger.FromContext(ctx)
	view := dto.DashboardView{
		Kind:    key.Kind,
		Editing: c.Editing(key),
		Widgets: make([]dto.WidgetView, 0, len(layout.WidgetIDs)),
	}
	for _, widgetID := range layout.WidgetIDs {
		resolved, err := c.resolver.Resolve(ctx, owner, widgetID)
		if err != nil {
			log.Warn("skipping unresolvable widget", "widget_id", widgetID, "error", err)
			continue
		}
		size, ok := layout.Sizes[widgetID]
		if !ok {
			size = sizing.Optimal(widgetID, resolved.Type)
		}
		view.Widgets = append(view.Widgets, dto.WidgetView{
			WidgetID: widgetID,
			Type:     resolved.Type,
			Name:     resolved.Name,
			Size:     sizing.Clamp(size, widgetID, resolved.Type),
			Custom:   resolved.Custom,
		})
	}
	return view
}

// FetchDashboardData computes data for every widget on the dashboard
// concurrently. Each fetch is independent: one widget's failure is reported
// next to its id and never blocks the others. Per widget slot the latest
// request wins; a result arriving for a superseded request is discarded.
func (c *Controller) FetchDashboardData(ctx context.Context, owner models.OwnerContext, execCtx models.ExecContext, key models.OwnerKey) (dto.DashboardDataResponse, error) {
	layout, err := c.layouts.Load(ctx, key)
	if err != nil {
		return dto.DashboardDataResponse{}, err
	}

	resp := dto.DashboardDataResponse{
		Widgets: make(map[string]dto.WidgetDataResponse, len(layout.WidgetIDs)),
		Errors:  make(map[string]string),
	}
	var respMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, widgetID := range layout.WidgetIDs {
		gen := c.nextGen(key, widgetID)
		g.Go(func() error {
			data, err := c.data.GetWidgetData(gctx, owner, execCtx, widgetID)
			if c.stale(key, widgetID, gen) {
				return nil
			}
			respMu.Lock()
			defer respMu.Unlock()
			if err != nil {
				resp.Errors[widgetID] = err.Error()
				return nil
			}
			resp.Widgets[widgetID] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dto.DashboardDataResponse{}, err
	}
	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}
	return resp, nil
}

func (c *Controller) nextGen(key models.OwnerKey, widgetID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := fetchSlot{key: key, widgetID: widgetID}
	c.fetchGen[slot]++
	return c.fetchGen[slot]
}

func (c *Controller) stale(key models.OwnerKey, widgetID string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchGen[fetchSlot{key: key, widgetID: widgetID}] != gen
}

func (c *Controller) lockOwner(key models.OwnerKey) func() {
	c.saveMu.Lock()
	lock, ok := c.saveLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.saveLocks[key] = lock
	}
	c.saveMu.Unlock()
	lock.Lock()
	return lock.Unlock
}

// moveIndex moves the element at oldIndex to newIndex, preserving set
// membership by construction.
func moveIndex(ids []string, oldIndex, newIndex int) ([]string, error) {
	if oldIndex < 0 || oldIndex >= len(ids) || newIndex < 0 || newIndex >= len(ids) {
		return nil, errs.NewInvalidReorderError("reorder index out of range")
	}
	out := make([]string, 0, len(ids))
	out = append(out, ids...)
	moved := out[oldIndex]
	out = append(out[:oldIndex], out[oldIndex+1:]...)
	rest := make([]string, 0, len(ids))
	rest = append(rest, out[:newIndex]...)
	rest = append(rest, moved)
	rest = append(rest, out[newIndex:]...)
	return rest, nil
}
