package grid

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/freightboard/dashboard-api/internal/dto"
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/pkg/helpers"
	"github.com/freightboard/dashboard-api/pkg/logger"
)

type fakeLayouts struct {
	mu           sync.Mutex
	doc          models.LayoutDocument
	reorderCalls [][]string
	loadErr      error
}

func newFakeLayouts(ids ...string) *fakeLayouts {
	doc := models.EmptyLayout()
	doc.WidgetIDs = append(doc.WidgetIDs, ids...)
	return &fakeLayouts{doc: doc}
}

func (f *fakeLayouts) Load(ctx context.Context, key models.OwnerKey) (models.LayoutDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return models.LayoutDocument{}, f.loadErr
	}
	return f.doc.Clone(), nil
}

func (f *fakeLayouts) AddWidget(ctx context.Context, key models.OwnerKey, widgetID string) (models.LayoutDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.doc.Contains(widgetID) {
		f.doc.WidgetIDs = append(f.doc.WidgetIDs, widgetID)
	}
	return f.doc.Clone(), nil
}

func (f *fakeLayouts) RemoveWidget(ctx context.Context, key models.OwnerKey, widgetID string) (models.LayoutDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.doc.WidgetIDs[:0]
	for _, id := range f.doc.WidgetIDs {
		if id != widgetID {
			kept = append(kept, id)
		}
	}
	f.doc.WidgetIDs = kept
	delete(f.doc.Sizes, widgetID)
	return f.doc.Clone(), nil
}

func (f *fakeLayouts) Reorder(ctx context.Context, key models.OwnerKey, newOrder []string) (models.LayoutDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reorderCalls = append(f.reorderCalls, append([]string(nil), newOrder...))
	f.doc.WidgetIDs = append([]string(nil), newOrder...)
	return f.doc.Clone(), nil
}

func (f *fakeLayouts) SetSize(ctx context.Context, key models.OwnerKey, widgetID string, size models.SizeLevel) (models.LayoutDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doc.Sizes[widgetID] = size
	return f.doc.Clone(), nil
}

func (f *fakeLayouts) reorders() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.reorderCalls...)
}

type fakeResolver struct {
	widgets map[string]ResolvedWidget
}

func (f *fakeResolver) Resolve(ctx context.Context, owner models.OwnerContext, widgetID string) (ResolvedWidget, error) {
	w, ok := f.widgets[widgetID]
	if !ok {
		return ResolvedWidget{}, errs.NewNotFoundError("widget definition not found: " + widgetID)
	}
	return w, nil
}

type fakeData struct {
	mu      sync.Mutex
	results map[string]dto.WidgetDataResponse
	fails   map[string]error
	started chan string
	release chan struct{}
	blockID string
}

func (f *fakeData) GetWidgetData(ctx context.Context, owner models.OwnerContext, execCtx models.ExecContext, widgetID string) (dto.WidgetDataResponse, error) {
	if f.blockID == widgetID && f.release != nil {
		f.started <- widgetID
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fails[widgetID]; ok {
		return dto.WidgetDataResponse{}, err
	}
	return f.results[widgetID], nil
}

var (
	testOwner = models.OwnerContext{Scope: models.ScopeAdmin, OwnerID: "broker-1"}
	testKey   = models.OwnerKey{Kind: models.DashboardBroker, OwnerID: "broker-1"}
)

func newTestController(layouts layoutStore, resolver definitionResolver, data dataFetcher, debounce time.Duration) *Controller {
	return NewController(layouts, resolver, data, debounce, logger.New("debug", logger.NewTestHandler))
}

func standardResolver() *fakeResolver {
	return &fakeResolver{widgets: map[string]ResolvedWidget{
		"loads-in-transit": {Name: "Loads In Transit", Type: models.WidgetTypeKPI},
		"revenue-trend":    {Name: "Revenue Trend", Type: models.WidgetTypeLineChart},
		"delivery-map":     {Name: "Delivery Map", Type: models.WidgetTypeMap},
		"recent-loads":     {Name: "Recent Loads", Type: models.WidgetTypeTable},
	}}
}

func TestEditModeLifecycle(t *testing.T) {
	c := newTestController(newFakeLayouts(), standardResolver(), &fakeData{}, time.Hour)

	if c.Editing(testKey) {
		t.Fatal("new session should start in viewing mode")
	}
	if err := c.SelectWidget(testKey, "loads-in-transit"); err == nil {
		t.Fatal("selecting while viewing should fail")
	}

	c.EnterEdit(testKey)
	if !c.Editing(testKey) {
		t.Fatal("expected editing mode")
	}
	if err := c.SelectWidget(testKey, "loads-in-transit"); err != nil {
		t.Fatalf("select in edit mode: %v", err)
	}
	if got := c.Selected(testKey); got != "loads-in-transit" {
		t.Fatalf("selected = %q", got)
	}

	c.ExitEdit(testKey)
	if c.Editing(testKey) {
		t.Fatal("expected viewing mode after exit")
	}
	if got := c.Selected(testKey); got != "" {
		t.Fatalf("selection should clear on exit, got %q", got)
	}
}

func TestMutationsRequireEditMode(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("loads-in-transit", "revenue-trend")
	c := newTestController(layouts, standardResolver(), &fakeData{}, time.Hour)

	if _, err := c.RemoveWidget(ctx, testOwner, testKey, "revenue-trend"); err == nil {
		t.Fatal("remove while viewing should fail")
	}
	if _, err := c.ChangeSize(ctx, testOwner, testKey, "revenue-trend", models.SizeLarge); err == nil {
		t.Fatal("resize while viewing should fail")
	}
	req := dto.ReorderRequest{OldIndex: 0, NewIndex: 1}
	if _, err := c.Reorder(ctx, testOwner, testKey, req); err == nil {
		t.Fatal("non-hover reorder while viewing should fail")
	}
	if got := layouts.doc.WidgetIDs; !reflect.DeepEqual(got, []string{"loads-in-transit", "revenue-trend"}) {
		t.Fatalf("layout changed by rejected ops: %v", got)
	}
}

func TestAddWidgetAllowedWhileViewing(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts()
	c := newTestController(layouts, standardResolver(), &fakeData{}, time.Hour)

	view, err := c.AddWidget(ctx, testOwner, testKey, "loads-in-transit")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(view.Widgets) != 1 || view.Widgets[0].WidgetID != "loads-in-transit" {
		t.Fatalf("view widgets = %+v", view.Widgets)
	}

	if _, err := c.AddWidget(ctx, testOwner, testKey, "no-such-widget"); err == nil {
		t.Fatal("adding an unknown widget should fail")
	}
}

func TestChangeSizeClamps(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("loads-in-transit")
	c := newTestController(layouts, standardResolver(), &fakeData{}, time.Hour)
	c.EnterEdit(testKey)

	view, err := c.ChangeSize(ctx, testOwner, testKey, "loads-in-transit", models.SizeWide)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	// loads-in-transit is pinned small.
	if got := view.Widgets[0].Size; got != models.SizeSmall {
		t.Fatalf("size = %d, want %d", got, models.SizeSmall)
	}
	if got := layouts.doc.Sizes["loads-in-transit"]; got != models.SizeSmall {
		t.Fatalf("persisted size = %d", got)
	}
}

func TestReorderInEditModePersistsImmediately(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("loads-in-transit", "revenue-trend", "recent-loads")
	c := newTestController(layouts, standardResolver(), &fakeData{}, time.Hour)
	c.EnterEdit(testKey)

	view, err := c.Reorder(ctx, testOwner, testKey, dto.ReorderRequest{OldIndex: 2, NewIndex: 0})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	want := []string{"recent-loads", "loads-in-transit", "revenue-trend"}
	got := make([]string, 0, len(view.Widgets))
	for _, w := range view.Widgets {
		got = append(got, w.WidgetID)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("view order = %v, want %v", got, want)
	}
	if calls := layouts.reorders(); len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Fatalf("store reorder calls = %v", calls)
	}
}

func TestReorderRejectsOutOfRangeIndex(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("loads-in-transit", "revenue-trend")
	c := newTestController(layouts, standardResolver(), &fakeData{}, time.Hour)
	c.EnterEdit(testKey)

	for _, req := range []dto.ReorderRequest{
		{OldIndex: -1, NewIndex: 0},
		{OldIndex: 0, NewIndex: 2},
		{OldIndex: 5, NewIndex: 0},
	} {
		_, err := c.Reorder(ctx, testOwner, testKey, req)
		var reorderErr *errs.InvalidReorderError
		if !errors.As(err, &reorderErr) {
			t.Fatalf("reorder %+v: err = %v, want InvalidReorderError", req, err)
		}
	}
	if calls := layouts.reorders(); len(calls) != 0 {
		t.Fatalf("rejected reorders reached the store: %v", calls)
	}
}

func TestHoverReorderDebounces(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("loads-in-transit", "revenue-trend", "recent-loads")
	c := newTestController(layouts, standardResolver(), &fakeData{}, 20*time.Millisecond)

	// Two rapid hover moves collapse into one save with the final order.
	if _, err := c.Reorder(ctx, testOwner, testKey, dto.ReorderRequest{OldIndex: 0, NewIndex: 1, Hover: true}); err != nil {
		t.Fatalf("first hover: %v", err)
	}
	if _, err := c.Reorder(ctx, testOwner, testKey, dto.ReorderRequest{OldIndex: 1, NewIndex: 2, Hover: true}); err != nil {
		t.Fatalf("second hover: %v", err)
	}
	if calls := layouts.reorders(); len(calls) != 0 {
		t.Fatalf("save fired before the debounce window: %v", calls)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(layouts.reorders()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("debounced save never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}
	calls := layouts.reorders()
	want := []string{"revenue-trend", "recent-loads", "loads-in-transit"}
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Fatalf("reorder calls = %v, want one call %v", calls, want)
	}
}

func TestHoverReorderRejectedForPointerWidgets(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("delivery-map", "loads-in-transit")
	c := newTestController(layouts, standardResolver(), &fakeData{}, time.Hour)

	_, err := c.Reorder(ctx, testOwner, testKey, dto.ReorderRequest{OldIndex: 0, NewIndex: 1, Hover: true})
	var vErr *errs.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestHoverReorderRejectedInEditMode(t *testing.T) {
	ctx := helpers.TestCtx()
	c := newTestController(newFakeLayouts("loads-in-transit", "recent-loads"), standardResolver(), &fakeData{}, time.Hour)
	c.EnterEdit(testKey)

	if _, err := c.Reorder(ctx, testOwner, testKey, dto.ReorderRequest{OldIndex: 0, NewIndex: 1, Hover: true}); err == nil {
		t.Fatal("hover reorder in edit mode should fail")
	}
}

func TestFlushPendingPersistsBufferedOrder(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("loads-in-transit", "revenue-trend")
	c := newTestController(layouts, standardResolver(), &fakeData{}, time.Hour)

	if _, err := c.Reorder(ctx, testOwner, testKey, dto.ReorderRequest{OldIndex: 0, NewIndex: 1, Hover: true}); err != nil {
		t.Fatalf("hover: %v", err)
	}
	c.FlushPending(testKey)

	calls := layouts.reorders()
	want := []string{"revenue-trend", "loads-in-transit"}
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Fatalf("reorder calls = %v, want one call %v", calls, want)
	}
}

func TestViewSkipsUnresolvableWidgets(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("loads-in-transit", "deleted-widget", "revenue-trend")
	c := newTestController(layouts, standardResolver(), &fakeData{}, time.Hour)

	view, err := c.View(ctx, testOwner, testKey)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Widgets) != 2 {
		t.Fatalf("widgets = %+v, want deleted-widget skipped", view.Widgets)
	}
	// Without a stored override the slot renders at the widget's optimal.
	if got := view.Widgets[1].Size; got != models.SizeWide {
		t.Fatalf("revenue-trend default size = %d, want %d", got, models.SizeWide)
	}
}

func TestFetchDashboardDataIsolatesFailures(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("loads-in-transit", "revenue-trend")
	data := &fakeData{
		results: map[string]dto.WidgetDataResponse{
			"loads-in-transit": {WidgetID: "loads-in-transit", Data: models.WidgetData{Kind: models.DataKindKPI, KPI: &models.KPIData{Value: 12}}},
		},
		fails: map[string]error{
			"revenue-trend": errs.NewDatabaseError("query", "backend unavailable", nil),
		},
	}
	c := newTestController(layouts, standardResolver(), data, time.Hour)

	resp, err := c.FetchDashboardData(ctx, testOwner, models.ExecContext{TenantID: "cust-1"}, testKey)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, ok := resp.Widgets["loads-in-transit"]; !ok {
		t.Fatal("healthy widget missing from response")
	}
	if _, ok := resp.Errors["revenue-trend"]; !ok {
		t.Fatalf("failed widget not reported, errors = %v", resp.Errors)
	}
	if _, ok := resp.Widgets["revenue-trend"]; ok {
		t.Fatal("failed widget should not carry data")
	}
}

func TestFetchDashboardDataLatestRequestWins(t *testing.T) {
	ctx := helpers.TestCtx()
	layouts := newFakeLayouts("revenue-trend")
	data := &fakeData{
		results: map[string]dto.WidgetDataResponse{
			"revenue-trend": {WidgetID: "revenue-trend"},
		},
		blockID: "revenue-trend",
		started: make(chan string, 1),
		release: make(chan struct{}),
	}
	c := newTestController(layouts, standardResolver(), data, time.Hour)

	type result struct {
		resp dto.DashboardDataResponse
		err  error
	}
	first := make(chan result, 1)
	go func() {
		resp, err := c.FetchDashboardData(ctx, testOwner, models.ExecContext{}, testKey)
		first <- result{resp, err}
	}()
	<-data.started

	// A second fetch for the same dashboard supersedes the in-flight one.
	data.blockID = ""
	resp2, err := c.FetchDashboardData(ctx, testOwner, models.ExecContext{}, testKey)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if _, ok := resp2.Widgets["revenue-trend"]; !ok {
		t.Fatal("latest fetch should carry the widget")
	}

	close(data.release)
	r := <-first
	if r.err != nil {
		t.Fatalf("first fetch: %v", r.err)
	}
	if _, ok := r.resp.Widgets["revenue-trend"]; ok {
		t.Fatal("superseded fetch should discard its stale result")
	}
}
