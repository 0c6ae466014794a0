package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/pkg/helpers"
)

type fakeRowSource struct {
	rows        []models.Row
	err         error
	calls       int
	lastEntity  string
	lastFilters []models.QueryFilter
}

func (f *fakeRowSource) Query(ctx context.Context, execCtx models.ExecContext, entity string, filters []models.QueryFilter) ([]models.Row, error) {
	f.calls++
	f.lastEntity = entity
	f.lastFilters = filters
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeCustomReader struct {
	defs map[string]*models.CustomWidgetDefinition
}

func (f *fakeCustomReader) Get(ctx context.Context, owner models.OwnerContext, widgetID string) (*models.CustomWidgetDefinition, error) {
	if def, ok := f.defs[widgetID]; ok {
		return def, nil
	}
	return nil, errs.NewNotFoundError("widget not found: " + widgetID)
}

var testExec = models.ExecContext{
	TenantID:  "cust-1",
	DateRange: models.DateRange{From: "2026-01-01", To: "2026-01-31"},
}

func TestGetWidgetDataBuiltIn(t *testing.T) {
	ctx := helpers.TestCtx()
	rows := &fakeRowSource{rows: []models.Row{{"id": "L1"}, {"id": "L2"}}}
	svc := NewDataService(rows, &fakeCustomReader{}, time.Minute)

	resp, err := svc.GetWidgetData(ctx, adminOwner, testExec, "loads-in-transit")
	if err != nil {
		t.Fatalf("get data: %v", err)
	}
	if rows.lastEntity != "loads" {
		t.Fatalf("entity = %q", rows.lastEntity)
	}
	if resp.Data.Kind != models.DataKindKPI {
		t.Fatalf("kind = %q", resp.Data.Kind)
	}
	if resp.Data.KPI.Value != 2 {
		t.Fatalf("kpi value = %v, want 2", resp.Data.KPI.Value)
	}
	if resp.Frozen {
		t.Fatal("live widget reported frozen")
	}
}

func TestGetWidgetDataAdminGatedForRestrictedScope(t *testing.T) {
	ctx := helpers.TestCtx()
	svc := NewDataService(&fakeRowSource{}, &fakeCustomReader{}, time.Minute)

	// total-margin is admin-only; to a customer it does not exist at all.
	_, err := svc.GetWidgetData(ctx, customerOwner, testExec, "total-margin")
	var nfErr *errs.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestGetWidgetDataFrozenSnapshot(t *testing.T) {
	ctx := helpers.TestCtx()
	rows := &fakeRowSource{}
	snapshot := models.WidgetData{
		Kind: models.DataKindKPI,
		KPI:  &models.KPIData{Value: 480000, Label: "Q4 Revenue", Format: "currency"},
	}
	reader := &fakeCustomReader{defs: map[string]*models.CustomWidgetDefinition{
		"q4-report": {
			ID:             "q4-report",
			Type:           models.WidgetTypeKPI,
			StaticSnapshot: &snapshot,
		},
	}}
	svc := NewDataService(rows, reader, time.Minute)

	resp, err := svc.GetWidgetData(ctx, adminOwner, testExec, "q4-report")
	if err != nil {
		t.Fatalf("get data: %v", err)
	}
	if !resp.Frozen {
		t.Fatal("snapshot widget should report frozen")
	}
	if resp.Data.KPI.Value != 480000 {
		t.Fatalf("kpi value = %v", resp.Data.KPI.Value)
	}
	if rows.calls != 0 {
		t.Fatalf("frozen widget executed a query, calls = %d", rows.calls)
	}
}

func TestGetWidgetDataStripsRestrictedSpecAtExecution(t *testing.T) {
	ctx := helpers.TestCtx()
	rows := &fakeRowSource{rows: []models.Row{{"lane": "CHI-ATL", "retail_rate": 1200.0}}}
	// A customer-scope document written before the policy covered margin.
	reader := &fakeCustomReader{defs: map[string]*models.CustomWidgetDefinition{
		"legacy": {
			ID:   "legacy",
			Type: models.WidgetTypeTable,
			QuerySpec: models.QuerySpec{
				BaseEntity: "loads",
				Columns: []models.QueryColumn{
					{Field: "lane"},
					{Field: "margin"},
				},
				Filters: []models.QueryFilter{
					{Field: "margin_percent", Operator: ">", Value: 15},
				},
			},
		},
	}}
	svc := NewDataService(rows, reader, time.Minute)

	resp, err := svc.GetWidgetData(ctx, customerOwner, testExec, "legacy")
	if err != nil {
		t.Fatalf("get data: %v", err)
	}
	for _, f := range rows.lastFilters {
		if f.Field == "margin_percent" {
			t.Fatal("restricted filter reached the row source")
		}
	}
	if len(resp.Data.Table.Columns) != 1 || resp.Data.Table.Columns[0] != "lane" {
		t.Fatalf("table columns = %v", resp.Data.Table.Columns)
	}
}

func TestGetWidgetDataCachesPerContext(t *testing.T) {
	ctx := helpers.TestCtx()
	rows := &fakeRowSource{rows: []models.Row{{"id": "L1"}}}
	svc := NewDataService(rows, &fakeCustomReader{}, time.Minute)

	if _, err := svc.GetWidgetData(ctx, adminOwner, testExec, "loads-in-transit"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.GetWidgetData(ctx, adminOwner, testExec, "loads-in-transit"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if rows.calls != 1 {
		t.Fatalf("row source calls = %d, want 1 (second served from cache)", rows.calls)
	}

	// A different date range is a different cache entry.
	other := testExec
	other.DateRange.To = "2026-02-28"
	if _, err := svc.GetWidgetData(ctx, adminOwner, other, "loads-in-transit"); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if rows.calls != 2 {
		t.Fatalf("row source calls = %d, want 2", rows.calls)
	}
}

func TestGetWidgetDataEmptyResultNotCached(t *testing.T) {
	ctx := helpers.TestCtx()
	rows := &fakeRowSource{} // no rows yet: the chart comes back with no series
	svc := NewDataService(rows, &fakeCustomReader{}, time.Minute)

	if _, err := svc.GetWidgetData(ctx, adminOwner, testExec, "revenue-trend"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.GetWidgetData(ctx, adminOwner, testExec, "revenue-trend"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if rows.calls != 2 {
		t.Fatalf("row source calls = %d, want 2 (empty result must not be pinned)", rows.calls)
	}

	// Once rows land the result is cached as usual.
	rows.rows = []models.Row{{"pickup_month": "2026-01", "retail": 900.0}}
	if _, err := svc.GetWidgetData(ctx, adminOwner, testExec, "revenue-trend"); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if _, err := svc.GetWidgetData(ctx, adminOwner, testExec, "revenue-trend"); err != nil {
		t.Fatalf("fourth call: %v", err)
	}
	if rows.calls != 3 {
		t.Fatalf("row source calls = %d, want 3 (populated result cached)", rows.calls)
	}
}

func TestGetWidgetDataQueryFailure(t *testing.T) {
	ctx := helpers.TestCtx()
	rows := &fakeRowSource{err: errs.NewDatabaseError("query", "backend unavailable", nil)}
	svc := NewDataService(rows, &fakeCustomReader{}, time.Minute)

	_, err := svc.GetWidgetData(ctx, adminOwner, testExec, "loads-in-transit")
	var dbErr *errs.DatabaseError
	if !errors.As(err, &dbErr) {
		t.Fatalf("err = %v, want DatabaseError", err)
	}
}
