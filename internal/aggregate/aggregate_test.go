package aggregate

import (
	"testing"

	"github.com/freightboard/dashboard-api/internal/models"
)

func kpiSpec(agg models.Aggregate, field string) models.QuerySpec {
	return models.QuerySpec{
		BaseEntity: "loads",
		Columns:    []models.QueryColumn{{Field: field, Aggregate: agg}},
	}
}

func TestKPICount(t *testing.T) {
	rows := []models.Row{{"status": "delivered"}, {"status": "in_transit"}, {"status": "delivered"}}
	got := Run(kpiSpec(models.AggregateCount, ""), models.WidgetTypeKPI, rows)
	if got.Kind != models.DataKindKPI || got.KPI == nil {
		t.Fatalf("want kpi variant, got %+v", got)
	}
	if got.KPI.Value != 3 {
		t.Errorf("count: got %v, want 3", got.KPI.Value)
	}
	if got.Chart != nil || got.Table != nil {
		t.Error("inactive variants must stay nil")
	}
}

func TestKPISumCoercesBadValuesToZero(t *testing.T) {
	rows := []models.Row{
		{"retail": "1200.50"},
		{"retail": "not-a-number"},
		{"retail": 799.5},
		{"retail": nil},
	}
	got := Run(kpiSpec(models.AggregateSum, "retail"), models.WidgetTypeKPI, rows)
	if got.KPI.Value != 2000 {
		t.Errorf("sum: got %v, want 2000", got.KPI.Value)
	}
}

func TestKPIAvgEmptyRowsIsZero(t *testing.T) {
	got := Run(kpiSpec(models.AggregateAvg, "retail"), models.WidgetTypeFeaturedKPI, nil)
	if got.KPI.Value != 0 {
		t.Errorf("avg over no rows: got %v, want 0", got.KPI.Value)
	}
}

func TestKPIAvg(t *testing.T) {
	rows := []models.Row{{"margin_percent": 10.0}, {"margin_percent": 20.0}}
	got := Run(kpiSpec(models.AggregateAvg, "margin_percent"), models.WidgetTypeKPI, rows)
	if got.KPI.Value != 15 {
		t.Errorf("avg: got %v, want 15", got.KPI.Value)
	}
}

func TestBarChartGroupsAndCoerces(t *testing.T) {
	spec := models.QuerySpec{
		BaseEntity: "loads",
		Columns:    []models.QueryColumn{{Field: "retail", Aggregate: models.AggregateSum}},
		GroupBy:    []string{"carrier"},
	}
	rows := []models.Row{
		{"carrier": "A", "retail": "10"},
		{"carrier": "A", "retail": "bad"},
		{"carrier": "B", "retail": "5"},
	}
	got := Run(spec, models.WidgetTypeBarChart, rows)
	if got.Kind != models.DataKindChart {
		t.Fatalf("want chart variant, got %s", got.Kind)
	}
	series := got.Chart.Series
	if len(series) != 2 {
		t.Fatalf("got %d series points, want 2", len(series))
	}
	// Malformed value coerced to 0 inside its group, not dropped from it.
	if series[0].Name != "A" || series[0].Value != 10 {
		t.Errorf("series[0]: got %+v, want {A 10}", series[0])
	}
	if series[1].Name != "B" || series[1].Value != 5 {
		t.Errorf("series[1]: got %+v, want {B 5}", series[1])
	}
}

func TestPieChartMissingCategoryBecomesUnknown(t *testing.T) {
	spec := models.QuerySpec{
		BaseEntity: "loads",
		Columns:    []models.QueryColumn{{Aggregate: models.AggregateCount}},
		GroupBy:    []string{"equipment"},
	}
	rows := []models.Row{
		{"equipment": "van"},
		{"equipment": nil},
		{},
	}
	got := Run(spec, models.WidgetTypePieChart, rows)
	var unknown float64
	for _, p := range got.Chart.Series {
		if p.Name == "Unknown" {
			unknown = p.Value
		}
	}
	if unknown != 2 {
		t.Errorf("Unknown bucket: got %v, want 2", unknown)
	}
}

func TestBarChartSortsDescendingAndTruncates(t *testing.T) {
	spec := models.QuerySpec{
		Columns: []models.QueryColumn{{Aggregate: models.AggregateCount}},
		GroupBy: []string{"state"},
	}
	states := []string{"TX", "CA", "GA", "IL", "OH", "FL", "NC", "PA", "TN", "MO", "AZ", "WA"}
	var rows []models.Row
	for i, state := range states {
		for range i + 1 {
			rows = append(rows, models.Row{"state": state})
		}
	}
	got := Run(spec, models.WidgetTypeBarChart, rows)
	series := got.Chart.Series
	if len(series) != MaxSeriesLen {
		t.Fatalf("got %d points, want truncation to %d", len(series), MaxSeriesLen)
	}
	for i := 1; i < len(series); i++ {
		if series[i].Value > series[i-1].Value {
			t.Fatalf("series not sorted descending at %d: %+v", i, series)
		}
	}
	if series[0].Name != "WA" || series[0].Value != 12 {
		t.Errorf("top point: got %+v, want {WA 12}", series[0])
	}
}

func TestLineChartSortsAscendingByGroupKey(t *testing.T) {
	spec := models.QuerySpec{
		Columns: []models.QueryColumn{{Field: "retail", Aggregate: models.AggregateSum}},
		GroupBy: []string{"month"},
	}
	rows := []models.Row{
		{"month": "2026-03", "retail": 30},
		{"month": "2026-01", "retail": 10},
		{"month": "2026-02", "retail": 50},
	}
	got := Run(spec, models.WidgetTypeLineChart, rows)
	want := []models.SeriesPoint{
		{Name: "2026-01", Value: 10},
		{Name: "2026-02", Value: 50},
		{Name: "2026-03", Value: 30},
	}
	if len(got.Chart.Series) != len(want) {
		t.Fatalf("got %d points, want %d", len(got.Chart.Series), len(want))
	}
	for i, p := range got.Chart.Series {
		if p != want[i] {
			t.Errorf("point %d: got %+v, want %+v", i, p, want[i])
		}
	}
}

func TestTableProjectsDeclaredColumnsInOrder(t *testing.T) {
	spec := models.QuerySpec{
		BaseEntity: "loads",
		Columns: []models.QueryColumn{
			{Field: "load_number", Alias: "Load #"},
			{Field: "carrier"},
			{Field: "retail"},
		},
		Limit: 2,
	}
	rows := []models.Row{
		{"load_number": "L-100", "carrier": "A", "retail": 10, "cost": 8},
		{"load_number": "L-101", "carrier": "B", "retail": 5, "cost": 4},
		{"load_number": "L-102", "carrier": "C", "retail": 7, "cost": 6},
	}
	got := Run(spec, models.WidgetTypeTable, rows)
	if got.Kind != models.DataKindTable {
		t.Fatalf("want table variant, got %s", got.Kind)
	}
	wantColumns := []string{"Load #", "carrier", "retail"}
	for i, c := range got.Table.Columns {
		if c != wantColumns[i] {
			t.Errorf("column %d: got %q, want %q", i, c, wantColumns[i])
		}
	}
	if len(got.Table.Rows) != 2 {
		t.Fatalf("limit not applied: got %d rows", len(got.Table.Rows))
	}
	if _, leaked := got.Table.Rows[0]["cost"]; leaked {
		t.Error("undeclared column leaked into projection")
	}
	if got.Table.Rows[0]["Load #"] != "L-100" {
		t.Errorf("alias projection: got %v", got.Table.Rows[0]["Load #"])
	}
}

func TestTableDefaultLimit(t *testing.T) {
	spec := models.QuerySpec{Columns: []models.QueryColumn{{Field: "carrier"}}}
	rows := make([]models.Row, DefaultTableLimit+25)
	for i := range rows {
		rows[i] = models.Row{"carrier": "X"}
	}
	got := Run(spec, models.WidgetTypeTable, rows)
	if len(got.Table.Rows) != DefaultTableLimit {
		t.Errorf("got %d rows, want default limit %d", len(got.Table.Rows), DefaultTableLimit)
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"1200.50", 1200.5},
		{"$1,200.50", 1200.5},
		{" 42 ", 42},
		{"garbage", 0},
		{nil, 0},
		{true, 0},
		{int64(7), 7},
		{float32(1.5), 1.5},
	}
	for _, tt := range tests {
		if got := coerceFloat(tt.in); got != tt.want {
			t.Errorf("coerceFloat(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}
