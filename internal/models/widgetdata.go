package models

// WidgetDataKind discriminates the three renderable shapes the aggregation
// pipeline can produce.
type WidgetDataKind string

const (
	DataKindKPI   WidgetDataKind = "kpi"
	DataKindChart WidgetDataKind = "chart"
	DataKindTable WidgetDataKind = "table"
)

// SeriesPoint is one named value in a chart series.
type SeriesPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// KPIData is a single scalar with presentation hints.
type KPIData struct {
	Value  float64 `json:"value"`
	Label  string  `json:"label"`
	Format string  `json:"format,omitempty"` // "currency", "number", "percent"
}

// ChartData is an ordered categorical or chronological series.
type ChartData struct {
	Series []SeriesPoint `json:"series"`
}

// TableData is a projected, ordered, truncated row set.
type TableData struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// WidgetData is the aggregation engine's output. Exactly one of KPI, Chart
// and Table is populated, selected by Kind; consumers must not look at the
// other variants.
type WidgetData struct {
	Kind  WidgetDataKind `json:"kind"`
	KPI   *KPIData       `json:"kpi,omitempty"`
	Chart *ChartData     `json:"chart,omitempty"`
	Table *TableData     `json:"table,omitempty"`
}

// Empty reports whether the active variant carries no data at all. The
// presentation layer uses this to show a "no data" state; the engine itself
// never fails on an empty row set.
func (d WidgetData) Empty() bool {
	switch d.Kind {
	case DataKindChart:
		return d.Chart == nil || len(d.Chart.Series) == 0
	case DataKindTable:
		return d.Table == nil || len(d.Table.Rows) == 0
	default:
		return d.KPI == nil
	}
}
