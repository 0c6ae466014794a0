package models

// WidgetType determines a widget's default size constraints and which
// aggregation shape its query produces.
type WidgetType string

const (
	WidgetTypeKPI         WidgetType = "kpi"
	WidgetTypeFeaturedKPI WidgetType = "featured_kpi"
	WidgetTypeLineChart   WidgetType = "line_chart"
	WidgetTypeBarChart    WidgetType = "bar_chart"
	WidgetTypePieChart    WidgetType = "pie_chart"
	WidgetTypeTable       WidgetType = "table"
	WidgetTypeMap         WidgetType = "map"
	WidgetTypeAIReport    WidgetType = "ai_report"
)

// WidgetTypes lists every known type in catalog display order.
var WidgetTypes = []WidgetType{
	WidgetTypeKPI,
	WidgetTypeFeaturedKPI,
	WidgetTypeLineChart,
	WidgetTypeBarChart,
	WidgetTypePieChart,
	WidgetTypeTable,
	WidgetTypeMap,
	WidgetTypeAIReport,
}

// Valid reports whether t is one of the known widget types.
func (t WidgetType) Valid() bool {
	for _, known := range WidgetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PointerDriven reports whether the widget type owns its own pointer gestures
// (map pan/zoom, report scrolling). Such widgets are excluded from hover
// reordering.
func (t WidgetType) PointerDriven() bool {
	return t == WidgetTypeMap || t == WidgetTypeAIReport
}

type Aggregate string

const (
	AggregateCount Aggregate = "count"
	AggregateSum   Aggregate = "sum"
	AggregateAvg   Aggregate = "avg"
)

// QueryColumn selects a field, optionally renamed and optionally aggregated.
type QueryColumn struct {
	Field     string    `firestore:"field" json:"field"`
	Alias     string    `firestore:"alias,omitempty" json:"alias,omitempty"`
	Aggregate Aggregate `firestore:"aggregate,omitempty" json:"aggregate,omitempty"`
}

// QueryFilter narrows the row set. Dynamic filters carry no stored value;
// they are satisfied from the execution context (tenant, date range) so a
// stale scope can never be baked into a persisted spec.
type QueryFilter struct {
	Field     string `firestore:"field" json:"field"`
	Operator  string `firestore:"operator" json:"operator"`
	Value     any    `firestore:"value,omitempty" json:"value,omitempty"`
	IsDynamic bool   `firestore:"isDynamic" json:"isDynamic"`
}

type OrderClause struct {
	Field     string `firestore:"field" json:"field"`
	Direction string `firestore:"direction" json:"direction"` // "asc" or "desc"
}

// QuerySpec is the declarative description of the data a widget needs: base
// entity, projected columns, filters, grouping and ordering. Built-in and
// user-authored widgets both execute through the same spec, so there is one
// auditable pipeline instead of per-widget imperative code.
type QuerySpec struct {
	BaseEntity string        `firestore:"baseEntity" json:"baseEntity"`
	Columns    []QueryColumn `firestore:"columns" json:"columns"`
	Filters    []QueryFilter `firestore:"filters,omitempty" json:"filters,omitempty"`
	GroupBy    []string      `firestore:"groupBy,omitempty" json:"groupBy,omitempty"`
	OrderBy    []OrderClause `firestore:"orderBy,omitempty" json:"orderBy,omitempty"`
	Limit      int           `firestore:"limit,omitempty" json:"limit,omitempty"`
}

// AggregateColumn returns the first aggregated column, if any. A KPI spec is
// driven by at most one aggregate.
func (q QuerySpec) AggregateColumn() (QueryColumn, bool) {
	for _, c := range q.Columns {
		if c.Aggregate != "" {
			return c, true
		}
	}
	return QueryColumn{}, false
}

// Row is one record handed back by the row source.
type Row map[string]any

// DateRange bounds an aggregation window. Dates use the YYYY-MM-DD layout.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ExecContext is the immutable per-call context substituted into dynamic
// filters. Passed explicitly rather than read from ambient state so tenant
// scoping never lives in module globals.
type ExecContext struct {
	TenantID  string
	DateRange DateRange
}
