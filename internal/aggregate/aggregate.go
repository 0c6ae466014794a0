// Package aggregate turns a declarative query spec plus an in-memory row set
// into one of three renderable shapes: KPI scalar, chart series or table
// rows. It is a pure transform: it never fails on malformed data, degrading
// to zero values and empty results instead.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/freightboard/dashboard-api/internal/models"
)

// MaxSeriesLen bounds categorical chart output to keep rendering cost flat.
const MaxSeriesLen = 10

// DefaultTableLimit applies when a table spec declares no limit.
const DefaultTableLimit = 50

// Run aggregates rows per the query spec into the shape the widget type renders.
func Run(spec models.QuerySpec, widgetType models.WidgetType, rows []models.Row) models.WidgetData {
	switch widgetType {
	case models.WidgetTypeKPI, models.WidgetTypeFeaturedKPI:
		return kpi(spec, rows)
	case models.WidgetTypeBarChart, models.WidgetTypePieChart:
		return categoricalChart(spec, rows)
	case models.WidgetTypeLineChart:
		return chronologicalChart(spec, rows)
	case models.WidgetTypeMap:
		// Geo widgets consume grouped counts per location, same shape as a
		// categorical chart.
		return categoricalChart(spec, rows)
	default:
		return table(spec, rows)
	}
}

func kpi(spec models.QuerySpec, rows []models.Row) models.WidgetData {
	col, ok := spec.AggregateColumn()
	if !ok {
		col = models.QueryColumn{Aggregate: models.AggregateCount}
	}

	var value float64
	switch col.Aggregate {
	case models.AggregateCount:
		value = float64(len(rows))
	case models.AggregateSum:
		value = sumField(rows, col.Field)
	case models.AggregateAvg:
		if len(rows) > 0 {
			value = sumField(rows, col.Field) / float64(len(rows))
		}
	}

	return models.WidgetData{
		Kind: models.DataKindKPI,
		KPI: &models.KPIData{
			Value:  value,
			Label:  columnLabel(col),
			Format: kpiFormat(col.Aggregate),
		},
	}
}

func categoricalChart(spec models.QuerySpec, rows []models.Row) models.WidgetData {
	series := groupSeries(spec, rows)

	sort.SliceStable(series, func(i, j int) bool {
		if series[i].Value != series[j].Value {
			return series[i].Value > series[j].Value
		}
		return series[i].Name < series[j].Name
	})
	if len(series) > MaxSeriesLen {
		series = series[:MaxSeriesLen]
	}
	return models.WidgetData{Kind: models.DataKindChart, Chart: &models.ChartData{Series: series}}
}

// chronologicalChart sorts ascending by the group key rather than by value,
// so time buckets come out in order regardless of input row order.
func chronologicalChart(spec models.QuerySpec, rows []models.Row) models.WidgetData {
	series := groupSeries(spec, rows)
	sort.SliceStable(series, func(i, j int) bool { return series[i].Name < series[j].Name })
	return models.WidgetData{Kind: models.DataKindChart, Chart: &models.ChartData{Series: series}}
}

func groupSeries(spec models.QuerySpec, rows []models.Row) []models.SeriesPoint {
	groupField := groupByField(spec)
	col, hasAgg := spec.AggregateColumn()

	totals := make(map[string]float64)
	for _, row := range rows {
		key := stringValue(row[groupField])
		if key == "" {
			key = "Unknown"
		}
		if hasAgg && col.Aggregate == models.AggregateSum {
			totals[key] += coerceFloat(row[col.Field])
		} else {
			totals[key]++
		}
	}

	series := make([]models.SeriesPoint, 0, len(totals))
	for name, value := range totals {
		series = append(series, models.SeriesPoint{Name: name, Value: value})
	}
	return series
}

func table(spec models.QuerySpec, rows []models.Row) models.WidgetData {
	limit := spec.Limit
	if limit <= 0 {
		limit = DefaultTableLimit
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	columns := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		columns[i] = columnLabel(col)
	}

	projected := make([]models.Row, len(rows))
	for i, row := range rows {
		out := make(models.Row, len(spec.Columns))
		for _, col := range spec.Columns {
			out[columnLabel(col)] = row[col.Field]
		}
		projected[i] = out
	}
	return models.WidgetData{Kind: models.DataKindTable, Table: &models.TableData{Columns: columns, Rows: projected}}
}

// --- Helpers ---

func groupByField(spec models.QuerySpec) string {
	if len(spec.GroupBy) > 0 {
		return spec.GroupBy[0]
	}
	for _, col := range spec.Columns {
		if col.Aggregate == "" {
			return col.Field
		}
	}
	return ""
}

func columnLabel(col models.QueryColumn) string {
	if col.Alias != "" {
		return col.Alias
	}
	if col.Field == "" {
		return string(col.Aggregate)
	}
	return col.Field
}

func kpiFormat(agg models.Aggregate) string {
	if agg == models.AggregateCount {
		return "number"
	}
	// Summed and averaged freight fields are overwhelmingly monetary.
	return "currency"
}

func sumField(rows []models.Row, field string) float64 {
	var total float64
	for _, row := range rows {
		total += coerceFloat(row[field])
	}
	return total
}

// coerceFloat parses the raw value as a number; anything unparseable counts
// as 0 so a single bad row never poisons an aggregate.
func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(n, "$"))
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}
