package registry

import "github.com/freightboard/dashboard-api/internal/models"

// Every spec scopes by tenant and date range through dynamic filters; the
// stored spec never carries a tenant or date value of its own.
func scoped(filters ...models.QueryFilter) []models.QueryFilter {
	base := []models.QueryFilter{
		{Field: "customer_id", Operator: "==", IsDynamic: true},
		{Field: "pickup_date", Operator: "between", IsDynamic: true},
	}
	return append(base, filters...)
}

var catalog = []Definition{
	{
		ID:          "loads-in-transit",
		Name:        "Loads In Transit",
		Description: "Count of loads currently moving.",
		Type:        models.WidgetTypeKPI,
		Category:    "operations",
		AccessScope: AccessAll,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Aggregate: models.AggregateCount, Alias: "In Transit"}},
			Filters:    scoped(models.QueryFilter{Field: "status", Operator: "==", Value: "in_transit"}),
		},
	},
	{
		ID:          "open-quotes",
		Name:        "Open Quotes",
		Type:        models.WidgetTypeKPI,
		Category:    "sales",
		AccessScope: AccessAll,
		QuerySpec: models.QuerySpec{
			BaseEntity: "quotes",
			Columns:    []models.QueryColumn{{Aggregate: models.AggregateCount, Alias: "Open Quotes"}},
			Filters:    scoped(models.QueryFilter{Field: "status", Operator: "==", Value: "open"}),
		},
	},
	{
		ID:          "total-revenue",
		Name:        "Total Revenue",
		Description: "Billed revenue for the selected period.",
		Type:        models.WidgetTypeFeaturedKPI,
		Category:    "finance",
		AccessScope: AccessAll,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Field: "retail", Aggregate: models.AggregateSum, Alias: "Revenue"}},
			Filters:    scoped(),
		},
	},
	{
		ID:          "total-margin",
		Name:        "Total Margin",
		Description: "Revenue minus carrier pay for the selected period.",
		Type:        models.WidgetTypeFeaturedKPI,
		Category:    "finance",
		AccessScope: AccessAdmin,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Field: "margin", Aggregate: models.AggregateSum, Alias: "Margin"}},
			Filters:    scoped(),
		},
	},
	{
		ID:          "avg-margin-percent",
		Name:        "Average Margin %",
		Type:        models.WidgetTypeKPI,
		Category:    "finance",
		AccessScope: AccessAdmin,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Field: "margin_percent", Aggregate: models.AggregateAvg, Alias: "Avg Margin %"}},
			Filters:    scoped(),
		},
	},
	{
		ID:          "revenue-trend",
		Name:        "Revenue Trend",
		Description: "Monthly billed revenue.",
		Type:        models.WidgetTypeLineChart,
		Category:    "finance",
		AccessScope: AccessAll,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Field: "retail", Aggregate: models.AggregateSum}},
			GroupBy:    []string{"pickup_month"},
			Filters:    scoped(),
		},
	},
	{
		ID:          "loads-by-carrier",
		Name:        "Loads by Carrier",
		Type:        models.WidgetTypeBarChart,
		Category:    "operations",
		AccessScope: AccessAdmin,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Aggregate: models.AggregateCount}},
			GroupBy:    []string{"carrier"},
			Filters:    scoped(),
		},
	},
	{
		ID:          "revenue-by-customer",
		Name:        "Revenue by Customer",
		Type:        models.WidgetTypeBarChart,
		Category:    "finance",
		AccessScope: AccessAdmin,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Field: "retail", Aggregate: models.AggregateSum}},
			GroupBy:    []string{"customer_name"},
			Filters:    scoped(),
		},
	},
	{
		ID:          "loads-by-equipment",
		Name:        "Loads by Equipment",
		Type:        models.WidgetTypePieChart,
		Category:    "operations",
		AccessScope: AccessAll,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Aggregate: models.AggregateCount}},
			GroupBy:    []string{"equipment"},
			Filters:    scoped(),
		},
	},
	{
		ID:          "recent-loads",
		Name:        "Recent Loads",
		Type:        models.WidgetTypeTable,
		Category:    "operations",
		AccessScope: AccessAll,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns: []models.QueryColumn{
				{Field: "load_number", Alias: "Load #"},
				{Field: "origin_city", Alias: "Origin"},
				{Field: "destination_city", Alias: "Destination"},
				{Field: "status", Alias: "Status"},
				{Field: "pickup_date", Alias: "Pickup"},
				{Field: "retail", Alias: "Revenue"},
			},
			OrderBy: []models.OrderClause{{Field: "pickup_date", Direction: "desc"}},
			Limit:   25,
			Filters: scoped(),
		},
	},
	{
		ID:          "delivery-map",
		Name:        "Delivery Map",
		Description: "Load volume by destination state.",
		Type:        models.WidgetTypeMap,
		Category:    "operations",
		AccessScope: AccessAll,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Aggregate: models.AggregateCount}},
			GroupBy:    []string{"destination_state"},
			Filters:    scoped(),
		},
	},
	{
		ID:          "margin-by-carrier",
		Name:        "Margin by Carrier",
		Type:        models.WidgetTypeBarChart,
		Category:    "finance",
		AccessScope: AccessAdmin,
		QuerySpec: models.QuerySpec{
			BaseEntity: "loads",
			Columns:    []models.QueryColumn{{Field: "margin", Aggregate: models.AggregateSum}},
			GroupBy:    []string{"carrier"},
			Filters:    scoped(),
		},
	},
}
