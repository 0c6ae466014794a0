package fieldpolicy

import (
	"testing"

	"github.com/freightboard/dashboard-api/internal/models"
)

func TestRestricted(t *testing.T) {
	for _, field := range []string{"cost", "Margin", "MARGIN_PERCENT", " carrier_pay ", "buy_rate", "target_rate"} {
		if !Restricted(field) {
			t.Errorf("%q should be restricted", field)
		}
	}
	for _, field := range []string{"retail", "carrier", "load_number", "pickup_date", ""} {
		if Restricted(field) {
			t.Errorf("%q should not be restricted", field)
		}
	}
}

func TestStripRemovesEveryOccurrence(t *testing.T) {
	spec := models.QuerySpec{
		BaseEntity: "loads",
		Columns: []models.QueryColumn{
			{Field: "carrier"},
			{Field: "margin", Aggregate: models.AggregateSum},
			{Field: "retail", Aggregate: models.AggregateSum},
			{Field: "carrier_pay"},
		},
		GroupBy: []string{"margin_percent", "carrier"},
		Filters: []models.QueryFilter{
			{Field: "cost", Operator: ">", Value: 100},
			{Field: "status", Operator: "==", Value: "delivered"},
		},
		OrderBy: []models.OrderClause{
			{Field: "buy_rate", Direction: "desc"},
			{Field: "retail", Direction: "desc"},
		},
	}

	got := Strip(spec)

	if References(got) {
		t.Fatalf("stripped spec still references a restricted field: %+v", got)
	}
	if len(got.Columns) != 2 || got.Columns[0].Field != "carrier" || got.Columns[1].Field != "retail" {
		t.Errorf("columns: got %+v", got.Columns)
	}
	if len(got.GroupBy) != 1 || got.GroupBy[0] != "carrier" {
		t.Errorf("groupBy: got %+v", got.GroupBy)
	}
	if len(got.Filters) != 1 || got.Filters[0].Field != "status" {
		t.Errorf("filters: got %+v", got.Filters)
	}
	if len(got.OrderBy) != 1 || got.OrderBy[0].Field != "retail" {
		t.Errorf("orderBy: got %+v", got.OrderBy)
	}

	// Input spec untouched.
	if len(spec.Columns) != 4 {
		t.Error("Strip mutated its input")
	}
}

func TestStripCleanSpecIsUnchanged(t *testing.T) {
	spec := models.QuerySpec{
		BaseEntity: "loads",
		Columns:    []models.QueryColumn{{Field: "retail", Aggregate: models.AggregateSum}},
		GroupBy:    []string{"carrier"},
	}
	got := Strip(spec)
	if len(got.Columns) != 1 || len(got.GroupBy) != 1 {
		t.Errorf("clean spec narrowed unexpectedly: %+v", got)
	}
}
