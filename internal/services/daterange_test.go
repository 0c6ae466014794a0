package services

import (
	"testing"
	"time"

	"github.com/freightboard/dashboard-api/internal/models"
)

func TestResolveDateRangePresets(t *testing.T) {
	// Mid-quarter reference date.
	now := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		preset string
		want   models.DateRange
	}{
		{DateRangeThisMonth, models.DateRange{From: "2026-08-01", To: "2026-08-15"}},
		{DateRangeLastMonth, models.DateRange{From: "2026-07-01", To: "2026-07-31"}},
		{DateRangeThisQuarter, models.DateRange{From: "2026-07-01", To: "2026-08-15"}},
		{DateRangeLastQuarter, models.DateRange{From: "2026-04-01", To: "2026-06-30"}},
		{DateRangeThisYear, models.DateRange{From: "2026-01-01", To: "2026-08-15"}},
		{DateRangeLastYear, models.DateRange{From: "2025-01-01", To: "2025-12-31"}},
	}
	for _, tc := range cases {
		t.Run(tc.preset, func(t *testing.T) {
			got, err := ResolveDateRange(tc.preset, "", "", now)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestResolveDateRangeJanuaryEdges(t *testing.T) {
	now := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)

	lastMonth, err := ResolveDateRange(DateRangeLastMonth, "", "", now)
	if err != nil {
		t.Fatalf("last month: %v", err)
	}
	if lastMonth.From != "2025-12-01" || lastMonth.To != "2025-12-31" {
		t.Fatalf("last month = %+v", lastMonth)
	}

	lastQuarter, err := ResolveDateRange(DateRangeLastQuarter, "", "", now)
	if err != nil {
		t.Fatalf("last quarter: %v", err)
	}
	if lastQuarter.From != "2025-10-01" || lastQuarter.To != "2025-12-31" {
		t.Fatalf("last quarter = %+v", lastQuarter)
	}
}

func TestResolveDateRangeExplicitAndDefaults(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	got, err := ResolveDateRange("", "2026-02-01", "2026-02-28", now)
	if err != nil {
		t.Fatalf("explicit: %v", err)
	}
	if got.From != "2026-02-01" || got.To != "2026-02-28" {
		t.Fatalf("explicit = %+v", got)
	}

	// Nothing supplied falls back to this month.
	got, err = ResolveDateRange("", "", "", now)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if got.From != "2026-08-01" || got.To != "2026-08-15" {
		t.Fatalf("default = %+v", got)
	}

	for _, bad := range [][2]string{{"2026-02-01", ""}, {"", "2026-02-28"}, {"02/01/2026", "2026-02-28"}} {
		if _, err := ResolveDateRange("", bad[0], bad[1], now); err == nil {
			t.Fatalf("from=%q to=%q should fail", bad[0], bad[1])
		}
	}

	if _, err := ResolveDateRange("fortnight", "", "", now); err == nil {
		t.Fatal("unknown preset should fail")
	}
}
