package services

import (
	"time"

	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/models"
)

const dateLayout = "2006-01-02"

const (
	DateRangeThisMonth   = "thisMonth"
	DateRangeLastMonth   = "lastMonth"
	DateRangeThisQuarter = "thisQuarter"
	DateRangeLastQuarter = "lastQuarter"
	DateRangeThisYear    = "thisYear"
	DateRangeLastYear    = "lastYear"
)

// ResolveDateRange turns a named preset, or an explicit from/to pair, into a
// concrete range. With no preset and no bounds the default is this month.
func ResolveDateRange(preset, from, to string, now time.Time) (models.DateRange, error) {
	if preset != "" {
		return resolvePreset(preset, now)
	}
	if from == "" && to == "" {
		return resolvePreset(DateRangeThisMonth, now)
	}
	if from == "" || to == "" {
		return models.DateRange{}, errs.NewValidationError("date range requires either a preset or both from and to")
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return models.DateRange{}, errs.NewValidationError("invalid date: " + d)
		}
	}
	return models.DateRange{From: from, To: to}, nil
}

func resolvePreset(preset string, now time.Time) (models.DateRange, error) {
	today := now.Format(dateLayout)
	switch preset {
	case DateRangeThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return models.DateRange{From: first.Format(dateLayout), To: today}, nil
	case DateRangeLastMonth:
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		lastOfPrev := firstOfMonth.AddDate(0, 0, -1)
		firstOfPrev := time.Date(lastOfPrev.Year(), lastOfPrev.Month(), 1, 0, 0, 0, 0, now.Location())
		return models.DateRange{From: firstOfPrev.Format(dateLayout), To: lastOfPrev.Format(dateLayout)}, nil
	case DateRangeThisQuarter:
		return models.DateRange{From: firstOfQuarter(now).Format(dateLayout), To: today}, nil
	case DateRangeLastQuarter:
		first, last := prevQuarter(now)
		return models.DateRange{From: first.Format(dateLayout), To: last.Format(dateLayout)}, nil
	case DateRangeThisYear:
		jan1 := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return models.DateRange{From: jan1.Format(dateLayout), To: today}, nil
	case DateRangeLastYear:
		return models.DateRange{
			From: time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout),
			To:   time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, now.Location()).Format(dateLayout),
		}, nil
	}
	return models.DateRange{}, errs.NewValidationError("unknown date range preset: " + preset)
}

func firstOfQuarter(t time.Time) time.Time {
	m := int(t.Month())
	qStart := ((m-1)/3)*3 + 1
	return time.Date(t.Year(), time.Month(qStart), 1, 0, 0, 0, 0, t.Location())
}

func prevQuarter(t time.Time) (first, last time.Time) {
	thisFirst := firstOfQuarter(t)
	last = thisFirst.AddDate(0, 0, -1)
	first = firstOfQuarter(last)
	return
}
