// Package fieldpolicy enforces the deny-list of internal financial fields
// that restricted scopes must never query, group by or display. Stripping is
// silent: a save from a restricted scope still succeeds with the narrowed
// spec.
package fieldpolicy

import (
	"strings"

	"github.com/freightboard/dashboard-api/internal/models"
)

// restrictedFields are internal cost/margin figures. Matching is
// case-insensitive on the normalized field name.
var restrictedFields = map[string]struct{}{
	"cost":           {},
	"margin":         {},
	"margin_percent": {},
	"carrier_pay":    {},
	"buy_rate":       {},
	"target_rate":    {},
	"carrier_rate":   {},
}

// Restricted reports whether the field is on the deny-list.
func Restricted(field string) bool {
	_, ok := restrictedFields[strings.ToLower(strings.TrimSpace(field))]
	return ok
}

// Strip removes every reference to a restricted field from the spec's
// columns, group-bys, filters and order clauses. It returns a narrowed copy;
// the input is not mutated.
func Strip(spec models.QuerySpec) models.QuerySpec {
	out := spec

	out.Columns = make([]models.QueryColumn, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		if Restricted(col.Field) {
			continue
		}
		out.Columns = append(out.Columns, col)
	}

	out.GroupBy = make([]string, 0, len(spec.GroupBy))
	for _, g := range spec.GroupBy {
		if Restricted(g) {
			continue
		}
		out.GroupBy = append(out.GroupBy, g)
	}

	out.Filters = make([]models.QueryFilter, 0, len(spec.Filters))
	for _, f := range spec.Filters {
		if Restricted(f.Field) {
			continue
		}
		out.Filters = append(out.Filters, f)
	}

	out.OrderBy = make([]models.OrderClause, 0, len(spec.OrderBy))
	for _, o := range spec.OrderBy {
		if Restricted(o.Field) {
			continue
		}
		out.OrderBy = append(out.OrderBy, o)
	}

	return out
}

// References reports whether the spec mentions any restricted field in any
// position. Used defensively at query-execution time.
func References(spec models.QuerySpec) bool {
	for _, col := range spec.Columns {
		if Restricted(col.Field) {
			return true
		}
	}
	for _, g := range spec.GroupBy {
		if Restricted(g) {
			return true
		}
	}
	for _, f := range spec.Filters {
		if Restricted(f.Field) {
			return true
		}
	}
	for _, o := range spec.OrderBy {
		if Restricted(o.Field) {
			return true
		}
	}
	return false
}
