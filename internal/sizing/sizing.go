// Package sizing resolves layout size constraints for widgets. Constraints
// are data, not scattered conditionals: a per-type default table plus a
// narrow per-id override table. All functions are pure and total; invalid
// input is clamped, never rejected.
package sizing

import "github.com/freightboard/dashboard-api/internal/models"

// Constraint bounds the size levels a widget may occupy.
type Constraint struct {
	Min       models.SizeLevel `json:"minSize"`
	Max       models.SizeLevel `json:"maxSize"`
	Optimal   models.SizeLevel `json:"optimalSize"`
	MinHeight int              `json:"minHeight"` // pixels
}

// typeDefaults has an entry for every WidgetType. A missing entry is a
// defect, not a runtime error; For falls back to the KPI default.
var typeDefaults = map[models.WidgetType]Constraint{
	models.WidgetTypeKPI:         {Min: models.SizeSmall, Max: models.SizeMedium, Optimal: models.SizeSmall, MinHeight: 120},
	models.WidgetTypeFeaturedKPI: {Min: models.SizeMedium, Max: models.SizeLarge, Optimal: models.SizeMedium, MinHeight: 160},
	models.WidgetTypeLineChart:   {Min: models.SizeMedium, Max: models.SizeWide, Optimal: models.SizeLarge, MinHeight: 280},
	models.WidgetTypeBarChart:    {Min: models.SizeMedium, Max: models.SizeWide, Optimal: models.SizeLarge, MinHeight: 280},
	models.WidgetTypePieChart:    {Min: models.SizeSmall, Max: models.SizeLarge, Optimal: models.SizeMedium, MinHeight: 260},
	models.WidgetTypeTable:       {Min: models.SizeMedium, Max: models.SizeWide, Optimal: models.SizeWide, MinHeight: 320},
	// Geo widgets need width to stay legible.
	models.WidgetTypeMap:      {Min: models.SizeLarge, Max: models.SizeWide, Optimal: models.SizeWide, MinHeight: 400},
	models.WidgetTypeAIReport: {Min: models.SizeMedium, Max: models.SizeWide, Optimal: models.SizeLarge, MinHeight: 300},
}

// idOverrides narrows or widens the type default for specific widget ids.
var idOverrides = map[string]Constraint{
	// The revenue trend is the dashboard centerpiece; never let it shrink
	// below large.
	"revenue-trend": {Min: models.SizeLarge, Max: models.SizeWide, Optimal: models.SizeWide, MinHeight: 320},
	// Compact single-number tiles that stay small.
	"loads-in-transit": {Min: models.SizeSmall, Max: models.SizeSmall, Optimal: models.SizeSmall, MinHeight: 120},
	"open-quotes":      {Min: models.SizeSmall, Max: models.SizeSmall, Optimal: models.SizeSmall, MinHeight: 120},
}

// kpiFallback is the most restrictive default, used when a type somehow has
// no table entry.
var kpiFallback = typeDefaults[models.WidgetTypeKPI]

// For resolves the constraint for a (widgetID, widgetType) pair: type default
// first, then the per-id override if one exists.
func For(widgetID string, widgetType models.WidgetType) Constraint {
	c, ok := typeDefaults[widgetType]
	if !ok {
		c = kpiFallback
	}
	if override, ok := idOverrides[widgetID]; ok {
		c = override
	}
	return c
}

// Clamp forces size into the resolved [min, max] range.
func Clamp(size models.SizeLevel, widgetID string, widgetType models.WidgetType) models.SizeLevel {
	c := For(widgetID, widgetType)
	if size < c.Min {
		return c.Min
	}
	if size > c.Max {
		return c.Max
	}
	return size
}

// IsValid reports whether size lies within the resolved constraint.
func IsValid(size models.SizeLevel, widgetID string, widgetType models.WidgetType) bool {
	c := For(widgetID, widgetType)
	return size >= c.Min && size <= c.Max
}

// Optimal returns the preferred size for a widget, used when a layout has no
// stored override.
func Optimal(widgetID string, widgetType models.WidgetType) models.SizeLevel {
	return For(widgetID, widgetType).Optimal
}
