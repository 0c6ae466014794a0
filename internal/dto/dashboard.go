package dto

import (
	"time"

	"github.com/freightboard/dashboard-api/internal/models"
)

// SaveWidgetRequest creates or updates a custom widget definition.
type SaveWidgetRequest struct {
	ID                string            `json:"id,omitempty"`
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Type              models.WidgetType `json:"type"`
	Category          string            `json:"category,omitempty"`
	QuerySpec         models.QuerySpec  `json:"querySpec"`
	VisualizationHint string            `json:"visualizationHint,omitempty"`
}

// PromoteWidgetRequest copies a widget into the system namespace.
type PromoteWidgetRequest struct {
	RemoveOriginal bool `json:"removeOriginal,omitempty"`
}

// AddWidgetRequest appends a widget to a dashboard layout.
type AddWidgetRequest struct {
	WidgetID string `json:"widgetId"`
}

// ReorderRequest is the single reorder message: move the widget at OldIndex
// to NewIndex. Gesture capture stays a UI concern; this is all the core sees.
type ReorderRequest struct {
	OldIndex int  `json:"oldIndex"`
	NewIndex int  `json:"newIndex"`
	Hover    bool `json:"hover,omitempty"` // reorder issued outside edit mode
}

// SetSizeRequest changes one widget's size level.
type SetSizeRequest struct {
	Size models.SizeLevel `json:"size"`
}

// SelectWidgetRequest sets or clears the edit-mode selection.
type SelectWidgetRequest struct {
	WidgetID string `json:"widgetId,omitempty"`
}

// WidgetView is one widget slot in a resolved dashboard view.
type WidgetView struct {
	WidgetID string            `json:"widgetId"`
	Type     models.WidgetType `json:"type"`
	Name     string            `json:"name"`
	Size     models.SizeLevel  `json:"size"`
	Custom   bool              `json:"custom"`
}

// DashboardView is the fully resolved layout handed to the client.
type DashboardView struct {
	Kind    models.DashboardKind `json:"kind"`
	Editing bool                 `json:"editing"`
	Widgets []WidgetView         `json:"widgets"`
}

// WidgetDataResponse wraps one widget's computed data.
type WidgetDataResponse struct {
	WidgetID    string            `json:"widgetId"`
	Data        models.WidgetData `json:"data"`
	Frozen      bool              `json:"frozen,omitempty"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

// DashboardDataResponse carries data for every widget on a dashboard. A
// failed widget reports an empty result plus an error message; it never
// blocks its neighbours.
type DashboardDataResponse struct {
	Widgets map[string]WidgetDataResponse `json:"widgets"`
	Errors  map[string]string             `json:"errors,omitempty"`
}

// SetSourceTokenRequest rotates a customer's TMS source credential.
type SetSourceTokenRequest struct {
	Token string `json:"token"`
}
