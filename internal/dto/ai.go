package dto

import "github.com/freightboard/dashboard-api/internal/models"

// GenerateWidgetRequest asks the AI assistant to draft a widget from a
// natural-language description.
type GenerateWidgetRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateWidgetResponse is the drafted definition. It is a draft only: the
// caller reviews and saves it through the normal custom-widget path, which
// applies validation and field-policy stripping again.
type GenerateWidgetResponse struct {
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Type              models.WidgetType `json:"type"`
	QuerySpec         models.QuerySpec  `json:"querySpec"`
	VisualizationHint string            `json:"visualizationHint,omitempty"`
}
