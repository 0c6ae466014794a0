package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/freightboard/dashboard-api/internal/dto"
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/fieldpolicy"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/pkg/helpers"
	"github.com/freightboard/dashboard-api/pkg/logger"
)

type vertexClient interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

// aiWidgetService drafts widget definitions from natural language. It only
// produces the same declarative query spec every widget uses; drafts go
// through the ordinary save path, so nothing here bypasses validation or the
// field policy.
type aiWidgetService struct {
	vertex vertexClient
}

func NewAIWidgetService(vertex vertexClient) *aiWidgetService {
	return &aiWidgetService{vertex: vertex}
}

const widgetSystemPrompt = `You draft analytics dashboard widgets for a freight brokerage.
Reply with a single JSON object and nothing else, shaped as:
{"name":string,"description":string,"type":one of ["kpi","featured_kpi","line_chart","bar_chart","pie_chart","table","map"],
"querySpec":{"baseEntity":"loads"|"quotes","columns":[{"field":string,"alias":string,"aggregate":"count"|"sum"|"avg"}],
"filters":[{"field":string,"operator":string,"value":any,"isDynamic":bool}],"groupBy":[string],"orderBy":[{"field":string,"direction":"asc"|"desc"}],"limit":number},
"visualizationHint":string}
Known load fields: load_number, status, carrier, customer_name, equipment, origin_city,
origin_state, destination_city, destination_state, pickup_date, pickup_month, retail.
Always include dynamic filters for customer_id and pickup_date with no value.`

func (s *aiWidgetService) Generate(ctx context.Context, owner models.OwnerContext, req dto.GenerateWidgetRequest) (dto.GenerateWidgetResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return dto.GenerateWidgetResponse{}, errs.NewValidationError("prompt is required")
	}

	resp, err := s.vertex.GenerateContent(ctx, dto.VertexGenerateRequest{
		System:      widgetSystemPrompt,
		UserMessage: req.Prompt,
		Temperature: helpers.Ptr(float32(0.2)),
	})
	if err != nil {
		return dto.GenerateWidgetResponse{}, err
	}

	var draft dto.GenerateWidgetResponse
	if err := json.Unmarshal([]byte(stripFences(resp.Text)), &draft); err != nil {
		logger.FromContext(ctx).Warn("ai widget draft was not valid json", "error", err)
		return dto.GenerateWidgetResponse{}, errs.NewExternalServiceError("vertex", "assistant returned an unusable draft", true, err)
	}
	if !draft.Type.Valid() || draft.Type == models.WidgetTypeAIReport {
		draft.Type = models.WidgetTypeTable
	}
	if draft.QuerySpec.BaseEntity == "" {
		draft.QuerySpec.BaseEntity = "loads"
	}

	// Dynamic filters never carry values, whatever the model produced.
	for i, f := range draft.QuerySpec.Filters {
		if f.IsDynamic {
			draft.QuerySpec.Filters[i].Value = nil
		}
	}
	if owner.Scope.Restricted() {
		draft.QuerySpec = fieldpolicy.Strip(draft.QuerySpec)
	}
	return draft, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
