package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freightboard/dashboard-api/internal/dto"
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/middleware"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/internal/response"
)

type AIService interface {
	Generate(ctx context.Context, owner models.OwnerContext, req dto.GenerateWidgetRequest) (dto.GenerateWidgetResponse, error)
}

type aiHandlers struct {
	ResponseHandler response.ResponseHandler
	AISvc           AIService
}

func NewAIHandlers(deps *Deps) *aiHandlers {
	return &aiHandlers{
		ResponseHandler: deps.ResponseHandler,
		AISvc:           deps.AISvc,
	}
}

func (h *aiHandlers) AIRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/widgets", h.GenerateWidget)
	return r
}

func (h *aiHandlers) GenerateWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	owner := middleware.Owner(r.Context())
	draft, err := h.AISvc.Generate(r.Context(), owner, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, draft)
}
