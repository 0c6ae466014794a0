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
	"github.com/freightboard/dashboard-api/internal/registry"
	"github.com/freightboard/dashboard-api/internal/response"
)

type WidgetService interface {
	Save(ctx context.Context, owner models.OwnerContext, def models.CustomWidgetDefinition) (*models.CustomWidgetDefinition, error)
	Get(ctx context.Context, owner models.OwnerContext, widgetID string) (*models.CustomWidgetDefinition, error)
	List(ctx context.Context, owner models.OwnerContext) ([]*models.CustomWidgetDefinition, error)
	Delete(ctx context.Context, owner models.OwnerContext, widgetID string) error
	Promote(ctx context.Context, owner models.OwnerContext, widgetID string, removeOriginal bool) (*models.CustomWidgetDefinition, error)
	Freeze(ctx context.Context, owner models.OwnerContext, execCtx models.ExecContext, widgetID string) (*models.CustomWidgetDefinition, error)
	Unfreeze(ctx context.Context, owner models.OwnerContext, widgetID string) (*models.CustomWidgetDefinition, error)
	Catalog(ctx context.Context, owner models.OwnerContext) []registry.Definition
}

type widgetHandlers struct {
	ResponseHandler response.ResponseHandler
	WidgetSvc       WidgetService
}

func NewWidgetHandlers(deps *Deps) *widgetHandlers {
	return &widgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		WidgetSvc:       deps.WidgetSvc,
	}
}

func (h *widgetHandlers) WidgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/catalog", h.GetCatalog) // must be before /{widgetId}
	r.Get("/", h.ListWidgets)
	r.Post("/", h.CreateWidget)
	r.Get("/{widgetId}", h.GetWidget)
	r.Put("/{widgetId}", h.UpdateWidget)
	r.Delete("/{widgetId}", h.DeleteWidget)
	r.Post("/{widgetId}/promote", h.PromoteWidget)
	r.Post("/{widgetId}/freeze", h.FreezeWidget)
	r.Delete("/{widgetId}/freeze", h.UnfreezeWidget)
	return r
}

func (h *widgetHandlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	defs := h.WidgetSvc.Catalog(r.Context(), owner)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, defs)
}

func (h *widgetHandlers) ListWidgets(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	defs, err := h.WidgetSvc.List(r.Context(), owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, defs)
}

func (h *widgetHandlers) GetWidget(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	def, err := h.WidgetSvc.Get(r.Context(), owner, chi.URLParam(r, "widgetId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, def)
}

func (h *widgetHandlers) CreateWidget(w http.ResponseWriter, r *http.Request) {
	h.saveWidget(w, r, "")
}

func (h *widgetHandlers) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	h.saveWidget(w, r, chi.URLParam(r, "widgetId"))
}

func (h *widgetHandlers) saveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	var req dto.SaveWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if widgetID != "" {
		req.ID = widgetID
	}
	owner := middleware.Owner(r.Context())
	def, err := h.WidgetSvc.Save(r.Context(), owner, models.CustomWidgetDefinition{
		ID:                req.ID,
		Name:              req.Name,
		Description:       req.Description,
		Type:              req.Type,
		Category:          req.Category,
		QuerySpec:         req.QuerySpec,
		VisualizationHint: req.VisualizationHint,
	})
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	status := http.StatusOK
	if widgetID == "" {
		status = http.StatusCreated
	}
	h.ResponseHandler.WriteSuccess(w, r, status, def)
}

func (h *widgetHandlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	if err := h.WidgetSvc.Delete(r.Context(), owner, chi.URLParam(r, "widgetId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *widgetHandlers) PromoteWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.PromoteWidgetRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
			return
		}
	}
	owner := middleware.Owner(r.Context())
	def, err := h.WidgetSvc.Promote(r.Context(), owner, chi.URLParam(r, "widgetId"), req.RemoveOriginal)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, def)
}

func (h *widgetHandlers) FreezeWidget(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	execCtx, err := execContext(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	def, err := h.WidgetSvc.Freeze(r.Context(), owner, execCtx, chi.URLParam(r, "widgetId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, def)
}

func (h *widgetHandlers) UnfreezeWidget(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	def, err := h.WidgetSvc.Unfreeze(r.Context(), owner, chi.URLParam(r, "widgetId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, def)
}
