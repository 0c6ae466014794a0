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
	"github.com/freightboard/dashboard-api/internal/services"
)

type GridController interface {
	View(ctx context.Context, owner models.OwnerContext, key models.OwnerKey) (dto.DashboardView, error)
	AddWidget(ctx context.Context, owner models.OwnerContext, key models.OwnerKey, widgetID string) (dto.DashboardView, error)
	RemoveWidget(ctx context.Context, owner models.OwnerContext, key models.OwnerKey, widgetID string) (dto.DashboardView, error)
	ChangeSize(ctx context.Context, owner models.OwnerContext, key models.OwnerKey, widgetID string, size models.SizeLevel) (dto.DashboardView, error)
	Reorder(ctx context.Context, owner models.OwnerContext, key models.OwnerKey, req dto.ReorderRequest) (dto.DashboardView, error)
	EnterEdit(key models.OwnerKey)
	ExitEdit(key models.OwnerKey)
	SelectWidget(key models.OwnerKey, widgetID string) error
	FlushPending(key models.OwnerKey)
	FetchDashboardData(ctx context.Context, owner models.OwnerContext, execCtx models.ExecContext, key models.OwnerKey) (dto.DashboardDataResponse, error)
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	GridCtl         GridController
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		GridCtl:         deps.GridCtl,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Route("/{kind}", func(r chi.Router) {
		r.Get("/", h.GetDashboard)
		r.Get("/data", h.GetDashboardData)
		r.Post("/edit", h.EnterEdit)
		r.Delete("/edit", h.ExitEdit)
		r.Put("/select", h.SelectWidget)
		r.Post("/close", h.Close)
		r.Post("/widgets", h.AddWidget)
		r.Put("/widgets/reorder", h.Reorder) // must be before /{widgetId}
		r.Put("/widgets/{widgetId}/size", h.SetSize)
		r.Delete("/widgets/{widgetId}", h.RemoveWidget)
	})
	return r
}

// dashboardKey resolves the URL kind plus the caller's identity into the
// layout owner key. Customer-scope callers only ever see the customer
// dashboard; the broker dashboard requires the admin scope.
func dashboardKey(r *http.Request, owner models.OwnerContext) (models.OwnerKey, error) {
	kind := models.DashboardKind(chi.URLParam(r, "kind"))
	switch kind {
	case models.DashboardBroker:
		if owner.Scope != models.ScopeAdmin {
			return models.OwnerKey{}, errs.NewNotFoundError("dashboard not found: " + string(kind))
		}
	case models.DashboardCustomer:
	default:
		return models.OwnerKey{}, errs.NewNotFoundError("dashboard not found: " + string(kind))
	}
	return models.OwnerKey{Kind: kind, OwnerID: owner.OwnerID}, nil
}

// execContext builds the per-request tenant and date scope. Customers are
// always their own tenant; admins pick one with the customerId query param.
func execContext(r *http.Request, owner models.OwnerContext) (models.ExecContext, error) {
	q := r.URL.Query()
	dateRange, err := services.ResolveDateRange(q.Get("preset"), q.Get("from"), q.Get("to"), timeNow())
	if err != nil {
		return models.ExecContext{}, err
	}
	tenantID := owner.OwnerID
	if owner.Scope == models.ScopeAdmin {
		tenantID = q.Get("customerId")
	}
	return models.ExecContext{TenantID: tenantID, DateRange: dateRange}, nil
}

func (h *dashboardHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	view, err := h.GridCtl.View(r.Context(), owner, key)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, view)
}

func (h *dashboardHandlers) GetDashboardData(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	execCtx, err := execContext(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	data, err := h.GridCtl.FetchDashboardData(r.Context(), owner, execCtx, key)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, data)
}

func (h *dashboardHandlers) EnterEdit(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.GridCtl.EnterEdit(key)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) ExitEdit(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.GridCtl.ExitEdit(key)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) SelectWidget(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	var req dto.SelectWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if err := h.GridCtl.SelectWidget(key, req.WidgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// Close flushes any debounced layout save when the dashboard unmounts.
func (h *dashboardHandlers) Close(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.GridCtl.FlushPending(key)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) AddWidget(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	var req dto.AddWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if req.WidgetID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("widgetId is required"))
		return
	}
	view, err := h.GridCtl.AddWidget(r.Context(), owner, key, req.WidgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, view)
}

func (h *dashboardHandlers) RemoveWidget(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	view, err := h.GridCtl.RemoveWidget(r.Context(), owner, key, chi.URLParam(r, "widgetId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, view)
}

func (h *dashboardHandlers) Reorder(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	var req dto.ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	view, err := h.GridCtl.Reorder(r.Context(), owner, key, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, view)
}

func (h *dashboardHandlers) SetSize(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	key, err := dashboardKey(r, owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	var req dto.SetSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	view, err := h.GridCtl.ChangeSize(r.Context(), owner, key, chi.URLParam(r, "widgetId"), req.Size)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, view)
}
