package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freightboard/dashboard-api/internal/dto"
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/response"
)

type SourceService interface {
	SetToken(ctx context.Context, customerID, token string) error
	HasToken(ctx context.Context, customerID string) (bool, error)
	DeleteToken(ctx context.Context, customerID string) error
}

// sourceHandlers manages per-customer TMS source credentials. The whole
// subtree is admin-gated by the router.
type sourceHandlers struct {
	ResponseHandler response.ResponseHandler
	SourceSvc       SourceService
}

func NewSourceHandlers(deps *Deps) *sourceHandlers {
	return &sourceHandlers{
		ResponseHandler: deps.ResponseHandler,
		SourceSvc:       deps.SourceSvc,
	}
}

func (h *sourceHandlers) SourceRoutes() chi.Router {
	r := chi.NewRouter()
	r.Put("/{customerId}/token", h.SetToken)
	r.Get("/{customerId}/token", h.HasToken)
	r.Delete("/{customerId}/token", h.DeleteToken)
	return r
}

func (h *sourceHandlers) SetToken(w http.ResponseWriter, r *http.Request) {
	var req dto.SetSourceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	customerID := chi.URLParam(r, "customerId")
	if err := h.SourceSvc.SetToken(r.Context(), customerID, req.Token); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *sourceHandlers) HasToken(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")
	has, err := h.SourceSvc.HasToken(r.Context(), customerID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]bool{"configured": has})
}

func (h *sourceHandlers) DeleteToken(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")
	if err := h.SourceSvc.DeleteToken(r.Context(), customerID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
