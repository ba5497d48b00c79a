package payout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/transport"
)

type ServiceAPI interface {
	LoadPending(ctx context.Context) ([]PayoutRequest, error)
	Resolve(ctx context.Context, id int64, outcome Status) (*PayoutRequest, error)
	Submit(ctx context.Context, dto SubmitPayoutDTO) (*PayoutRequest, error)
	History(ctx context.Context) (*HistoryView, error)
	Stats(ctx context.Context) (Stats, error)
	Overview() Overview
	PaymentMethods() []string
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// ListPending serves the admin's open requests in stored order.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Service.LoadPending(r.Context())
	if err != nil {
		h.Logger.Error("ListPending: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PendingResponse{Requests: pending})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, StatusApproved)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, StatusRejected)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, outcome Status) {
	id, appErr := h.ParseIDParam(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resolved, err := h.Service.Resolve(r.Context(), id, outcome)
	if err != nil {
		h.Logger.Error("Resolve: service error", "error", err, "payout_id", id, "outcome", outcome)
		h.HandleServiceError(w, err)
		return
	}

	// A stale or repeated click lands here with nothing to do; it is not an error.
	h.WriteJSON(w, http.StatusOK, ResolveResponse{Resolved: resolved != nil, Request: resolved})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto SubmitPayoutDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	created, err := h.Service.Submit(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.History(r.Context())
	if err != nil {
		h.Logger.Error("History: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.Logger.Error("Stats: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) Overview(w http.ResponseWriter, _ *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Overview())
}

func (h *Handler) PaymentMethods(w http.ResponseWriter, _ *http.Request) {
	h.WriteJSON(w, http.StatusOK, PaymentMethodsResponse{PaymentMethods: h.Service.PaymentMethods()})
}
