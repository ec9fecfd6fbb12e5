package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iarleylcs/cartify-flow/internal/checkout"
	"github.com/iarleylcs/cartify-flow/internal/notify"
	"github.com/iarleylcs/cartify-flow/internal/repository"
)

type CheckoutHandler struct {
	workflow *checkout.Workflow
	orders   repository.OrderRepository
}

func NewCheckoutHandler(workflow *checkout.Workflow, orders repository.OrderRepository) *CheckoutHandler {
	return &CheckoutHandler{workflow: workflow, orders: orders}
}

type ConfirmationDTO struct {
	Confirmation checkout.Confirmation `json:"confirmation"`
	Notice       *notify.Notice        `json:"notice,omitempty"`
}

// Begin opens the confirmation step. An empty cart gets a warning, not an
// error page; the client stays where it is.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "no session id")
		return
	}

	conf, err := h.workflow.Begin(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			notice := notify.Warning("Empty cart", "Add products to the cart before submitting the order")
			respondJSON(w, http.StatusUnprocessableEntity, ConfirmationDTO{Notice: &notice})
		case errors.Is(err, checkout.ErrSubmissionInFlight):
			respondError(w, http.StatusConflict, "submission_in_flight", "a submission is already in progress")
		default:
			respondError(w, http.StatusInternalServerError, "checkout_unavailable", "could not start checkout")
		}
		return
	}

	respondJSON(w, http.StatusOK, ConfirmationDTO{Confirmation: conf})
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "no session id")
		return
	}

	if err := h.workflow.Cancel(sessionID); err != nil {
		respondError(w, http.StatusConflict, "not_confirming", "no submission awaiting confirmation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "no session id")
		return
	}

	receipt, err := h.workflow.Confirm(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNotConfirming):
			respondError(w, http.StatusConflict, "not_confirming", "confirm checkout before submitting")
		case errors.Is(err, checkout.ErrSubmissionInFlight):
			respondError(w, http.StatusConflict, "submission_in_flight", "a submission is already in progress")
		case errors.Is(err, checkout.ErrPersistenceFailed):
			respondError(w, http.StatusBadGateway, "order_not_persisted", "the order could not be saved; the cart was kept for retry")
		default:
			respondError(w, http.StatusInternalServerError, "checkout_unavailable", "could not submit the order")
		}
		return
	}

	respondJSON(w, http.StatusCreated, receipt)
}

// GetOrder serves the receipt lookup by order code.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "invalid_code", "order code is required")
		return
	}

	order, err := h.orders.GetOrderByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order_not_found", "unknown order code")
			return
		}
		respondError(w, http.StatusBadGateway, "orders_unavailable", "could not load order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}
