package handler

import (
	"log/slog"
	"net/http"

	"github.com/hasan-mia/manufacturer-server/internal/service"
)

// PaymentHandler serves the checkout endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
	logger   *slog.Logger
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

// HandleCreateIntent asks the payment provider for an intent covering the
// order total and hands the client secret back to the browser, which
// completes the charge directly with the provider. Card details never
// touch this server.
//
// HTTP: POST /payment-intent  (authenticated)
// REQUEST BODY: {"total": 19.99}
// RESPONSE: {"clientSecret": "pi_..."}
func (h *PaymentHandler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Total float64 `json:"total"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	secret, err := h.payments.CreateIntent(r.Context(), body.Total)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": secret})
}

// HandleRecordPayment stores a completed payment and marks its order paid.
//
// HTTP: PATCH /order/{id}  (authenticated)
// REQUEST BODY: {"transactionId": "txn_...", ...}
func (h *PaymentHandler) HandleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var record map[string]any
	if err := decodeBody(r, &record); err != nil {
		writeError(w, err)
		return
	}

	if err := h.payments.RecordPayment(r.Context(), r.PathValue("id"), record); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"paid": true})
}
