package handler

import (
	"net/http"

	"medibites/internal/payments/service"
	httputil "medibites/pkg/http"
	"medibites/pkg/logger"
	"medibites/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.PaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Pay(r.Context(), req)
	if err != nil {
		h.log.Debug("Payment request failed", "handler", "Pay", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

func (h *PaymentHandler) LedgerEntries(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entries, err := h.service.LedgerEntries(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, entries)
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments", h.Pay)
	router.GET("/api/v1/payments/appointment/:id", h.LedgerEntries)
}
