package handler

import (
	"net/http"

	"medibites/internal/assistant/service"
	httputil "medibites/pkg/http"
	"medibites/pkg/logger"
	"medibites/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// TurnRequest carries the assistant's latest reply for the given patient.
type TurnRequest struct {
	Patient model.PatientInfo `json:"patient"`
	Text    string            `json:"text"`
}

type AssistantHandler struct {
	service service.AssistantService
	log     *logger.Logger
}

func NewAssistantHandler(service service.AssistantService, log *logger.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		log:     log,
	}
}

func (h *AssistantHandler) Turn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req TurnRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.HandleTurn(r.Context(), req.Patient, req.Text)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.log.Debug("Assistant turn handled", "action", result.Action, "patient_id", req.Patient.ID)
	httputil.WriteSuccess(w, result)
}

func (h *AssistantHandler) Catalog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	catalog, err := h.service.Catalog(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, catalog)
}

func (h *AssistantHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/assistant/turns", h.Turn)
	router.GET("/api/v1/assistant/catalog", h.Catalog)
}
