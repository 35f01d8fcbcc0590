package handler

import (
	"net/http"
	"time"

	"medibites/internal/appointments/service"
	httputil "medibites/pkg/http"
	"medibites/pkg/logger"
	"medibites/pkg/model"
	"medibites/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

// BookingRequest is the body of POST /api/v1/appointments. EndTime may be
// omitted and is then derived from StartTime.
type BookingRequest struct {
	Patient     model.PatientInfo `json:"patient"`
	Appointment model.BookIntent  `json:"appointment"`
}

type AppointmentHandler struct {
	service  service.AppointmentService
	duration time.Duration
	log      *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, appointmentDuration time.Duration, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service:  service,
		duration: appointmentDuration,
		log:      log,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	intent := req.Appointment
	if intent.EndTime == "" && intent.StartTime != "" {
		if end, ok := sanitizer.AddToClock(intent.StartTime, h.duration); ok {
			intent.EndTime = end
		}
	}

	result, err := h.service.Book(r.Context(), req.Patient, &intent)
	if err != nil {
		h.log.Debug("Booking request failed", "handler", "Create", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, result)
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appt, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, appt)
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
}
