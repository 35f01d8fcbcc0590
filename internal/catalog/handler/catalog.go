package handler

import (
	"net/http"

	doctorservice "medibites/internal/doctors/service"
	slotservice "medibites/internal/slots/service"
	httputil "medibites/pkg/http"
	"medibites/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityResponse struct {
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Available bool   `json:"available"`
}

// CatalogHandler serves the read side of the doctor directory and slot ledger.
type CatalogHandler struct {
	doctors doctorservice.DoctorService
	slots   slotservice.SlotService
	log     *logger.Logger
}

func NewCatalogHandler(doctors doctorservice.DoctorService, slots slotservice.SlotService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		doctors: doctors,
		slots:   slots,
		log:     log,
	}
}

func (h *CatalogHandler) Specialties(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	specialties, err := h.doctors.ListSpecialties(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, specialties)
}

func (h *CatalogHandler) DoctorsBySpecialty(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	specialty, err := httputil.RequiredQuery(r, "specialty")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doctors, err := h.doctors.DoctorsBySpecialty(r.Context(), specialty)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, doctors)
}

func (h *CatalogHandler) Doctor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doctor, err := h.doctors.GetDoctor(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, doctor)
}

func (h *CatalogHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	doctorID, err := httputil.RequiredQuery(r, "doctor_id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	date, err := httputil.RequiredQuery(r, "date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	onlyFree := r.URL.Query().Get("free") == "true"

	slots, err := h.slots.ListByDoctorAndDate(r.Context(), doctorID, date, onlyFree)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, slots)
}

func (h *CatalogHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	resp := AvailabilityResponse{
		DoctorID:  query.Get("doctor_id"),
		Date:      query.Get("date"),
		StartTime: query.Get("start_time"),
	}

	available, err := h.slots.IsAvailable(r.Context(), resp.DoctorID, resp.Date, resp.StartTime)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp.Available = available
	httputil.WriteSuccess(w, resp)
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/specialties", h.Specialties)
	router.GET("/api/v1/doctors", h.DoctorsBySpecialty)
	router.GET("/api/v1/doctors/id/:id", h.Doctor)
	router.GET("/api/v1/slots", h.Slots)
	router.GET("/api/v1/slots/availability", h.Availability)
}
