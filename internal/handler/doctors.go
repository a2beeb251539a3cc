package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/citas/internal/service"
)

// DoctorHandler serves doctor accounts and the doctor's own agenda
type DoctorHandler struct {
	doctors      *service.DoctorService
	appointments *service.AppointmentService
	logger       *slog.Logger
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(doctors *service.DoctorService, appointments *service.AppointmentService, logger *slog.Logger) *DoctorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DoctorHandler{doctors: doctors, appointments: appointments, logger: logger}
}

// Create handles POST /api/doctors
func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.DoctorInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := h.doctors.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"user_id": id})
}

// List handles GET /api/doctors
func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.doctors.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/doctors/{id}
func (h *DoctorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	d, err := h.doctors.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Update handles PUT /api/doctors/{id}
func (h *DoctorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req service.DoctorUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	d, err := h.doctors.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /api/doctors/{id}
func (h *DoctorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.doctors.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyAppointments handles GET /api/doctors/me/appointments
func (h *DoctorHandler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	list, err := h.appointments.ListForDoctor(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
