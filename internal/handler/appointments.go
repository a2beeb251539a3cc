package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/internal/service"
)

// CreateAppointmentResponse is returned by POST /api/appointments
type CreateAppointmentResponse struct {
	CitaID      int64               `json:"cita_id"`
	Appointment *domain.Appointment `json:"appointment"`
}

// AppointmentHandler serves the appointment endpoints
type AppointmentHandler struct {
	appointments *service.AppointmentService
	logger       *slog.Logger
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointments *service.AppointmentService, logger *slog.Logger) *AppointmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentHandler{appointments: appointments, logger: logger}
}

// Create handles POST /api/appointments
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req service.AppointmentInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	appt, err := h.appointments.Create(r.Context(), p, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateAppointmentResponse{CitaID: appt.ID, Appointment: appt})
}

// List handles GET /api/appointments. Only administrators may filter by patient_id.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var patientID int64
	if raw := r.URL.Query().Get("patient_id"); raw != "" && p.Role == domain.RoleAdmin {
		patientID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || patientID <= 0 {
			writeError(w, r, h.logger, domain.NewValidationError("patient_id", "must be a positive integer"))
			return
		}
	}
	list, err := h.appointments.List(r.Context(), p, patientID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/appointments/{id}
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	appt, err := h.appointments.Get(r.Context(), p, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Update handles PUT /api/appointments/{id}
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req service.AppointmentUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	appt, err := h.appointments.Update(r.Context(), p, id, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Delete handles DELETE /api/appointments/{id}
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.appointments.Delete(r.Context(), p, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
