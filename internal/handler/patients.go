package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/citas/internal/service"
)

// PatientHandler serves the administrator patient endpoints
type PatientHandler struct {
	patients *service.PatientService
	logger   *slog.Logger
}

func NewPatientHandler(patients *service.PatientService, logger *slog.Logger) *PatientHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatientHandler{patients: patients, logger: logger}
}

func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.patients.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	p, err := h.patients.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req service.PatientUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	p, err := h.patients.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.patients.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
