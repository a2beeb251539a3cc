package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/citas/internal/service"
)

// SpecialtyRequest is the body of specialty create and rename
type SpecialtyRequest struct {
	Name string `json:"name"`
}

type SpecialtyHandler struct {
	specialties *service.SpecialtyService
	logger      *slog.Logger
}

func NewSpecialtyHandler(specialties *service.SpecialtyService, logger *slog.Logger) *SpecialtyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpecialtyHandler{specialties: specialties, logger: logger}
}

func (h *SpecialtyHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.specialties.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *SpecialtyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SpecialtyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	s, err := h.specialties.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *SpecialtyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req SpecialtyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	s, err := h.specialties.Update(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SpecialtyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.specialties.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
