package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/citas/internal/security/audit"
	"github.com/aryan0dhankhar/citas/internal/service"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /api/auth/change-password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthHandler serves login, self registration and password changes
type AuthHandler struct {
	auth     *service.AuthService
	patients *service.PatientService
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, patients *service.PatientService, auditLog *audit.Logger, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{auth: auth, patients: patients, audit: auditLog, logger: logger}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.audit != nil {
			h.audit.LogLogin(r.Context(), req.Email, "failed")
		}
		writeError(w, r, h.logger, err)
		return
	}
	if h.audit != nil {
		h.audit.LogLogin(r.Context(), req.Email, "success")
	}
	writeJSON(w, http.StatusOK, res)
}

// RegisterPatient handles POST /api/patients/register
func (h *AuthHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req service.PatientInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := h.patients.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"user_id": id})
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), p.UserID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
