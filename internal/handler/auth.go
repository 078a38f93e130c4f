// Package handler contains the HTTP layer: request parsing, identity
// extraction from the request context, and response writing. Business rules
// live in the service layer.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/feedboard/internal/auth"
	"github.com/sakif/feedboard/internal/service"
)

// AuthHandler exposes registration, login, and status endpoints.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleRegister creates a new account.
//
// HTTP: PUT /auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully!",
		"userId":  user.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns a token valid for one hour.
//
// HTTP: POST /auth/authenticate
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid JSON body",
		})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGetStatus returns the caller's status string.
//
// HTTP: GET /auth/status
func (h *AuthHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	status, err := h.authService.GetStatus(r.Context(), callerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus replaces the caller's status string.
//
// HTTP: PATCH /auth/status
func (h *AuthHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid status JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid JSON body",
		})
		return
	}

	if err := h.authService.UpdateStatus(r.Context(), callerID, req.Status); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated successfully!"})
}
