package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/handler/dto"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/service"
)

// AuthHandler handles login requests.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.svc.Login(r.Context(), service.LoginInput{
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LoginResponse{AuthToken: token})
}
