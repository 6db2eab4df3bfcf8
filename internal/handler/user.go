package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/handler/dto"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/middleware"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/sanitize"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/service"
)

// UserIDParam is the route parameter holding a user id.
const UserIDParam = "user_id"

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	svc       *service.UserService
	sanitizer sanitize.Sanitizer
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, sanitizer sanitize.Sanitizer, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:       svc,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		FullName: req.FullName,
		UserName: req.UserName,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	w.Header().Set("Location", path.Join(r.URL.Path, user.ID))
	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user, h.sanitizer))
}

// Get handles GET /api/users/{user_id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, UserIDParam)
	if id == "" {
		writeError(w, http.StatusNotFound, service.MsgUserNotFound)
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user, h.sanitizer))
}
