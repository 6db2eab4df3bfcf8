package handler

import (
	"log/slog"
	"net/http"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/handler/dto"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/middleware"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/sanitize"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/service"
)

// ThingHandler handles HTTP requests for things and their reviews.
type ThingHandler struct {
	svc       *service.ThingService
	sanitizer sanitize.Sanitizer
	logger    *slog.Logger
}

// NewThingHandler creates a new ThingHandler.
func NewThingHandler(svc *service.ThingService, sanitizer sanitize.Sanitizer, logger *slog.Logger) *ThingHandler {
	return &ThingHandler{
		svc:       svc,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// List handles GET /api/things.
func (h *ThingHandler) List(w http.ResponseWriter, r *http.Request) {
	things, err := h.svc.ListThings(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToThingListResponse(things, h.sanitizer))
}

// Get handles GET /api/things/{thing_id}. The thing was loaded by the
// existence gate.
func (h *ThingHandler) Get(w http.ResponseWriter, r *http.Request) {
	thing := middleware.ThingFromContext(r.Context())
	if thing == nil {
		writeError(w, http.StatusNotFound, middleware.ThingNotFoundMessage)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToThingResponse(thing, h.sanitizer))
}

// Reviews handles GET /api/things/{thing_id}/reviews.
func (h *ThingHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	thing := middleware.ThingFromContext(r.Context())
	if thing == nil {
		writeError(w, http.StatusNotFound, middleware.ThingNotFoundMessage)
		return
	}

	reviews, err := h.svc.ListReviews(r.Context(), thing.ID)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToReviewListResponse(reviews, h.sanitizer))
}
