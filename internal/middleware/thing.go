package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/apperr"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/repository"
)

// ThingNotFoundMessage is the body of a 404 for an unknown thing.
const ThingNotFoundMessage = "Thing doesn't exist"

// ThingIDParam is the route parameter holding the thing id.
const ThingIDParam = "thing_id"

// ThingFinder fetches a thing by id.
type ThingFinder interface {
	GetThingByID(ctx context.Context, id int64) (*model.Thing, error)
}

// ThingGateConfig holds configuration for the thing existence gate.
type ThingGateConfig struct {
	Logger  *slog.Logger
	Things  ThingFinder
	Metrics metrics.Recorder
}

type thingContextKey struct{}

// RequireThing returns a middleware that 404s unless the thing named by
// the route exists. The fetched thing is placed in the request context.
func RequireThing(cfg ThingGateConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, ThingIDParam), 10, 64)
			if err != nil || id <= 0 {
				recorder.IncThingNotFound()
				writeError(w, http.StatusNotFound, ThingNotFoundMessage)
				return
			}

			thing, err := cfg.Things.GetThingByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, repository.ErrThingNotFound) {
					recorder.IncThingNotFound()
					writeError(w, http.StatusNotFound, ThingNotFoundMessage)
					return
				}
				cfg.Logger.Error("failed to load thing",
					slog.Int64("thing_id", id),
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, apperr.InternalMessage)
				return
			}

			ctx := context.WithValue(r.Context(), thingContextKey{}, thing)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ThingFromContext returns the thing loaded by RequireThing, or nil.
func ThingFromContext(ctx context.Context) *model.Thing {
	thing, _ := ctx.Value(thingContextKey{}).(*model.Thing)
	return thing
}
