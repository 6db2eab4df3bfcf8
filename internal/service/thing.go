package service

import (
	"context"
	"fmt"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
)

// ThingStore reads things and their reviews.
type ThingStore interface {
	ListThings(ctx context.Context) ([]*model.Thing, error)
	ListReviewsForThing(ctx context.Context, thingID int64) ([]*model.Review, error)
}

// ThingService handles thing and review reads. Single-thing lookups are
// done by the existence gate in middleware.
type ThingService struct {
	things ThingStore
}

// NewThingService creates a new ThingService.
func NewThingService(things ThingStore) *ThingService {
	return &ThingService{things: things}
}

// ListThings returns all things.
func (s *ThingService) ListThings(ctx context.Context) ([]*model.Thing, error) {
	things, err := s.things.ListThings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list things: %w", err)
	}
	return things, nil
}

// ListReviews returns the reviews of a thing.
func (s *ThingService) ListReviews(ctx context.Context, thingID int64) ([]*model.Review, error) {
	reviews, err := s.things.ListReviewsForThing(ctx, thingID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
