// Package memory is an in-process resource store with the same contract
// as the Postgres repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/repository"
)

// Store holds users, things and reviews in maps.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*model.User // by id
	things  map[int64]*model.Thing
	reviews map[int64][]*model.Review
	nextID  int64

	// Err, when set, is returned by every read.
	Err error

	userLookups   atomic.Int64
	thingLookups  atomic.Int64
	reviewLookups atomic.Int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]*model.User),
		things:  make(map[int64]*model.Thing),
		reviews: make(map[int64][]*model.Review),
	}
}

// CreateUser stores a copy of user. User names are unique.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.UserName == user.UserName {
			return repository.ErrUserNameTaken
		}
	}
	user.DateCreated = time.Now().UTC()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// GetUserByID returns the user with id.
func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.userLookups.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByUserName returns the user with the exact user name.
func (s *Store) GetUserByUserName(_ context.Context, userName string) (*model.User, error) {
	s.userLookups.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.UserName == userName {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// CreateThing stores thing and assigns its id.
func (s *Store) CreateThing(_ context.Context, thing *model.Thing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	thing.ID = s.nextID
	thing.DateCreated = time.Now().UTC()
	cp := *thing
	s.things[thing.ID] = &cp
	return nil
}

// CreateReview stores review and assigns its id.
func (s *Store) CreateReview(_ context.Context, review *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.things[review.ThingID]; !ok {
		return repository.ErrThingNotFound
	}
	s.nextID++
	review.ID = s.nextID
	review.DateCreated = time.Now().UTC()
	cp := *review
	s.reviews[review.ThingID] = append(s.reviews[review.ThingID], &cp)
	return nil
}

// ListThings returns all things ordered by id.
func (s *Store) ListThings(_ context.Context) ([]*model.Thing, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	things := make([]*model.Thing, 0, len(s.things))
	for id := range s.things {
		things = append(things, s.thingLocked(id))
	}
	sort.Slice(things, func(i, j int) bool { return things[i].ID < things[j].ID })
	return things, nil
}

// GetThingByID returns the thing with id.
func (s *Store) GetThingByID(_ context.Context, id int64) (*model.Thing, error) {
	s.thingLookups.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.things[id]; !ok {
		return nil, repository.ErrThingNotFound
	}
	return s.thingLocked(id), nil
}

// ListReviewsForThing returns the reviews of a thing in insertion order.
func (s *Store) ListReviewsForThing(_ context.Context, thingID int64) ([]*model.Review, error) {
	s.reviewLookups.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Review, 0, len(s.reviews[thingID]))
	for _, r := range s.reviews[thingID] {
		cp := *r
		if u, ok := s.users[r.Author.ID]; ok {
			cp.Author = *u
		}
		out = append(out, &cp)
	}
	return out, nil
}

// thingLocked copies a thing and fills in author and review aggregates.
func (s *Store) thingLocked(id int64) *model.Thing {
	cp := *s.things[id]
	if u, ok := s.users[cp.Author.ID]; ok {
		cp.Author = *u
	}
	reviews := s.reviews[id]
	cp.NumberOfReviews = len(reviews)
	cp.AverageReviewRating = 0
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		cp.AverageReviewRating = float64(sum) / float64(len(reviews))
	}
	return &cp
}

// Ping always succeeds unless Err is set.
func (s *Store) Ping(context.Context) error {
	return s.Err
}

// UserLookups is the number of user reads served.
func (s *Store) UserLookups() int64 { return s.userLookups.Load() }

// ThingLookups is the number of GetThingByID calls served.
func (s *Store) ThingLookups() int64 { return s.thingLookups.Load() }

// ReviewLookups is the number of ListReviewsForThing calls served.
func (s *Store) ReviewLookups() int64 { return s.reviewLookups.Load() }
