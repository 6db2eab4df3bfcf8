package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/repository"
)

// UserFinder is the part of the resource store that resolves users by name.
type UserFinder interface {
	GetUserByUserName(ctx context.Context, userName string) (*model.User, error)
}

// CredentialStore looks up users for credential checks. It never caches,
// so every call reflects the current store state.
type CredentialStore struct {
	users UserFinder
}

// NewCredentialStore creates a CredentialStore over users.
func NewCredentialStore(users UserFinder) *CredentialStore {
	return &CredentialStore{users: users}
}

// FindByUserName returns the user with the given name, or nil when there is none.
func (s *CredentialStore) FindByUserName(ctx context.Context, userName string) (*model.User, error) {
	user, err := s.users.GetUserByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by name: %w", err)
	}
	return user, nil
}
