// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/apperr"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/auth"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/repository"
)

// Public messages for account errors.
const (
	MsgUserNameTaken     = "User name is already taken"
	MsgUserNotFound      = "User doesn't exist"
	MsgInvalidLogin      = "Incorrect user_name or password"
	missingFieldTemplate = "Missing '%s' in request body"
)

// UserStore persists and reads users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// UserService handles account registration and lookup.
type UserService struct {
	users       UserStore
	credentials *auth.CredentialStore
	hasher      auth.Hasher
	metrics     metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, credentials *auth.CredentialStore, hasher auth.Hasher, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		users:       users,
		credentials: credentials,
		hasher:      hasher,
		metrics:     recorder,
	}
}

// RegisterInput defines input for creating a user.
type RegisterInput struct {
	FullName string
	UserName string
	Password string
	Nickname string
}

// Register validates input and creates a user. Checks run in order:
// required fields, password policy, user name availability.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	user, err := s.register(ctx, input)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			s.metrics.IncRegistrationRejected()
		}
		return nil, err
	}
	s.metrics.IncUserRegistered()
	return user, nil
}

func (s *UserService) register(ctx context.Context, input RegisterInput) (*model.User, error) {
	required := []struct{ name, value string }{
		{"full_name", input.FullName},
		{"user_name", input.UserName},
		{"password", input.Password},
	}
	if err := requireFields(required); err != nil {
		return nil, err
	}

	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	existing, err := s.credentials.FindByUserName(ctx, input.UserName)
	if err != nil {
		return nil, fmt.Errorf("check user name: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict(MsgUserNameTaken)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		UserName:     input.UserName,
		FullName:     input.FullName,
		PasswordHash: digest,
	}
	if nick := strings.TrimSpace(input.Nickname); nick != "" {
		user.Nickname = &nick
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost the race against a concurrent registration.
		if errors.Is(err, repository.ErrUserNameTaken) {
			return nil, apperr.Conflict(MsgUserNameTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// GetUser returns the user with id.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// requireFields returns a validation error naming the first empty field.
func requireFields(fields []struct{ name, value string }) error {
	for _, f := range fields {
		if f.value == "" {
			return apperr.Validation(fmt.Sprintf(missingFieldTemplate, f.name))
		}
	}
	return nil
}
