package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserNameTaken = errors.New("user name already taken")
)

const userColumns = `id, user_name, full_name, nickname, password, date_created, date_modified`

// CreateUser inserts a new user. date_created is assigned by the database
// and written back to user.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO thingful_users (id, user_name, full_name, nickname, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING date_created
	`

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.UserName,
		user.FullName,
		user.Nickname,
		user.PasswordHash,
	).Scan(&user.DateCreated)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserNameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM thingful_users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByUserName retrieves a user by exact, case-sensitive user name.
func (r *Repository) GetUserByUserName(ctx context.Context, userName string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM thingful_users WHERE user_name = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.UserName,
		&user.FullName,
		&user.Nickname,
		&user.PasswordHash,
		&user.DateCreated,
		&user.DateModified,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
