package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
)

// ErrThingNotFound is returned when no thing has the requested id.
var ErrThingNotFound = errors.New("thing not found")

const thingSelect = `
	SELECT
		t.id,
		t.title,
		COALESCE(t.content, ''),
		COALESCE(t.image, ''),
		t.date_created,
		COALESCE(AVG(r.rating), 0)::float8 AS average_review_rating,
		COUNT(r.id) AS number_of_reviews,
		u.id, u.user_name, u.full_name, u.nickname, u.date_created, u.date_modified
	FROM thingful_things t
	JOIN thingful_users u ON u.id = t.user_id
	LEFT JOIN thingful_reviews r ON r.thing_id = t.id
`

const thingGroupBy = ` GROUP BY t.id, u.id`

// ListThings returns every thing with its author and review aggregates.
func (r *Repository) ListThings(ctx context.Context) ([]*model.Thing, error) {
	query := thingSelect + thingGroupBy + ` ORDER BY t.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list things: %w", err)
	}
	defer rows.Close()

	things := make([]*model.Thing, 0)
	for rows.Next() {
		thing, err := scanThing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thing: %w", err)
		}
		things = append(things, thing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate things: %w", err)
	}

	return things, nil
}

// GetThingByID retrieves a thing by id.
func (r *Repository) GetThingByID(ctx context.Context, id int64) (*model.Thing, error) {
	query := thingSelect + ` WHERE t.id = $1` + thingGroupBy

	thing, err := scanThing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrThingNotFound
		}
		return nil, fmt.Errorf("failed to get thing by ID: %w", err)
	}

	return thing, nil
}

// ListReviewsForThing returns the reviews of a thing, oldest first.
func (r *Repository) ListReviewsForThing(ctx context.Context, thingID int64) ([]*model.Review, error) {
	query := `
		SELECT
			rev.id, rev.rating, rev.text, rev.thing_id, rev.date_created,
			u.id, u.user_name, u.full_name, u.nickname, u.date_created, u.date_modified
		FROM thingful_reviews rev
		JOIN thingful_users u ON u.id = rev.user_id
		WHERE rev.thing_id = $1
		ORDER BY rev.date_created, rev.id
	`

	rows, err := r.pool.Query(ctx, query, thingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*model.Review, 0)
	for rows.Next() {
		var rev model.Review
		err := rows.Scan(
			&rev.ID,
			&rev.Rating,
			&rev.Text,
			&rev.ThingID,
			&rev.DateCreated,
			&rev.Author.ID,
			&rev.Author.UserName,
			&rev.Author.FullName,
			&rev.Author.Nickname,
			&rev.Author.DateCreated,
			&rev.Author.DateModified,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, &rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

// CreateThing inserts a thing owned by thing.Author.ID.
func (r *Repository) CreateThing(ctx context.Context, thing *model.Thing) error {
	query := `
		INSERT INTO thingful_things (title, content, image, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date_created
	`
	err := r.pool.QueryRow(ctx, query, thing.Title, thing.Content, thing.Image, thing.Author.ID).
		Scan(&thing.ID, &thing.DateCreated)
	if err != nil {
		return fmt.Errorf("failed to create thing: %w", err)
	}
	return nil
}

// CreateReview inserts a review written by review.Author.ID.
func (r *Repository) CreateReview(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO thingful_reviews (text, rating, thing_id, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date_created
	`
	err := r.pool.QueryRow(ctx, query, review.Text, review.Rating, review.ThingID, review.Author.ID).
		Scan(&review.ID, &review.DateCreated)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func scanThing(row pgx.Row) (*model.Thing, error) {
	var thing model.Thing
	err := row.Scan(
		&thing.ID,
		&thing.Title,
		&thing.Content,
		&thing.Image,
		&thing.DateCreated,
		&thing.AverageReviewRating,
		&thing.NumberOfReviews,
		&thing.Author.ID,
		&thing.Author.UserName,
		&thing.Author.FullName,
		&thing.Author.Nickname,
		&thing.Author.DateCreated,
		&thing.Author.DateModified,
	)
	if err != nil {
		return nil, err
	}
	return &thing, nil
}
