// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/sanitize"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRequest represents the request body for creating a user.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	UserName string `json:"user_name"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// LoginRequest represents the request body for a login.
type LoginRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token returned by a login.
type LoginResponse struct {
	AuthToken string `json:"authToken"`
}

// UserResponse represents a user in API responses. The password digest is
// never part of it.
type UserResponse struct {
	ID           string     `json:"id"`
	UserName     string     `json:"user_name"`
	FullName     string     `json:"full_name"`
	Nickname     string     `json:"nickname"`
	DateCreated  time.Time  `json:"date_created"`
	DateModified *time.Time `json:"date_modified,omitempty"`
}

// ThingResponse represents a thing with its author and review aggregates.
type ThingResponse struct {
	ID                  int64        `json:"id"`
	Title               string       `json:"title"`
	Content             string       `json:"content"`
	Image               string       `json:"image"`
	DateCreated         time.Time    `json:"date_created"`
	AverageReviewRating float64      `json:"average_review_rating"`
	NumberOfReviews     int          `json:"number_of_reviews"`
	User                UserResponse `json:"user"`
}

// ReviewResponse represents a review with its author.
type ReviewResponse struct {
	ID          int64        `json:"id"`
	Rating      int          `json:"rating"`
	Text        string       `json:"text"`
	ThingID     int64        `json:"thing_id"`
	DateCreated time.Time    `json:"date_created"`
	User        UserResponse `json:"user"`
}

// ToUserResponse converts a User to its sanitized response form.
func ToUserResponse(u *model.User, s sanitize.Sanitizer) UserResponse {
	return UserResponse{
		ID:           u.ID,
		UserName:     s.Sanitize(u.UserName),
		FullName:     s.Sanitize(u.FullName),
		Nickname:     s.Sanitize(u.NicknameOrEmpty()),
		DateCreated:  u.DateCreated,
		DateModified: u.DateModified,
	}
}

// ToThingResponse converts a Thing to its sanitized response form.
func ToThingResponse(t *model.Thing, s sanitize.Sanitizer) ThingResponse {
	return ThingResponse{
		ID:                  t.ID,
		Title:               s.Sanitize(t.Title),
		Content:             s.Sanitize(t.Content),
		Image:               t.Image,
		DateCreated:         t.DateCreated,
		AverageReviewRating: t.AverageReviewRating,
		NumberOfReviews:     t.NumberOfReviews,
		User:                ToUserResponse(&t.Author, s),
	}
}

// ToThingListResponse converts things, returning an empty slice rather than nil.
func ToThingListResponse(things []*model.Thing, s sanitize.Sanitizer) []ThingResponse {
	out := make([]ThingResponse, 0, len(things))
	for _, t := range things {
		out = append(out, ToThingResponse(t, s))
	}
	return out
}

// ToReviewListResponse converts reviews, returning an empty slice rather than nil.
func ToReviewListResponse(reviews []*model.Review, s sanitize.Sanitizer) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewResponse{
			ID:          r.ID,
			Rating:      r.Rating,
			Text:        s.Sanitize(r.Text),
			ThingID:     r.ThingID,
			DateCreated: r.DateCreated,
			User:        ToUserResponse(&r.Author, s),
		})
	}
	return out
}
