package model

import "time"

// Thing is a reviewable item owned by a user.
type Thing struct {
	ID                  int64
	Title               string
	Content             string
	Image               string
	DateCreated         time.Time
	AverageReviewRating float64
	NumberOfReviews     int
	Author              User
}

// Review is a user's rating of a thing.
type Review struct {
	ID          int64
	Rating      int
	Text        string
	ThingID     int64
	DateCreated time.Time
	Author      User
}

// Review rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)
