package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        int64     `json:"review_id"`
	PlaceID   int64     `json:"place_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	ImageURLs []string  `json:"image_urls"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewImage is an uploaded file attached to a new review.
type ReviewImage struct {
	Filename string
	Data     []byte
}

type CreateReviewParams struct {
	PlaceID int64
	UserID  uuid.UUID
	Rating  int
	Content string
	Images  []ReviewImage
}

type ReviewPage struct {
	Reviews  []Review `json:"reviews"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	Nickname  string    `json:"nickname"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `json:"updated_at"`
}
