package apiclient

import (
	"time"

	"mediareviews/internal/pkg/optional"
)

// Review mirrors the API's review representation.
type Review struct {
	ID               int64     `json:"id"`
	AuthorName       string    `json:"author_name"`
	AuthorTelegramID *int64    `json:"author_telegram_id"`
	MediaType        string    `json:"media_type"`
	MediaTitle       string    `json:"media_title"`
	MediaYear        *int      `json:"media_year"`
	Rating           int       `json:"rating"`
	Text             string    `json:"text"`
	ContainsSpoilers bool      `json:"contains_spoilers"`
	ImageURL         *string   `json:"image_url"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CreateReviewInput struct {
	AuthorName       string `json:"author_name"`
	AuthorTelegramID *int64 `json:"author_telegram_id,omitempty"`
	MediaType        string `json:"media_type"`
	MediaTitle       string `json:"media_title"`
	MediaYear        *int   `json:"media_year,omitempty"`
	Rating           int    `json:"rating"`
	Text             string `json:"text"`
	ContainsSpoilers bool   `json:"contains_spoilers"`
}

// ReviewPatch sends only the fields that are set. optional.Null clears
// media_year or author_telegram_id.
type ReviewPatch struct {
	AuthorName       optional.Field[string] `json:"author_name,omitzero"`
	AuthorTelegramID optional.Field[int64]  `json:"author_telegram_id,omitzero"`
	MediaType        optional.Field[string] `json:"media_type,omitzero"`
	MediaTitle       optional.Field[string] `json:"media_title,omitzero"`
	MediaYear        optional.Field[int]    `json:"media_year,omitzero"`
	Rating           optional.Field[int]    `json:"rating,omitzero"`
	Text             optional.Field[string] `json:"text,omitzero"`
	ContainsSpoilers optional.Field[bool]   `json:"contains_spoilers,omitzero"`
}

type ListOptions struct {
	Limit      int
	Offset     int
	MediaType  string
	MinRating  int
	AuthorName string
}
