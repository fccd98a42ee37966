package review

import (
	"time"

	"mediareviews/internal/pkg/optional"
	"mediareviews/internal/pkg/validator"
)

type CreateReviewRequest struct {
	AuthorName       *string `json:"author_name" validate:"required,min=1,max=255"`
	AuthorTelegramID *int64  `json:"author_telegram_id"`
	MediaType        *string `json:"media_type" validate:"required,oneof=movie tv book play"`
	MediaTitle       *string `json:"media_title" validate:"required,min=1,max=255"`
	MediaYear        *int    `json:"media_year"`
	Rating           *int    `json:"rating" validate:"required,min=1,max=10"`
	Text             *string `json:"text" validate:"required,min=1"`
	ContainsSpoilers bool    `json:"contains_spoilers"`
}

func (r CreateReviewRequest) toEntity() *Review {
	return &Review{
		AuthorName:       *r.AuthorName,
		AuthorTelegramID: r.AuthorTelegramID,
		MediaType:        MediaType(*r.MediaType),
		MediaTitle:       *r.MediaTitle,
		MediaYear:        r.MediaYear,
		Rating:           *r.Rating,
		Text:             *r.Text,
		ContainsSpoilers: r.ContainsSpoilers,
	}
}

// UpdateReviewRequest applies only the keys present in the body. An explicit
// null clears author_telegram_id and media_year; the other fields reject it.
type UpdateReviewRequest struct {
	AuthorName       optional.Field[string] `json:"author_name" validate:"omitempty,min=1,max=255"`
	AuthorTelegramID optional.Field[int64]  `json:"author_telegram_id"`
	MediaType        optional.Field[string] `json:"media_type" validate:"omitempty,oneof=movie tv book play"`
	MediaTitle       optional.Field[string] `json:"media_title" validate:"omitempty,min=1,max=255"`
	MediaYear        optional.Field[int]    `json:"media_year"`
	Rating           optional.Field[int]    `json:"rating" validate:"omitempty,min=1,max=10"`
	Text             optional.Field[string] `json:"text" validate:"omitempty,min=1"`
	ContainsSpoilers optional.Field[bool]   `json:"contains_spoilers"`
}

// NullErrors reports non-nullable fields that were sent as null.
func (r UpdateReviewRequest) NullErrors() []validator.FieldError {
	var out []validator.FieldError
	check := func(name string, null bool) {
		if null {
			out = append(out, validator.NewFieldError(name, "Input should not be null", "not_null"))
		}
	}
	check("author_name", r.AuthorName.Null)
	check("media_type", r.MediaType.Null)
	check("media_title", r.MediaTitle.Null)
	check("rating", r.Rating.Null)
	check("text", r.Text.Null)
	check("contains_spoilers", r.ContainsSpoilers.Null)
	return out
}

// changes maps the present fields to column updates.
func (r UpdateReviewRequest) changes() map[string]any {
	out := make(map[string]any)
	if r.AuthorName.Set {
		out["author_name"] = r.AuthorName.Value
	}
	if r.AuthorTelegramID.Set {
		out["author_telegram_id"] = r.AuthorTelegramID.Ptr()
	}
	if r.MediaType.Set {
		out["media_type"] = r.MediaType.Value
	}
	if r.MediaTitle.Set {
		out["media_title"] = r.MediaTitle.Value
	}
	if r.MediaYear.Set {
		out["media_year"] = r.MediaYear.Ptr()
	}
	if r.Rating.Set {
		out["rating"] = r.Rating.Value
	}
	if r.Text.Set {
		out["text"] = r.Text.Value
	}
	if r.ContainsSpoilers.Set {
		out["contains_spoilers"] = r.ContainsSpoilers.Value
	}
	return out
}

type ReviewResponse struct {
	ID               int64     `json:"id"`
	AuthorName       string    `json:"author_name"`
	AuthorTelegramID *int64    `json:"author_telegram_id"`
	MediaType        MediaType `json:"media_type"`
	MediaTitle       string    `json:"media_title"`
	MediaYear        *int      `json:"media_year"`
	Rating           int       `json:"rating"`
	Text             string    `json:"text"`
	ContainsSpoilers bool      `json:"contains_spoilers"`
	ImageURL         *string   `json:"image_url"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToResponse renders r for the API. mount is the URL prefix the upload root
// is served under, without slashes.
func ToResponse(r *Review, mount string) ReviewResponse {
	resp := ReviewResponse{
		ID:               r.ID,
		AuthorName:       r.AuthorName,
		AuthorTelegramID: r.AuthorTelegramID,
		MediaType:        r.MediaType,
		MediaTitle:       r.MediaTitle,
		MediaYear:        r.MediaYear,
		Rating:           r.Rating,
		Text:             r.Text,
		ContainsSpoilers: r.ContainsSpoilers,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.ImagePath != nil && *r.ImagePath != "" {
		url := "/" + mount + "/" + *r.ImagePath
		resp.ImageURL = &url
	}
	return resp
}

func toResponses(rows []Review, mount string) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToResponse(&rows[i], mount))
	}
	return out
}
