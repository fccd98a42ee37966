package review

import "time"

type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
	MediaBook  MediaType = "book"
	MediaPlay  MediaType = "play"
)

// Review is a single user review with its media metadata inlined.
type Review struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	AuthorName       string    `gorm:"column:author_name;size:255;not null;index"`
	AuthorTelegramID *int64    `gorm:"column:author_telegram_id;type:bigint;index"`
	MediaType        MediaType `gorm:"column:media_type;size:16;not null;index"`
	MediaTitle       string    `gorm:"column:media_title;size:255;not null"`
	MediaYear        *int      `gorm:"column:media_year"`
	Rating           int       `gorm:"column:rating;not null"`
	Text             string    `gorm:"column:text;type:text;not null"`
	ContainsSpoilers bool      `gorm:"column:contains_spoilers;not null"`
	ImagePath        *string   `gorm:"column:image_path;size:512"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (Review) TableName() string { return "reviews" }
