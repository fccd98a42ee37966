package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ListFilter narrows GET /reviews. Zero values mean "no filter".
type ListFilter struct {
	Limit      int
	Offset     int
	MediaType  string
	AuthorName string
	MinRating  int
}

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	List(ctx context.Context, f ListFilter) ([]Review, error)
	Update(ctx context.Context, id int64, changes map[string]any) (*Review, error)
	SetImagePath(ctx context.Context, id int64, path string) (*Review, error)
	Delete(ctx context.Context, id int64) error
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, rv *Review) error {
	if err := r.db.WithContext(ctx).Create(rv).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*Review, error) {
	var rv Review
	err := r.db.WithContext(ctx).First(&rv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}
	return &rv, nil
}

func (r *GormRepository) List(ctx context.Context, f ListFilter) ([]Review, error) {
	q := r.db.WithContext(ctx).Model(&Review{})
	if f.MediaType != "" {
		q = q.Where("media_type = ?", f.MediaType)
	}
	if f.AuthorName != "" {
		q = q.Where("author_name = ?", f.AuthorName)
	}
	if f.MinRating > 0 {
		q = q.Where("rating >= ?", f.MinRating)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []Review
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return rows, nil
}

func (r *GormRepository) Update(ctx context.Context, id int64, changes map[string]any) (*Review, error) {
	if len(changes) == 0 {
		return r.GetByID(ctx, id)
	}
	changes["updated_at"] = time.Now().UTC()

	tx := r.db.WithContext(ctx).
		Model(&Review{}).
		Where("id = ?", id).
		Updates(changes)
	if tx.Error != nil {
		return nil, fmt.Errorf("update review %d: %w", id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *GormRepository) SetImagePath(ctx context.Context, id int64, path string) (*Review, error) {
	return r.Update(ctx, id, map[string]any{"image_path": path})
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&Review{}, id)
	if tx.Error != nil {
		return fmt.Errorf("delete review %d: %w", id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistingIDs reports which of ids still have a review row.
func (r *GormRepository) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var rows []int64
	if err := r.db.WithContext(ctx).Model(&Review{}).Where("id IN ?", ids).Pluck("id", &rows).Error; err != nil {
		return nil, fmt.Errorf("lookup review ids: %w", err)
	}
	for _, id := range rows {
		found[id] = true
	}
	return found, nil
}
