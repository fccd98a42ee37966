package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"mediareviews/internal/domain/upload"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

type Service struct {
	repo      Repository
	store     upload.Store
	validator *upload.Validator
	log       zerolog.Logger
}

func NewService(repo Repository, store upload.Store, validator *upload.Validator, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		validator: validator,
		log:       log.With().Str("component", "review_service").Logger(),
	}
}

// Validator exposes the intake rules so handlers can cap request bodies.
func (s *Service) Validator() *upload.Validator { return s.validator }

func (s *Service) Create(ctx context.Context, req CreateReviewRequest) (*Review, error) {
	rv := req.toEntity()
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Review, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id int64) (*Review, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateReviewRequest) (*Review, error) {
	return s.repo.Update(ctx, id, req.changes())
}

// Delete removes the record and then purges its assets. The purge runs
// detached from ctx and its outcome never changes the result.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.store.Purge(context.WithoutCancel(ctx), id)
	return nil
}

// AttachImage validates and stores c for review id and points the review at
// the new file. Nothing is written when the review is missing or c is
// rejected. Earlier images stay on disk until the review is deleted.
func (s *Service) AttachImage(ctx context.Context, id int64, c upload.Candidate) (*Review, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	ext, err := s.validator.Validate(c)
	if err != nil {
		return nil, err
	}

	rel, err := s.store.Save(ctx, id, c.Data, ext)
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	rv, err := s.repo.SetImagePath(ctx, id, rel)
	if errors.Is(err, ErrNotFound) {
		// deleted while we were writing; the row is gone so the purge may run
		s.log.Warn().Int64("review_id", id).Str("path", rel).Msg("review vanished during image upload")
		s.store.Purge(context.WithoutCancel(ctx), id)
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// PurgeOrphans removes stored assets whose review no longer exists, e.g.
// after a crash between the row delete and the purge. It returns how many
// reviews were purged.
func (s *Service) PurgeOrphans(ctx context.Context, inv upload.Inventory) (int, error) {
	ids, err := inv.ReviewIDs(ctx)
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, id := range ids {
		if existing[id] {
			continue
		}
		s.store.Purge(ctx, id)
		purged++
	}
	return purged, nil
}
