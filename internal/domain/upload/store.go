package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReviewsDir is the first path segment under the upload root.
const ReviewsDir = "reviews"

// Store owns the layout of review images: one directory (or key prefix)
// per review, one randomly named file per accepted upload.
type Store interface {
	// Save persists already validated bytes and returns the slash-separated
	// path relative to the upload root.
	Save(ctx context.Context, reviewID int64, data []byte, ext string) (string, error)
	// Purge removes every asset of a review. Failures are logged, never returned.
	Purge(ctx context.Context, reviewID int64)
}

// Inventory lists the reviews that currently own stored assets.
type Inventory interface {
	ReviewIDs(ctx context.Context) ([]int64, error)
}

// RelativePath builds "reviews/{id}/{name}".
func RelativePath(reviewID int64, name string) string {
	return path.Join(ReviewsDir, strconv.FormatInt(reviewID, 10), name)
}

// newFileName returns a 128-bit random hex token followed by ext.
func newFileName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

// LocalStore keeps review images on the local filesystem.
type LocalStore struct {
	root     string
	log      zerolog.Logger
	observer Observer
}

// NewLocalStore creates the upload root if missing. observer may be nil.
func NewLocalStore(root string, log zerolog.Logger, observer Observer) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("upload root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &LocalStore{
		root:     root,
		log:      log.With().Str("component", "asset_store").Logger(),
		observer: observer,
	}, nil
}

// Root returns the filesystem directory served under the upload mount.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) reviewDir(reviewID int64) string {
	return filepath.Join(s.root, ReviewsDir, strconv.FormatInt(reviewID, 10))
}

// Save writes data to {root}/reviews/{id}/{token}{ext}.
func (s *LocalStore) Save(_ context.Context, reviewID int64, data []byte, ext string) (string, error) {
	start := time.Now()
	rel, err := s.save(reviewID, data, ext)
	if s.observer != nil {
		s.observer.RecordSave(time.Since(start), len(data), err)
	}
	return rel, err
}

func (s *LocalStore) save(reviewID int64, data []byte, ext string) (string, error) {
	dir := s.reviewDir(reviewID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create review dir: %w", err)
	}

	name := newFileName(ext)
	// O_EXCL: a concurrent upload for the same review must never be overwritten.
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return RelativePath(reviewID, name), nil
}

// Purge deletes the whole per-review directory. A missing directory is a no-op.
func (s *LocalStore) Purge(_ context.Context, reviewID int64) {
	start := time.Now()
	err := s.purge(reviewID)
	if s.observer != nil {
		s.observer.RecordPurge(time.Since(start), err)
	}
	if err != nil {
		s.log.Warn().Err(err).Int64("review_id", reviewID).Msg("review asset purge failed")
	}
}

func (s *LocalStore) purge(reviewID int64) error {
	dir := s.reviewDir(reviewID)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove review dir: %w", err)
	}
	return nil
}

// ReviewIDs returns the id of every per-review directory. Entries whose
// name is not a positive integer are skipped.
func (s *LocalStore) ReviewIDs(_ context.Context) ([]int64, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, ReviewsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reviews dir: %w", err)
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if id, ok := parseReviewID(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseReviewID(name string) (int64, bool) {
	id, err := strconv.ParseInt(name, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
