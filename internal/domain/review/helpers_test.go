package review

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"mediareviews/internal/database"
	"mediareviews/internal/domain/upload"
)

type testEnv struct {
	service *Service
	repo    *GormRepository
	store   *upload.LocalStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:review_test_%s?mode=memory&cache=shared", name), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &Review{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store, err := upload.NewLocalStore(filepath.Join(t.TempDir(), "uploads"), zerolog.Nop(), nil)
	require.NoError(t, err)

	repo := NewRepository(db)
	return &testEnv{
		service: NewService(repo, store, upload.NewValidator(upload.DefaultMaxFileSize), zerolog.Nop()),
		repo:    repo,
		store:   store,
	}
}

func ptr[T any](v T) *T { return &v }

func validCreate() CreateReviewRequest {
	return CreateReviewRequest{
		AuthorName: ptr("ann"),
		MediaType:  ptr("book"),
		MediaTitle: ptr("Dune"),
		MediaYear:  ptr(1965),
		Rating:     ptr(9),
		Text:       ptr("great worldbuilding"),
	}
}

func (e *testEnv) createReview(t *testing.T) *Review {
	t.Helper()
	rv, err := e.service.Create(context.Background(), validCreate())
	require.NoError(t, err)
	return rv
}

func (e *testEnv) reviewDir(id int64) string {
	return filepath.Join(e.store.Root(), "reviews", fmt.Sprint(id))
}

func jpegBytes(n int) []byte {
	data := make([]byte, n)
	copy(data, []byte{0xFF, 0xD8, 0xFF})
	return data
}
