package upload

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var relPathPattern = regexp.MustCompile(`^reviews/42/[0-9a-f]{32}\.jpg$`)

func newTestStore(t *testing.T, observer Observer) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"), zerolog.Nop(), observer)
	require.NoError(t, err)
	return store
}

func TestNewLocalStore_RequiresRoot(t *testing.T) {
	_, err := NewLocalStore("  ", zerolog.Nop(), nil)
	require.Error(t, err)
}

func TestLocalStore_SaveWritesUnderReviewDir(t *testing.T) {
	store := newTestStore(t, nil)
	data := jpegPayload(10)

	rel, err := store.Save(context.Background(), 42, data, ".jpg")
	require.NoError(t, err)
	assert.Regexp(t, relPathPattern, rel)

	got, err := os.ReadFile(filepath.Join(store.Root(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStore_SaveIntoExistingDir(t *testing.T) {
	store := newTestStore(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root(), "reviews", "42"), 0o755))

	_, err := store.Save(context.Background(), 42, jpegPayload(4), ".jpg")
	require.NoError(t, err)
}

func TestLocalStore_ConcurrentSavesProduceDistinctFiles(t *testing.T) {
	store := newTestStore(t, nil)

	const n = 16
	paths := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rel, err := store.Save(context.Background(), 42, jpegPayload(8+i), ".jpg")
			assert.NoError(t, err)
			paths[i] = rel
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i, rel := range paths {
		require.False(t, seen[rel], "duplicate path %s", rel)
		seen[rel] = true

		info, err := os.Stat(filepath.Join(store.Root(), filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, int64(8+i), info.Size())
	}

	entries, err := os.ReadDir(filepath.Join(store.Root(), "reviews", "42"))
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

func TestLocalStore_PurgeWithoutAssetsIsNoop(t *testing.T) {
	store := newTestStore(t, nil)

	assert.NotPanics(t, func() { store.Purge(context.Background(), 7) })
	_, err := os.Stat(filepath.Join(store.Root(), "reviews", "7"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_PurgeRemovesReviewDirOnly(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	_, err := store.Save(ctx, 1, jpegPayload(4), ".jpg")
	require.NoError(t, err)
	_, err = store.Save(ctx, 1, jpegPayload(4), ".png")
	require.NoError(t, err)
	other, err := store.Save(ctx, 2, jpegPayload(4), ".gif")
	require.NoError(t, err)

	store.Purge(ctx, 1)

	_, err = os.Stat(filepath.Join(store.Root(), "reviews", "1"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store.Root(), filepath.FromSlash(other)))
	assert.NoError(t, err)

	// second purge of the same review stays a no-op
	store.Purge(ctx, 1)
}

func TestLocalStore_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observer, err := NewPrometheusObserver("test_assets", reg)
	require.NoError(t, err)
	store := newTestStore(t, observer)
	ctx := context.Background()

	_, err = store.Save(ctx, 3, jpegPayload(10), ".jpg")
	require.NoError(t, err)
	_, err = store.Save(ctx, 3, jpegPayload(5), ".jpg")
	require.NoError(t, err)
	store.Purge(ctx, 3)

	assert.Equal(t, float64(15), testutil.ToFloat64(observer.savedBytes))
	assert.Equal(t, 2, testutil.CollectAndCount(observer.duration))
	assert.Equal(t, float64(0), testutil.ToFloat64(observer.errors.WithLabelValues("save")))
}

func TestNewPrometheusObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusObserver("shared", reg)
	require.NoError(t, err)
	second, err := NewPrometheusObserver("shared", reg)
	require.NoError(t, err)

	second.RecordSave(time.Millisecond, 7, nil)
	assert.Equal(t, float64(7), testutil.ToFloat64(first.savedBytes))
}

func TestPrometheusObserver_NilSafe(t *testing.T) {
	var o *PrometheusObserver
	assert.NotPanics(t, func() {
		o.RecordSave(time.Millisecond, 1, nil)
		o.RecordPurge(time.Millisecond, nil)
	})
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "reviews/9/abc.png", RelativePath(9, "abc.png"))
	assert.Equal(t, "reviews/9", RelativePath(9, ""))
}

func TestContentTypeForExt(t *testing.T) {
	assert.Equal(t, "image/png", ContentTypeForExt(".png"))
	assert.Equal(t, "image/gif", ContentTypeForExt(".gif"))
	assert.Equal(t, "image/webp", ContentTypeForExt(".webp"))
	assert.Equal(t, "image/jpeg", ContentTypeForExt(".jpeg"))
	assert.Equal(t, "image/jpeg", ContentTypeForExt(".jpg"))
}

func TestLocalStore_ReviewIDs(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	ids, err := store.ReviewIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, id := range []int64{3, 11} {
		_, err := store.Save(ctx, id, jpegPayload(4), ".jpg")
		require.NoError(t, err)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root(), "reviews", "tmp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "reviews", "12"), []byte("x"), 0o644))

	ids, err = store.ReviewIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{3, 11}, ids)
}

func TestLocalStore_PurgeFailureIsSwallowed(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	reg := prometheus.NewRegistry()
	observer, err := NewPrometheusObserver("test_assets", reg)
	require.NoError(t, err)
	store := newTestStore(t, observer)
	ctx := context.Background()

	_, err = store.Save(ctx, 5, jpegPayload(4), ".jpg")
	require.NoError(t, err)
	parent := filepath.Join(store.Root(), "reviews")
	require.NoError(t, os.Chmod(parent, 0o555))
	t.Cleanup(func() { _ = os.Chmod(parent, 0o755) })

	assert.NotPanics(t, func() { store.Purge(ctx, 5) })

	_, err = os.Stat(filepath.Join(parent, "5"))
	assert.NoError(t, err, "review dir stays when it cannot be removed")
	assert.Equal(t, float64(1), testutil.ToFloat64(observer.errors.WithLabelValues("purge")))
}
