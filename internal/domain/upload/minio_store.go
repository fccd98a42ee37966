package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinioOptions configures the S3-compatible asset backend.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps review images in an S3-compatible bucket using the same
// "reviews/{id}/{token}{ext}" keys as the local layout.
type MinioStore struct {
	client   *minio.Client
	bucket   string
	log      zerolog.Logger
	observer Observer
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(ctx context.Context, opts MinioOptions, log zerolog.Logger, observer Observer) (*MinioStore, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioStore{
		client:   client,
		bucket:   opts.Bucket,
		log:      log.With().Str("component", "asset_store").Str("bucket", opts.Bucket).Logger(),
		observer: observer,
	}, nil
}

// Save uploads data as a single object.
func (m *MinioStore) Save(ctx context.Context, reviewID int64, data []byte, ext string) (string, error) {
	start := time.Now()
	key := RelativePath(reviewID, newFileName(ext))
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: ContentTypeForExt(ext),
	})
	if err != nil {
		err = fmt.Errorf("put object: %w", err)
	}
	if m.observer != nil {
		m.observer.RecordSave(time.Since(start), len(data), err)
	}
	if err != nil {
		return "", err
	}
	return key, nil
}

// Purge removes every object under the review prefix. It stops at the first
// listing error and logs it; individual remove failures are logged and skipped.
func (m *MinioStore) Purge(ctx context.Context, reviewID int64) {
	start := time.Now()
	err := m.purge(ctx, reviewID)
	if m.observer != nil {
		m.observer.RecordPurge(time.Since(start), err)
	}
	if err != nil {
		m.log.Warn().Err(err).Int64("review_id", reviewID).Msg("review asset purge failed")
	}
}

func (m *MinioStore) purge(ctx context.Context, reviewID int64) error {
	prefix := RelativePath(reviewID, "") + "/"
	var errs []error
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			errs = append(errs, fmt.Errorf("list objects: %w", obj.Err))
			break
		}
		if err := m.client.RemoveObject(ctx, m.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", obj.Key, err))
		}
	}
	return errors.Join(errs...)
}

// ReviewIDs lists the first-level prefixes under "reviews/".
func (m *MinioStore) ReviewIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: ReviewsDir + "/"}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, ReviewsDir+"/"), "/")
		if id, ok := parseReviewID(name); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Open streams a stored object for serving under the upload mount.
func (m *MinioStore) Open(ctx context.Context, relPath string) (*minio.Object, minio.ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, relPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, fmt.Errorf("get object: %w", err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, minio.ObjectInfo{}, fmt.Errorf("stat object: %w", err)
	}
	return obj, info, nil
}

// ContentTypeForExt maps an allowed image extension to its MIME type.
func ContentTypeForExt(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
