package storage

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"panorama-service/internal/config"
)

// ObjectInfo is the subset of object metadata the serving path needs.
type ObjectInfo struct {
	ContentType   string
	ContentLength int64
	LastModified  time.Time
	ETag          string
}

// ObjectStore abstracts the S3-compatible backend. Only HEAD and GET
// (optionally ranged) are used on the serving path; Put exists for ingest.
// Injected into services so tests can substitute an in-memory fake.
type ObjectStore interface {
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	GetRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, ObjectInfo, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	IsNotFound(err error) bool
}

// MinioStore implements ObjectStore over a MinIO client and bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore initializes a MinIO client, ensures the bucket exists, and
// wraps both as an ObjectStore.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSSL,
	})
	if err != nil {
		return nil, err
	}
	// Ensure the bucket exists (create if not present)
	ctx := context.Background()
	exists, errBucket := minioClient.BucketExists(ctx, cfg.MinioBucket)
	if errBucket != nil {
		return nil, errBucket
	}
	if !exists {
		err = minioClient.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: ""})
		if err != nil {
			return nil, err
		}
		log.Printf("Created bucket %s\n", cfg.MinioBucket)
	}
	return &MinioStore{client: minioClient, bucket: cfg.MinioBucket}, nil
}

func infoFromStat(stat minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		ContentType:   stat.ContentType,
		ContentLength: stat.Size,
		LastModified:  stat.LastModified,
		ETag:          stat.ETag,
	}
}

// Stat issues a HEAD for the object's metadata.
func (s *MinioStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	stat, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return infoFromStat(stat), nil
}

// Get opens a full-object read.
func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, err
	}
	return obj, infoFromStat(stat), nil
}

// GetRange opens a ranged read covering bytes [start, end] inclusive. An end
// below zero reads from start to the last byte.
func (s *MinioStore) GetRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, ObjectInfo, error) {
	opts := minio.GetObjectOptions{}
	if end < 0 {
		end = 0 // minio treats (start, 0) as start-to-end
	}
	if err := opts.SetRange(start, end); err != nil {
		return nil, ObjectInfo{}, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, opts)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, err
	}
	return obj, infoFromStat(stat), nil
}

// Put uploads an object; used only by the ingest pipeline.
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// IsNotFound reports whether err is the backend's missing-key error.
func (s *MinioStore) IsNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
