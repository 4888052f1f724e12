package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"panorama-service/internal/extraction"
	"panorama-service/internal/models"
	"panorama-service/internal/repository"
	"panorama-service/internal/signature"
	"panorama-service/internal/storage"
)

// IngestService registers render-farm output: single composite images, or
// archives of them, whose filenames are valid signatures.
type IngestService struct {
	Repo  repository.RenderedImageRepository
	Store storage.ObjectStore
}

// NewIngestService creates an IngestService with the given repository and
// object store.
func NewIngestService(repo repository.RenderedImageRepository, store storage.ObjectStore) *IngestService {
	return &IngestService{Repo: repo, Store: store}
}

// IngestResult reports the outcome for one file of an upload.
type IngestResult struct {
	Filename  string `json:"filename"`
	Signature string `json:"signature,omitempty"`
	ImageID   int64  `json:"image_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func isArchiveUpload(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zip", ".tar", ".gz", ".7z":
		return true
	}
	return false
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// IngestUpload processes one multipart upload. Archives are extracted and
// each member is registered individually; anything else is treated as a
// single composite. Per-file failures don't abort the batch.
func (s *IngestService) IngestUpload(ctx context.Context, fileHeader *multipart.FileHeader) ([]IngestResult, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, errors.Wrap(err, "could not open uploaded file")
	}
	defer src.Close()

	if !isArchiveUpload(fileHeader.Filename) {
		res := s.registerReader(ctx, fileHeader.Filename, src, fileHeader.Size)
		return []IngestResult{res}, nil
	}

	// Save the archive to a temporary file before extraction
	ext := filepath.Ext(fileHeader.Filename)
	tempArchive, err := os.CreateTemp(os.TempDir(), "bundle-*"+ext)
	if err != nil {
		return nil, errors.Wrap(err, "could not create temporary file for bundle")
	}
	tempArchivePath := tempArchive.Name()
	_, err = io.Copy(tempArchive, src)
	tempArchive.Close()
	if err != nil {
		os.Remove(tempArchivePath)
		return nil, errors.Wrap(err, "failed to write uploaded bundle")
	}

	files, destDir, err := extraction.ExtractBundle(tempArchivePath)
	os.Remove(tempArchivePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract bundle")
	}
	defer os.RemoveAll(destDir)

	if len(files) == 0 {
		return nil, fmt.Errorf("bundle contains no files")
	}

	results := make([]IngestResult, 0, len(files))
	for _, path := range files {
		results = append(results, s.registerPath(ctx, path))
	}
	return results, nil
}

func (s *IngestService) registerPath(ctx context.Context, path string) IngestResult {
	f, err := os.Open(path)
	if err != nil {
		return IngestResult{Filename: filepath.Base(path), Error: err.Error()}
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return IngestResult{Filename: filepath.Base(path), Error: err.Error()}
	}
	return s.registerReader(ctx, filepath.Base(path), f, stat.Size())
}

// registerReader validates one composite's filename as a signature, uploads
// the bytes, and records the row. The storage key embeds a fresh uuid so
// re-ingesting a signature never overwrites a served object in place.
func (s *IngestService) registerReader(ctx context.Context, filename string, r io.Reader, size int64) IngestResult {
	res := IngestResult{Filename: filename}

	decoded, err := signature.Decode(filename)
	if err != nil {
		res.Error = fmt.Sprintf("filename is not a valid signature: %v", err)
		return res
	}
	res.Signature = filename

	ext := filepath.Ext(filename)
	storageKey := fmt.Sprintf("rendered/%s%s", uuid.New(), ext)
	contentType := contentTypeForExt(ext)

	if err := s.Store.Put(ctx, storageKey, r, size, contentType); err != nil {
		res.Error = errors.Wrap(err, "failed to upload to object store").Error()
		return res
	}

	img := &models.RenderedImage{
		Signature:   filename,
		PanoramaID:  decoded.PanoramaID,
		BaseAssetID: decoded.BaseAssetID,
		StorageKey:  storageKey,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   time.Now(),
	}
	if err := s.Repo.Create(img); err != nil {
		res.Error = errors.Wrap(err, "failed to save metadata to database").Error()
		return res
	}
	res.ImageID = img.ID
	return res
}
