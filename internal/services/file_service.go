package services

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"panorama-service/internal/apperrors"
	"panorama-service/internal/repository"
	"panorama-service/internal/services/caches"
	"panorama-service/internal/storage"
)

// Cache hint values reported in the X-Cache response header.
const (
	SourceHit304     = "HIT-304"
	SourceHitMemory  = "HIT-MEMORY"
	SourceMissStream = "MISS-STREAM"
)

// cacheableExtensions is the allow-list of extensions eligible for the
// in-process cache. Anything else always streams.
var cacheableExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true,
	".svg": true, ".mp4": true, ".webm": true, ".pdf": true,
}

// FileQuery is the typed form of the file-resolution query parameters.
// Exactly one resolution mode applies: direct key, numeric id, or signature
// with an optional panorama filter.
type FileQuery struct {
	Key        string
	ID         *int64
	Signature  string
	PanoramaID *int64
}

// ParseFileQuery validates the raw query string values into a FileQuery,
// failing with InvalidArgument on anything malformed.
func ParseFileQuery(key, idStr, sig, panoramaIDStr string) (FileQuery, error) {
	q := FileQuery{Key: key, Signature: sig}
	if idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return q, apperrors.InvalidArgumentf("Invalid id: %q", idStr)
		}
		q.ID = &id
	}
	if panoramaIDStr != "" {
		pid, err := strconv.ParseInt(panoramaIDStr, 10, 64)
		if err != nil {
			return q, apperrors.InvalidArgumentf("Invalid panoramaId: %q", panoramaIDStr)
		}
		q.PanoramaID = &pid
	}
	if q.Key == "" && q.ID == nil && q.Signature == "" {
		return q, apperrors.InvalidArgument("one of key, id or signature is required")
	}
	return q, nil
}

// ByteRange is a parsed Range request. End is -1 for open-ended ranges.
type ByteRange struct {
	Start int64
	End   int64
}

// FetchResult describes how a resolved file should be served. Exactly one of
// NotModified, Data, or Body is set.
type FetchResult struct {
	Source      string
	NotModified bool
	Info        storage.ObjectInfo
	Data        []byte
	Body        io.ReadCloser

	// Range response details; TotalSize is -1 when unknown.
	Partial    bool
	RangeStart int64
	RangeEnd   int64
	TotalSize  int64
}

// FileService resolves file queries against the rendered-image store and
// serves bytes through the memory cache or by streaming from object storage.
type FileService struct {
	Repo       repository.RenderedImageRepository
	Store      storage.ObjectStore
	Cache      *caches.MemoryCache
	MaxPayload int64
}

// NewFileService wires a FileService. The cache instance is injected so tests
// can isolate state per test.
func NewFileService(repo repository.RenderedImageRepository, store storage.ObjectStore, cache *caches.MemoryCache, maxPayload int64) *FileService {
	if maxPayload <= 0 {
		maxPayload = 2 * 1024 * 1024
	}
	return &FileService{Repo: repo, Store: store, Cache: cache, MaxPayload: maxPayload}
}

// ResolveKey maps a FileQuery to a storage key. A direct key wins without any
// lookup; a numeric id or a signature does a single point lookup.
func (s *FileService) ResolveKey(q FileQuery) (string, error) {
	if q.Key != "" {
		return q.Key, nil
	}
	if q.ID != nil {
		img, err := s.Repo.GetByID(*q.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", apperrors.NotFoundf("Not found by id %d", *q.ID)
			}
			return "", errors.Wrap(err, "rendered image lookup by id failed")
		}
		return img.StorageKey, nil
	}
	img, err := s.Repo.GetBySignature(q.Signature, q.PanoramaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NotFoundf("Not found by signature %q", q.Signature)
		}
		return "", errors.Wrap(err, "rendered image lookup by signature failed")
	}
	return img.StorageKey, nil
}

// IsCacheEligible reports whether a storage key's extension is on the cache
// allow-list.
func IsCacheEligible(key string) bool {
	return cacheableExtensions[strings.ToLower(filepath.Ext(key))]
}

// ServeFile runs the full serving order for a resolved query: conditional 304
// against the known ETag, in-memory payload, then object-store fetch with
// cache population for small files, and a streaming fallback for everything
// else. Metadata (HEAD) failures are recoverable and drop through to the
// streaming path; streamed GET failures surface as NotFound or Upstream.
func (s *FileService) ServeFile(ctx context.Context, q FileQuery, ifNoneMatch string, rng *ByteRange) (*FetchResult, error) {
	key, err := s.ResolveKey(q)
	if err != nil {
		return nil, err
	}

	eligible := IsCacheEligible(key)
	if eligible {
		if entry := s.Cache.Get(key); entry != nil {
			if ifNoneMatch != "" && etagMatch(ifNoneMatch, entry.ETag) {
				return &FetchResult{Source: SourceHit304, NotModified: true, Info: entryInfo(entry)}, nil
			}
			if entry.Data != nil && rng == nil {
				return &FetchResult{Source: SourceHitMemory, Info: entryInfo(entry), Data: entry.Data}, nil
			}
		}
	}

	// Cache miss (or range / oversized entry): consult the object store.
	info, statErr := s.Store.Stat(ctx, key)
	if statErr != nil {
		log.Printf("HEAD failed for key=%s, falling back to streaming: %v", key, statErr)
		return s.stream(ctx, key, rng, nil)
	}

	if eligible {
		entry := &caches.Entry{
			ContentType:   info.ContentType,
			ContentLength: info.ContentLength,
			LastModified:  info.LastModified,
			ETag:          info.ETag,
			CachedAt:      time.Now(),
		}
		// A metadata refresh must not evict a payload that is still valid;
		// range requests land here with the full entry already cached.
		if prev := s.Cache.Get(key); prev != nil && prev.Data != nil && prev.ETag == info.ETag {
			entry.Data = prev.Data
			entry.ContentLength = prev.ContentLength
		}
		s.Cache.Set(key, entry)
	}

	if ifNoneMatch != "" && etagMatch(ifNoneMatch, info.ETag) {
		return &FetchResult{Source: SourceHit304, NotModified: true, Info: info}, nil
	}

	if eligible && rng == nil && info.ContentLength > 0 && info.ContentLength < s.MaxPayload {
		body, getInfo, err := s.Store.Get(ctx, key)
		if err != nil {
			return nil, s.classifyGetError(err, key)
		}
		defer body.Close()
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, apperrors.Upstream(err, "reading object body failed")
		}
		s.Cache.Set(key, &caches.Entry{
			ContentType:   getInfo.ContentType,
			ContentLength: int64(len(data)),
			LastModified:  getInfo.LastModified,
			ETag:          getInfo.ETag,
			Data:          data,
			CachedAt:      time.Now(),
		})
		served := storage.ObjectInfo{
			ContentType:   getInfo.ContentType,
			ContentLength: int64(len(data)),
			LastModified:  getInfo.LastModified,
			ETag:          getInfo.ETag,
		}
		return &FetchResult{Source: SourceMissStream, Info: served, Data: data}, nil
	}

	// Too large for the memory tier, a range request, or not cache-eligible.
	return s.stream(ctx, key, rng, &info)
}

// stream pipes bytes from the object store, ranged when requested. total is
// the full object size when known from a prior HEAD.
func (s *FileService) stream(ctx context.Context, key string, rng *ByteRange, total *storage.ObjectInfo) (*FetchResult, error) {
	if rng != nil {
		body, info, err := s.Store.GetRange(ctx, key, rng.Start, rng.End)
		if err != nil {
			return nil, s.classifyGetError(err, key)
		}
		totalSize := int64(-1)
		if total != nil {
			totalSize = total.ContentLength
		}
		rangeEnd := rng.End
		if rangeEnd < 0 {
			if totalSize > 0 {
				rangeEnd = totalSize - 1
			} else {
				rangeEnd = rng.Start + info.ContentLength - 1
			}
		}
		return &FetchResult{
			Source:     SourceMissStream,
			Info:       info,
			Body:       body,
			Partial:    true,
			RangeStart: rng.Start,
			RangeEnd:   rangeEnd,
			TotalSize:  totalSize,
		}, nil
	}

	body, info, err := s.Store.Get(ctx, key)
	if err != nil {
		return nil, s.classifyGetError(err, key)
	}
	return &FetchResult{Source: SourceMissStream, Info: info, Body: body}, nil
}

// Warm pre-populates the cache for a query by running the normal serving
// order and discarding the response. Streamed bodies are closed unread;
// warming only ever holds what a regular request would have cached.
func (s *FileService) Warm(ctx context.Context, q FileQuery) error {
	result, err := s.ServeFile(ctx, q, "", nil)
	if err != nil {
		return err
	}
	if result.Body != nil {
		result.Body.Close()
	}
	return nil
}

func (s *FileService) classifyGetError(err error, key string) error {
	if s.Store.IsNotFound(err) {
		return apperrors.NotFoundf("no object at key %q", key)
	}
	return apperrors.Upstream(err, "object store GET failed for key "+key)
}

func entryInfo(e *caches.Entry) storage.ObjectInfo {
	return storage.ObjectInfo{
		ContentType:   e.ContentType,
		ContentLength: e.ContentLength,
		LastModified:  e.LastModified,
		ETag:          e.ETag,
	}
}

// etagMatch compares If-None-Match against an ETag, tolerating quoting
// differences and weak validators.
func etagMatch(clientTag, etag string) bool {
	norm := func(s string) string {
		s = strings.TrimSpace(s)
		s = strings.TrimPrefix(s, "W/")
		return strings.Trim(s, `"`)
	}
	if clientTag == "*" {
		return etag != ""
	}
	for _, candidate := range strings.Split(clientTag, ",") {
		if norm(candidate) == norm(etag) && etag != "" {
			return true
		}
	}
	return false
}
