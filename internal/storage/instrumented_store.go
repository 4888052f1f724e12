package storage

import (
	"context"
	"io"
	"time"

	"panorama-service/internal/metrics"
)

// InstrumentedStore decorates an ObjectStore with Prometheus timings and a
// running count of bytes read back on the serving path.
type InstrumentedStore struct {
	inner ObjectStore
	m     *metrics.Metrics
}

// NewInstrumentedStore wraps store so every backend call is timed.
func NewInstrumentedStore(store ObjectStore, m *metrics.Metrics) *InstrumentedStore {
	return &InstrumentedStore{inner: store, m: m}
}

func (s *InstrumentedStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	started := time.Now()
	info, err := s.inner.Stat(ctx, key)
	s.m.ObserveStoreOperation("stat", time.Since(started).Seconds())
	return info, err
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	started := time.Now()
	body, info, err := s.inner.Get(ctx, key)
	s.m.ObserveStoreOperation("get", time.Since(started).Seconds())
	if err != nil {
		return nil, info, err
	}
	return &countingReadCloser{rc: body, m: s.m}, info, nil
}

func (s *InstrumentedStore) GetRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, ObjectInfo, error) {
	started := time.Now()
	body, info, err := s.inner.GetRange(ctx, key, start, end)
	s.m.ObserveStoreOperation("get_range", time.Since(started).Seconds())
	if err != nil {
		return nil, info, err
	}
	return &countingReadCloser{rc: body, m: s.m}, info, nil
}

func (s *InstrumentedStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	started := time.Now()
	err := s.inner.Put(ctx, key, r, size, contentType)
	s.m.ObserveStoreOperation("put", time.Since(started).Seconds())
	return err
}

func (s *InstrumentedStore) IsNotFound(err error) bool {
	return s.inner.IsNotFound(err)
}

// countingReadCloser reports bytes to the metrics counter as they are read,
// so partially-consumed streams still count what actually went out.
type countingReadCloser struct {
	rc io.ReadCloser
	m  *metrics.Metrics
}

func (c *countingReadCloser) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	c.m.AddStreamedBytes(int64(n))
	return n, err
}

func (c *countingReadCloser) Close() error { return c.rc.Close() }
