package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/sync/singleflight"
)

// CachingStore wraps a remote Store with a local disk cache of whole
// artifacts. Concurrent opens of the same uncached artifact are
// deduplicated, so every machine of a cluster downloads a shared input
// once no matter how many ranks it hosts.
//
// Writes and deletes pass through to the remote store and drop the cached
// copy.
type CachingStore struct {
	remote Store
	cache  *LocalStore
	group  singleflight.Group
}

// NewCachingStore creates a CachingStore caching remote artifacts in dir.
func NewCachingStore(remote Store, dir string) *CachingStore {
	return &CachingStore{
		remote: remote,
		cache:  NewLocalStore(dir),
	}
}

// cacheKey flattens an artifact name into a single cache file name.
func cacheKey(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}

// Open returns the cached artifact, fetching it from the remote store on
// a cache miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	key := cacheKey(name)

	if b, err := s.cache.Open(ctx, key); err == nil {
		return b, nil
	}

	_, err, _ := s.group.Do(key, func() (any, error) {
		if _, err := s.cache.Open(ctx, key); err == nil {
			return nil, nil
		}
		data, err := ReadAll(ctx, s.remote, name)
		if err != nil {
			return nil, err
		}
		return nil, s.cache.Put(ctx, key, data)
	})
	if err != nil {
		return nil, err
	}

	return s.cache.Open(ctx, key)
}

// Put writes through to the remote store and invalidates the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.remote.Put(ctx, name, data); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey(name))
}

// Delete removes the artifact remotely and locally.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	if err := s.remote.Delete(ctx, name); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey(name))
}

// List lists the remote store; the cache holds hashed names only.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.remote.List(ctx, prefix)
}

// IsNotFound reports whether err indicates a missing artifact.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
