// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"context"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// CRLCacheConfig holds configuration for the CRL cache.
type CRLCacheConfig struct {
	MaxSize int           // Maximum number of CRLs kept, least recently used evicted first
	TTL     time.Duration // Lifetime of an entry after it was written
}

// DefaultCRLCacheConfig is used for zero fields of a [CRLCacheConfig].
var DefaultCRLCacheConfig = CRLCacheConfig{
	MaxSize: 10,
	TTL:     60 * time.Minute,
}

// CRLLoader downloads and decodes the CRL published at uri.
type CRLLoader func(ctx context.Context, uri string) (*x509.RevocationList, error)

// crlCacheEntry represents a cached CRL with its expiry.
type crlCacheEntry struct {
	crl       *x509.RevocationList
	expiresAt time.Time
	uri       string // Source URL for debugging
}

// CRLCache is a bounded, write-expiring CRL cache keyed by lower-cased URI.
//
// Concurrent lookups of the same missing key share a single load and all
// receive its outcome. Failed loads are not cached.
//
// Thread Safety: Safe for concurrent use.
type CRLCache struct {
	entries *lru.Cache
	ttl     time.Duration
	group   singleflight.Group
	load    CRLLoader
	metrics *Metrics
	now     func() time.Time
}

// NewCRLCache creates a cache that fills misses with load.
//
// Parameters:
//   - cfg: Capacity and TTL, nil or zero fields use DefaultCRLCacheConfig
//   - load: Loader invoked on a miss
//   - metrics: Collectors for hit/miss accounting, nil for unregistered ones
//
// Returns:
//   - *CRLCache: New cache
//   - error: Error if the configuration is invalid
func NewCRLCache(cfg *CRLCacheConfig, load CRLLoader, metrics *Metrics) (*CRLCache, error) {
	c := DefaultCRLCacheConfig
	if cfg != nil {
		if cfg.MaxSize != 0 {
			c.MaxSize = cfg.MaxSize
		}
		if cfg.TTL != 0 {
			c.TTL = cfg.TTL
		}
	}
	if c.MaxSize < 0 {
		return nil, fmt.Errorf("verifier: CRL cache size must be positive, got %d", c.MaxSize)
	}
	if c.TTL < 0 {
		return nil, fmt.Errorf("verifier: CRL cache TTL must be positive, got %s", c.TTL)
	}
	if load == nil {
		return nil, fmt.Errorf("verifier: CRL cache requires a loader")
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	entries, err := lru.New(c.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("verifier: failed to create CRL cache: %w", err)
	}

	return &CRLCache{
		entries: entries,
		ttl:     c.TTL,
		load:    load,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// cacheKey normalizes uri for lookups. The original uri is still used for
// the download.
func cacheKey(uri string) string { return strings.ToLower(uri) }

// lookup returns a live entry for key, dropping it when expired.
func (c *CRLCache) lookup(key string) (*x509.RevocationList, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}

	entry := v.(*crlCacheEntry)
	if !c.now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}

	return entry.crl, true
}

// Get returns the CRL published at uri, loading it on a miss.
//
// Waiters stop waiting when ctx is done; the shared load itself is bounded
// by the transport timeouts rather than by any single caller's context.
func (c *CRLCache) Get(ctx context.Context, uri string) (*x509.RevocationList, error) {
	key := cacheKey(uri)

	if crl, ok := c.lookup(key); ok {
		c.metrics.recordCacheLookup(true)
		return crl, nil
	}
	c.metrics.recordCacheLookup(false)

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A load that finished between lookup and DoChan already filled the entry.
		if crl, ok := c.lookup(key); ok {
			return crl, nil
		}

		crl, err := c.load(loadCtx, uri)
		if err != nil {
			return nil, err
		}
		if crl == nil {
			return nil, ErrEmptyResponse
		}

		c.entries.Add(key, &crlCacheEntry{
			crl:       crl,
			expiresAt: c.now().Add(c.ttl),
			uri:       uri,
		})
		return crl, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*x509.RevocationList), nil
	}
}

// Len returns the number of cached entries, including expired ones not yet
// dropped.
func (c *CRLCache) Len() int { return c.entries.Len() }

// Purge evicts every entry. Safe to call more than once.
func (c *CRLCache) Purge() { c.entries.Purge() }
