// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingLoader returns a distinct CRL per call and counts calls per URI.
type countingLoader struct {
	mu    sync.Mutex
	calls map[string]int
	total atomic.Int64
	err   error
}

func (l *countingLoader) load(_ context.Context, uri string) (*x509.RevocationList, error) {
	n := l.total.Add(1)

	l.mu.Lock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[uri]++
	err := l.err
	l.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &x509.RevocationList{Number: big.NewInt(n)}, nil
}

func newTestCache(t *testing.T, cfg *CRLCacheConfig, load CRLLoader) (*CRLCache, *fakeClock) {
	t.Helper()

	c, err := NewCRLCache(cfg, load, nil)
	require.NoError(t, err)

	clock := &fakeClock{now: testNow}
	c.now = clock.Now
	return c, clock
}

func TestNewCRLCache(t *testing.T) {
	loader := &countingLoader{}

	tests := []struct {
		name    string
		cfg     *CRLCacheConfig
		load    CRLLoader
		wantErr bool
		wantTTL time.Duration
	}{
		{name: "nil config uses defaults", load: loader.load, wantTTL: time.Hour},
		{name: "zero fields use defaults", cfg: &CRLCacheConfig{}, load: loader.load, wantTTL: time.Hour},
		{name: "custom", cfg: &CRLCacheConfig{MaxSize: 2, TTL: time.Minute}, load: loader.load, wantTTL: time.Minute},
		{name: "negative size", cfg: &CRLCacheConfig{MaxSize: -1}, load: loader.load, wantErr: true},
		{name: "negative TTL", cfg: &CRLCacheConfig{TTL: -time.Second}, load: loader.load, wantErr: true},
		{name: "nil loader", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCRLCache(tt.cfg, tt.load, nil)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTTL, c.ttl)
		})
	}
}

func TestCRLCache_ExpiresAfterTTL(t *testing.T) {
	loader := &countingLoader{}
	c, clock := newTestCache(t, &CRLCacheConfig{MaxSize: 10, TTL: time.Hour}, loader.load)
	ctx := context.Background()

	first, err := c.Get(ctx, "http://crl.example.test/a.crl")
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	again, err := c.Get(ctx, "http://crl.example.test/a.crl")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, int64(1), loader.total.Load())

	// Expiry is measured from the write, not from the last read.
	clock.Advance(time.Minute)
	reloaded, err := c.Get(ctx, "http://crl.example.test/a.crl")
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
	assert.Equal(t, int64(2), loader.total.Load())
}

func TestCRLCache_EvictsLeastRecentlyUsed(t *testing.T) {
	loader := &countingLoader{}
	c, _ := newTestCache(t, &CRLCacheConfig{MaxSize: 2, TTL: time.Hour}, loader.load)
	ctx := context.Background()

	get := func(uri string) {
		_, err := c.Get(ctx, uri)
		require.NoError(t, err)
	}

	get("http://a.example.test")
	get("http://b.example.test")
	get("http://a.example.test") // a is now most recently used
	get("http://c.example.test") // evicts b
	assert.Equal(t, 2, c.Len())

	get("http://a.example.test")
	get("http://b.example.test")

	loader.mu.Lock()
	defer loader.mu.Unlock()
	assert.Equal(t, 1, loader.calls["http://a.example.test"])
	assert.Equal(t, 2, loader.calls["http://b.example.test"])
	assert.Equal(t, 1, loader.calls["http://c.example.test"])
}

func TestCRLCache_KeyIsCaseInsensitive(t *testing.T) {
	loader := &countingLoader{}
	c, _ := newTestCache(t, nil, loader.load)
	ctx := context.Background()

	a, err := c.Get(ctx, "HTTP://CRL.Example.Test/Root.crl")
	require.NoError(t, err)
	b, err := c.Get(ctx, "http://crl.example.test/root.crl")
	require.NoError(t, err)

	assert.Same(t, a, b)
	loader.mu.Lock()
	defer loader.mu.Unlock()
	assert.Equal(t, map[string]int{"HTTP://CRL.Example.Test/Root.crl": 1}, loader.calls)
}

func TestCRLCache_ErrorsAreShared(t *testing.T) {
	gate := make(chan struct{})
	var calls atomic.Int32
	errBoom := errors.New("boom")

	c, _ := newTestCache(t, nil, func(ctx context.Context, uri string) (*x509.RevocationList, error) {
		calls.Add(1)
		<-gate
		return nil, errBoom
	})

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), "http://crl.example.test/root.crl")
		}(i)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i, err := range errs {
		assert.ErrorIs(t, err, errBoom, "waiter %d", i)
	}
	assert.Equal(t, 0, c.Len())
}

func TestCRLCache_NilResultIsAnError(t *testing.T) {
	c, _ := newTestCache(t, nil, func(context.Context, string) (*x509.RevocationList, error) {
		return nil, nil
	})

	_, err := c.Get(context.Background(), "http://crl.example.test/root.crl")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCRLCache_WaiterHonorsContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)

	started := make(chan struct{})
	c, _ := newTestCache(t, nil, func(ctx context.Context, uri string) (*x509.RevocationList, error) {
		close(started)
		<-gate
		// The load outlives the cancelled caller.
		return &x509.RevocationList{}, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "http://crl.example.test/root.crl")
		done <- err
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Get did not return after cancellation")
	}
}

func TestCRLCache_Purge(t *testing.T) {
	loader := &countingLoader{}
	c, _ := newTestCache(t, nil, loader.load)

	for i := range 3 {
		_, err := c.Get(context.Background(), fmt.Sprintf("http://crl%d.example.test", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, c.Len())

	c.Purge()
	c.Purge()
	assert.Equal(t, 0, c.Len())
}
