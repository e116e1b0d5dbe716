package kkn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"malaskkn/lib/restyutil"
	"malaskkn/lib/scrapers/simaster/core"
)

// SessionStore hands out logged-in portal clients, reusing live
// sessions wherever possible so the portal sees as few logins as the
// work allows.
type SessionStore interface {
	Get(ctx context.Context, username, password string) (*core.Client, error)
	Invalidate(username, password string)
}

// credentialKey derives the cache key. Raw credentials never become
// map keys.
func credentialKey(username, password string) string {
	sum := sha256.Sum256([]byte(username + ":" + password))
	return hex.EncodeToString(sum[:])
}

type SessionCacheOptions struct {
	// if unspecified, the production portal url is used
	BaseUrl string
	// if unspecified, sessions are kept for 24 hours
	Ttl time.Duration
	// if set, full http transcripts of every session are dumped here
	InstrumentOutput restyutil.InstrumentOutput
}

type SessionCache struct {
	baseUrl    string
	instrument restyutil.InstrumentOutput
	mu         sync.Mutex
	cache      *expirable.LRU[string, *core.Client]
}

func NewSessionCache(opts SessionCacheOptions) *SessionCache {
	ttl := opts.Ttl
	if ttl == 0 {
		ttl = time.Hour * 24
	}
	return &SessionCache{
		baseUrl:    opts.BaseUrl,
		instrument: opts.InstrumentOutput,
		cache:      expirable.NewLRU[string, *core.Client](128, nil, ttl),
	}
}

// Get returns a validated client for the credentials, logging in at
// most once per call. A cached session that no longer validates is
// evicted and replaced.
func (s *SessionCache) Get(ctx context.Context, username, password string) (*core.Client, error) {
	ctx, span := tracer.Start(ctx, "sessions:Get")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := credentialKey(username, password)
	cached, hit := s.cache.Get(key)
	if hit {
		if cached.Validate(ctx) {
			return cached, nil
		}
		slog.WarnContext(ctx, "cached session no longer valid, logging in again", "username", username)
		s.cache.Remove(key)
	}

	client, err := core.NewClient(ctx, core.ClientOptions{
		BaseUrl: s.baseUrl,
	})
	if err != nil {
		return nil, err
	}
	client.SetInstrumentOutput(s.instrument)
	err = client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.cache.Add(key, client)
	return client, nil
}

// Invalidate drops the cached session so the next Get logs in fresh.
func (s *SessionCache) Invalidate(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(credentialKey(username, password))
}
