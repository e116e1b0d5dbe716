package kkn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAuthPortal serves just enough of the portal for logins and
// session validation. Flipping sessionValid simulates the portal
// expiring a session server-side.
type fakeAuthPortal struct {
	logins       atomic.Int64
	sessionValid atomic.Bool
}

func newFakeAuthPortal(t testing.TB) (*httptest.Server, *http.ServeMux, *fakeAuthPortal) {
	portal := &fakeAuthPortal{}
	portal.sessionValid.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/services/simaster/service_login", func(w http.ResponseWriter, r *http.Request) {
		portal.logins.Add(1)
		fmt.Fprint(w, `{"isLogin": 1, "namaLengkap": "Budi Santoso"}`)
	})
	mux.HandleFunc("/beranda", func(w http.ResponseWriter, r *http.Request) {
		if portal.sessionValid.Load() {
			fmt.Fprint(w, `<html><body><input type="hidden" name="simasterUGM_token" value="tok"/></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><form>login ulang</form></body></html>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, mux, portal
}

func TestSessionCacheReuse(t *testing.T) {
	server, _, portal := newFakeAuthPortal(t)
	sessions := NewSessionCache(SessionCacheOptions{BaseUrl: server.URL})
	ctx := context.Background()

	first, err := sessions.Get(ctx, "budi", "rahasia")
	require.NoError(t, err)
	second, err := sessions.Get(ctx, "budi", "rahasia")
	require.NoError(t, err)

	require.Same(t, first, second)
	require.EqualValues(t, 1, portal.logins.Load())
}

func TestSessionCacheInvalidate(t *testing.T) {
	server, _, portal := newFakeAuthPortal(t)
	sessions := NewSessionCache(SessionCacheOptions{BaseUrl: server.URL})
	ctx := context.Background()

	first, err := sessions.Get(ctx, "budi", "rahasia")
	require.NoError(t, err)

	sessions.Invalidate("budi", "rahasia")

	second, err := sessions.Get(ctx, "budi", "rahasia")
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.EqualValues(t, 2, portal.logins.Load())
}

func TestSessionCacheRevalidatesStaleSession(t *testing.T) {
	server, _, portal := newFakeAuthPortal(t)
	sessions := NewSessionCache(SessionCacheOptions{BaseUrl: server.URL})
	ctx := context.Background()

	_, err := sessions.Get(ctx, "budi", "rahasia")
	require.NoError(t, err)

	// the portal expired the session behind our back
	portal.sessionValid.Store(false)

	_, err = sessions.Get(ctx, "budi", "rahasia")
	require.NoError(t, err)
	require.EqualValues(t, 2, portal.logins.Load())
}

func TestSessionCacheSeparatesCredentials(t *testing.T) {
	server, _, portal := newFakeAuthPortal(t)
	sessions := NewSessionCache(SessionCacheOptions{BaseUrl: server.URL})
	ctx := context.Background()

	budi, err := sessions.Get(ctx, "budi", "rahasia")
	require.NoError(t, err)
	sari, err := sessions.Get(ctx, "sari", "rahasia")
	require.NoError(t, err)

	require.NotSame(t, budi, sari)
	require.EqualValues(t, 2, portal.logins.Load())
}
