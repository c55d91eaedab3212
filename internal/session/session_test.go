package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"school-portal/internal/event"
	"school-portal/internal/model"
	"school-portal/internal/tokenstore"
)

func tokenWith(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".c2ln"
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	_, ok := registry.Get("s1")
	require.False(t, ok)

	started := registry.Start("s1", model.RoleTeacher, false)
	require.True(t, started.IsLoggedIn)
	require.Equal(t, model.RoleTeacher, started.UserType)

	got, ok := registry.Get("s1")
	require.True(t, ok)
	require.Equal(t, started, got)

	require.True(t, registry.End("s1"))
	require.False(t, registry.End("s1"))
	_, ok = registry.Get("s1")
	require.False(t, ok)
}

func TestEnsureID(t *testing.T) {
	t.Parallel()

	t.Run("issues a cookie for new browsers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		id := EnsureID(rec, httptest.NewRequest(http.MethodGet, "/login", nil), true)
		require.NotEmpty(t, id)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, CookieName, cookies[0].Name)
		require.Equal(t, id, cookies[0].Value)
		require.True(t, cookies[0].HttpOnly)
		require.True(t, cookies[0].Secure)
		require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	})

	t.Run("reuses a valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "6f1c7a1e-3c1b-4f7e-9a55-0a2f3b4c5d6e"})
		rec := httptest.NewRecorder()

		require.Equal(t, "6f1c7a1e-3c1b-4f7e-9a55-0a2f3b4c5d6e", EnsureID(rec, req, false))
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("replaces a forged cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "../../admin"})
		rec := httptest.NewRecorder()

		id := EnsureID(rec, req, false)
		require.NotEqual(t, "../../admin", id)
		require.Len(t, rec.Result().Cookies(), 1)
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	t.Run("registry entry wins", func(t *testing.T) {
		registry := NewRegistry()
		registry.Start("s1", model.RoleStudent, false)
		resolver := NewResolver(registry, tokenstore.NewMemory(), nil, false)

		s, ok := resolver.Resolve(ctx, "s1")
		require.True(t, ok)
		require.Equal(t, model.RoleStudent, s.UserType)
	})

	t.Run("without restore a stored token is not enough", func(t *testing.T) {
		store := tokenstore.NewMemory()
		require.NoError(t, store.Set(ctx, "s1", tokenWith(fmt.Sprintf(`{"role":"Teacher","exp":%d}`, future))))
		resolver := NewResolver(NewRegistry(), store, nil, false)

		_, ok := resolver.Resolve(ctx, "s1")
		require.False(t, ok)
	})

	t.Run("restores from a valid token", func(t *testing.T) {
		store := tokenstore.NewMemory()
		require.NoError(t, store.Set(ctx, "s1", tokenWith(fmt.Sprintf(`{"role":"Teacher","exp":%d}`, future))))
		bus := event.NewBus()
		events, unsubscribe := bus.Subscribe()
		t.Cleanup(unsubscribe)

		registry := NewRegistry()
		resolver := NewResolver(registry, store, bus, true)

		s, ok := resolver.Resolve(ctx, "s1")
		require.True(t, ok)
		require.Equal(t, model.RoleTeacher, s.UserType)
		require.True(t, s.Restored)
		require.Equal(t, 1, registry.Len())

		select {
		case e := <-events:
			require.Equal(t, event.TypeSessionRestored, e.Type)
		case <-time.After(time.Second):
			t.Fatal("restore event not published")
		}
	})

	t.Run("rejects expired undecodable or unknown-role tokens", func(t *testing.T) {
		for _, raw := range []string{
			tokenWith(fmt.Sprintf(`{"role":"Student","exp":%d}`, past)),
			"garbage",
			tokenWith(`{"role":"Admin"}`),
		} {
			store := tokenstore.NewMemory()
			require.NoError(t, store.Set(ctx, "s1", raw))
			resolver := NewResolver(NewRegistry(), store, nil, true)

			_, ok := resolver.Resolve(ctx, "s1")
			require.False(t, ok, raw)
		}
	})

	t.Run("empty id is never logged in", func(t *testing.T) {
		resolver := NewResolver(NewRegistry(), tokenstore.NewMemory(), nil, true)
		_, ok := resolver.Resolve(ctx, "")
		require.False(t, ok)
	})
}
