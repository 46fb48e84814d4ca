package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keoshop/storefront/internal/domain/auth"
)

type mockKeyRepo struct {
	byHash map[string]*auth.APIKey
}

func (m *mockKeyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKey, error) {
	k, ok := m.byHash[hash]
	if !ok {
		return nil, auth.ErrKeyNotFound
	}
	return k, nil
}

func newSecuredRouter(t *testing.T, scopes []string) (*gin.Engine, string) {
	t.Helper()

	const rawKey = "test-key-material"
	sec := NewSecurity(&mockKeyRepo{}, "pepper")
	repo := &mockKeyRepo{byHash: map[string]*auth.APIKey{
		sec.HashKey(rawKey): {ID: "k1", KeyHash: sec.HashKey(rawKey), Name: "test", Scopes: scopes},
	}}
	sec = NewSecurity(repo, "pepper")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", sec.RequireScope(ScopeAdmin), func(c *gin.Context) {
		respond(c, http.StatusOK, "ok", nil)
	})
	r.GET("/public", sec.Optional(), func(c *gin.Context) {
		respond(c, http.StatusOK, "ok", gin.H{"admin": isAdmin(c)})
	})
	return r, rawKey
}

func TestRequireScope(t *testing.T) {
	r, rawKey := newSecuredRouter(t, []string{ScopeAdmin})

	// No key.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong key.
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(apiKeyHeader, "wrong-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid key.
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(apiKeyHeader, rawKey)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireScope_InsufficientScope(t *testing.T) {
	r, rawKey := newSecuredRouter(t, []string{"read_only"})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(apiKeyHeader, rawKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireScope_WildcardScope(t *testing.T) {
	r, rawKey := newSecuredRouter(t, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(apiKeyHeader, rawKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	r, rawKey := newSecuredRouter(t, []string{ScopeAdmin})

	// Without a key the request passes through unauthenticated.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin":false`)

	// With a valid key the admin flag is set.
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set(apiKeyHeader, rawKey)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin":true`)
}
