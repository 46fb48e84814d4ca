package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/keoshop/storefront/internal/domain/auth"
)

const (
	apiKeyHeader = "X-API-Key"

	// ScopeAdmin grants access to every back-office mutation.
	ScopeAdmin = "admin"

	adminContextKey = "storefront.admin"
)

// Security authenticates back-office requests. Incoming keys are hashed
// with HMAC-SHA256 under a server-side pepper; only hashes are stored, so a
// database leak alone never exposes usable key material.
type Security struct {
	keys   auth.Repository
	pepper []byte
}

// NewSecurity creates a Security guard with the given pepper.
func NewSecurity(keys auth.Repository, pepper string) *Security {
	return &Security{keys: keys, pepper: []byte(pepper)}
}

// HashKey returns the hex HMAC-SHA256 of raw key material under the pepper.
func (s *Security) HashKey(raw string) string {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// RequireScope authenticates the request and checks that the key carries the
// given scope or the wildcard. Missing or unknown keys get 401, a valid key
// without the scope gets 403.
func (s *Security) RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(apiKeyHeader)
		if raw == "" {
			respondError(c, http.StatusUnauthorized, "api key required", nil)
			return
		}

		hash := s.HashKey(raw)
		key, err := s.keys.FindByHash(c.Request.Context(), hash)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid api key", nil)
			return
		}
		if subtle.ConstantTimeCompare([]byte(key.KeyHash), []byte(hash)) != 1 {
			respondError(c, http.StatusUnauthorized, "invalid api key", nil)
			return
		}

		if !hasScope(key.Scopes, scope) {
			zctx.From(c.Request.Context()).Warn("api key lacks scope",
				zap.String("key", key.Name), zap.String("scope", scope))
			respondError(c, http.StatusForbidden, "insufficient scope", nil)
			return
		}

		c.Set(adminContextKey, key.Name)
		c.Next()
	}
}

// Optional authenticates a key when one is supplied but never rejects the
// request. Public endpoints use it to unlock admin-only data such as draft
// posts.
func (s *Security) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(apiKeyHeader)
		if raw == "" {
			c.Next()
			return
		}

		hash := s.HashKey(raw)
		key, err := s.keys.FindByHash(c.Request.Context(), hash)
		if err == nil && subtle.ConstantTimeCompare([]byte(key.KeyHash), []byte(hash)) == 1 {
			c.Set(adminContextKey, key.Name)
		}
		c.Next()
	}
}

func hasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want || s == "*" {
			return true
		}
	}
	return false
}

// isAdmin reports whether the request passed API-key auth.
func isAdmin(c *gin.Context) bool {
	_, ok := c.Get(adminContextKey)
	return ok
}
