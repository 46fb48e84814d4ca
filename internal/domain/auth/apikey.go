package auth

import (
	"context"
	"fmt"
)

// ErrKeyNotFound is returned when no active API key matches a hash.
var ErrKeyNotFound = fmt.Errorf("api key not found")

// APIKey holds the identity and permission data for a back-office API key.
// Only the HMAC-SHA256 hash of the key material is stored.
type APIKey struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// Repository provides lookup of API keys by their HMAC-SHA256 hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKey, error)
}
