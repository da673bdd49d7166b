package server

import (
	"net/http"
	"strings"
)

// UserResolver maps an incoming request to an authenticated player ID.
//
// Design decision: The OAuth flow lives outside this process; what the
// API needs is only "which player is this". An interface at that
// boundary lets the serve command plug in static tokens while tests
// use a fixed identity, without the handlers knowing the difference.
type UserResolver interface {
	// Resolve returns the player ID for the request, or false when
	// the request carries no valid credentials.
	Resolve(r *http.Request) (string, bool)
}

// TokenResolver authenticates bearer tokens against a static table
// mapping token to player ID.
type TokenResolver struct {
	tokens map[string]string
}

// NewTokenResolver creates a TokenResolver. The map is copied so later
// mutation of the caller's map cannot change who is authenticated.
func NewTokenResolver(tokens map[string]string) *TokenResolver {
	copied := make(map[string]string, len(tokens))
	for token, user := range tokens {
		copied[token] = user
	}
	return &TokenResolver{tokens: copied}
}

// Resolve implements UserResolver using the Authorization header.
func (t *TokenResolver) Resolve(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	user, ok := t.tokens[token]
	return user, ok
}

// StaticResolver resolves every request to one fixed player ID.
// Used when no auth tokens are configured, such as local play.
type StaticResolver string

// Resolve implements UserResolver.
func (s StaticResolver) Resolve(*http.Request) (string, bool) {
	return string(s), s != ""
}
