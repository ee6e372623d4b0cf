// Package auth supplies the bearer credential the remote adapter needs.
// Obtaining the credential (OAuth consent flow) is the caller's problem;
// the sync core only asks whether a usable credential exists and what it is.
package auth

import (
	"sync"

	"golang.org/x/oauth2"

	"github.com/hkaya/meallogger/internal/apperrors"
)

// TokenProvider supplies a bearer credential for the remote store backend.
type TokenProvider interface {
	// HasValidCredential reports whether a credential is available.
	HasValidCredential() bool

	// Token returns the bearer credential.
	Token() (string, error)
}

// StaticProvider holds a token handed in by the caller, typically the cached
// credential from the device settings record.
type StaticProvider struct {
	mu    sync.RWMutex
	token string
}

// NewStaticProvider creates a provider around an existing bearer token.
// An empty token means "not authenticated".
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

// HasValidCredential reports whether a token is present.
func (p *StaticProvider) HasValidCredential() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token != ""
}

// Token returns the stored bearer token.
func (p *StaticProvider) Token() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.token == "" {
		return "", apperrors.New(apperrors.ErrSyncAuthFailed, "no credential available")
	}
	return p.token, nil
}

// SetToken replaces the stored token.
func (p *StaticProvider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
}

// Revoke discards the stored token.
func (p *StaticProvider) Revoke() {
	p.SetToken("")
}

// TokenSource adapts a TokenProvider to the oauth2 source the Google API
// clients expect.
func TokenSource(p TokenProvider) (oauth2.TokenSource, error) {
	token, err := p.Token()
	if err != nil {
		return nil, err
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), nil
}
