package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/taskclient/client/auth/challenge"
	"github.com/viant/taskclient/client/auth/identity"
	"github.com/viant/taskclient/client/auth/store"
)

// ErrNoActiveAccount reports a token request made before any account signed in.
var ErrNoActiveAccount = errors.New("no active account: sign in before calling the API")

// ClaimsDecodeError reports a stored claims challenge that is not valid base64.
type ClaimsDecodeError struct {
	Method string
	Claims string
	Err    error
}

func (e *ClaimsDecodeError) Error() string {
	return fmt.Sprintf("invalid claims challenge stored for %s: %v", e.Method, e.Err)
}

func (e *ClaimsDecodeError) Unwrap() error { return e.Err }

// Provider acquires access tokens for the active account.
type Provider struct {
	app    identity.Application
	store  store.Store
	scopes []string
}

// Token returns an access token for a request with the given HTTP method. An
// empty method skips the challenge lookup.
func (p *Provider) Token(ctx context.Context, method string) (string, error) {
	result, err := p.Acquire(ctx, method)
	if err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

// Acquire is Token returning the whole identity result.
func (p *Provider) Acquire(ctx context.Context, method string) (*identity.Result, error) {
	account := p.app.ActiveAccount()
	if account == nil {
		return nil, ErrNoActiveAccount
	}
	request := &identity.SilentRequest{Account: account, Scopes: p.Scopes()}
	if method != "" {
		claims, err := p.claims(ctx, method)
		if err != nil {
			return nil, err
		}
		request.Claims = claims
	}
	return p.app.AcquireTokenSilent(ctx, request)
}

func (p *Provider) claims(ctx context.Context, method string) (string, error) {
	encoded, ok, err := p.store.Lookup(ctx, method)
	if err != nil {
		return "", fmt.Errorf("failed to look up claims challenge for %s: %w", method, err)
	}
	if !ok {
		return "", nil
	}
	decoded, err := challenge.DecodeClaims(encoded)
	if err != nil {
		return "", &ClaimsDecodeError{Method: method, Claims: encoded, Err: err}
	}
	return decoded, nil
}

// Scopes returns a copy of the requested scopes.
func (p *Provider) Scopes() []string {
	return append([]string{}, p.scopes...)
}

// Store returns the challenge store consulted by the provider.
func (p *Provider) Store() store.Store {
	return p.store
}

// Application returns the identity application.
func (p *Provider) Application() identity.Application {
	return p.app
}

// New creates a provider; the store defaults to an in-memory one.
func New(app identity.Application, options ...Option) *Provider {
	ret := &Provider{app: app}
	for _, opt := range options {
		opt(ret)
	}
	if ret.store == nil {
		ret.store = store.NewMemoryStore()
	}
	return ret
}
