package transport

import (
	"log/slog"
	"net/http"

	"github.com/viant/taskclient/client/auth/identity"
	"github.com/viant/taskclient/client/auth/store"
	"github.com/viant/taskclient/client/auth/token"
)

type Option func(*RoundTripper)

// WithApplication sets the identity application.
func WithApplication(app identity.Application) Option {
	return func(t *RoundTripper) {
		t.app = app
	}
}

// WithTokenProvider sets the provider used for first attempts; its store and
// scopes become the transport defaults.
func WithTokenProvider(provider *token.Provider) Option {
	return func(t *RoundTripper) {
		t.provider = provider
	}
}

// WithStore sets store
func WithStore(store store.Store) Option {
	return func(t *RoundTripper) {
		t.store = store
	}
}

// WithScopes sets the scopes requested interactively.
func WithScopes(scopes ...string) Option {
	return func(t *RoundTripper) {
		t.scopes = scopes
	}
}

// WithTransport sets the underlying transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(t *RoundTripper) {
		t.transport = transport
	}
}

// WithChallengeMethods sets the methods whose claims challenges are recovered.
func WithChallengeMethods(methods ...string) Option {
	return func(t *RoundTripper) {
		t.methods = methodSet(methods)
	}
}

// WithInvalidation sets the challenge invalidation policy.
func WithInvalidation(policy Invalidation) Option {
	return func(t *RoundTripper) {
		t.invalidation = policy
	}
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(t *RoundTripper) {
		t.logger = logger
	}
}
