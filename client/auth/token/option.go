package token

import "github.com/viant/taskclient/client/auth/store"

type Option func(*Provider)

// WithScopes sets the scopes requested for the resource.
func WithScopes(scopes ...string) Option {
	return func(p *Provider) {
		p.scopes = scopes
	}
}

// WithStore sets the claims challenge store.
func WithStore(store store.Store) Option {
	return func(p *Provider) {
		p.store = store
	}
}
