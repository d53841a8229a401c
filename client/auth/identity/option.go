package identity

import (
	"net/http"

	"github.com/viant/scy/auth/flow"
)

type Option func(*OAuth2Application)

// WithPopupFlow sets the flow used by AcquireTokenPopup (browser flow by default).
func WithPopupFlow(popup flow.AuthFlow) Option {
	return func(a *OAuth2Application) {
		a.popup = popup
	}
}

// WithRedirectFlow sets the flow used by AcquireTokenRedirect (prompt based redirect by default).
func WithRedirectFlow(redirect flow.AuthFlow) Option {
	return func(a *OAuth2Application) {
		a.redirect = redirect
	}
}

// WithHTTPClient sets the client used for token endpoint calls.
func WithHTTPClient(client *http.Client) Option {
	return func(a *OAuth2Application) {
		a.httpClient = client
	}
}

// WithActiveAccount sets the initially active account.
func WithActiveAccount(account *Account) Option {
	return func(a *OAuth2Application) {
		a.active = account
	}
}
