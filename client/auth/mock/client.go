package mock

import (
	"github.com/viant/afs/url"
	"golang.org/x/oauth2"
)

const (
	// TasksScope is the resource scope the mock tasks API expects.
	TasksScope = "api://tasks/access_as_user"
	// ClientID and ClientSecret identify the only registered client.
	ClientID     = "test_client_id"
	ClientSecret = "test_client_secret"
	// RedirectURL is the registered redirect URI.
	RedirectURL = "http://localhost:8080/callback"
)

// NewTestClient returns a client config registered with the service at issuer.
func NewTestClient(issuer string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     ClientID,
		ClientSecret: ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   url.Join(issuer, "authorize"),
			TokenURL:  url.Join(issuer, "token"),
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		Scopes:      []string{"openid", "profile", "offline_access", TasksScope},
		RedirectURL: RedirectURL,
	}
}
