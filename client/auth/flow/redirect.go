package flow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/viant/scy/auth/flow"
	"golang.org/x/oauth2"
)

var (
	// ErrStateMismatch reports a callback whose state does not match the request.
	ErrStateMismatch = errors.New("authorization response state mismatch")
	// ErrMissingCode reports a callback without an authorization code.
	ErrMissingCode = errors.New("authorization response has no code")
)

// AuthorizationError is an error returned by the authorization endpoint on the callback.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description == "" {
		return "authorization failed: " + e.Code
	}
	return fmt.Sprintf("authorization failed: %s: %s", e.Code, e.Description)
}

// RedirectFlow is an authorization code flow that navigates away to the
// authorization endpoint and completes with the URL the endpoint redirected back to.
type RedirectFlow struct {
	navigator   Navigator
	redirectURI string
}

// Token runs the flow and exchanges the returned code.
func (s *RedirectFlow) Token(ctx context.Context, config *oauth2.Config, options ...flow.Option) (*oauth2.Token, error) {
	redirectURI := s.redirectURI
	if redirectURI == "" {
		redirectURI = config.RedirectURL
	}
	if redirectURI == "" {
		return nil, fmt.Errorf("redirect flow requires a redirect URI")
	}
	codeVerifier := flow.GenerateCodeVerifier()
	state := flow.GenerateCodeVerifier()
	options = append(options,
		flow.WithPKCE(true),
		flow.WithState(state),
		flow.WithCodeVerifier(codeVerifier),
		flow.WithRedirectURI(redirectURI))
	URL, err := flow.BuildAuthCodeURL(config, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization URL: %w", err)
	}
	location, err := s.navigator.Navigate(ctx, URL)
	if err != nil {
		return nil, err
	}
	code, err := parseCallback(location, state)
	if err != nil {
		return nil, err
	}
	token, err := flow.Exchange(ctx, config, code, flow.WithCodeVerifier(codeVerifier), flow.WithRedirectURI(redirectURI))
	if token == nil && err == nil {
		err = fmt.Errorf("failed to get token")
	}
	return token, err
}

func parseCallback(location, state string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", ErrMissingCode
	}
	parsedURL, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect location %v", err)
	}
	query := parsedURL.Query()
	if code := query.Get("error"); code != "" {
		return "", &AuthorizationError{Code: code, Description: query.Get("error_description")}
	}
	if query.Get("state") != state {
		return "", ErrStateMismatch
	}
	code := query.Get("code")
	if code == "" {
		return "", ErrMissingCode
	}
	return code, nil
}

// NewRedirectFlow creates a redirect flow; redirectURI overrides the client's
// configured redirect URL when not empty.
func NewRedirectFlow(navigator Navigator, redirectURI string) *RedirectFlow {
	return &RedirectFlow{navigator: navigator, redirectURI: redirectURI}
}
