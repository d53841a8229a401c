package identity

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"sync"

	"github.com/viant/scy/auth/flow"
	authflow "github.com/viant/taskclient/client/auth/flow"
	"github.com/viant/taskclient/internal/collection"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type tokenKey struct {
	Account string
	Scopes  string
}

// OAuth2Application is an Application backed by an OAuth 2.0 public/confidential
// client configuration.
type OAuth2Application struct {
	config     *oauth2.Config
	popup      flow.AuthFlow
	redirect   flow.AuthFlow
	httpClient *http.Client
	tokens     *collection.SyncMap[tokenKey, *oauth2.Token]
	mux        sync.RWMutex
	active     *Account
}

// NewOAuth2Application creates an application for config.
func NewOAuth2Application(config *oauth2.Config, options ...Option) *OAuth2Application {
	ret := &OAuth2Application{
		config: config,
		popup:  flow.NewBrowserFlow(),
		tokens: collection.NewSyncMap[tokenKey, *oauth2.Token](),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.redirect == nil {
		ret.redirect = authflow.NewRedirectFlow(authflow.PromptNavigator(nil, nil), "")
	}
	return ret
}

// Config returns the client configuration.
func (a *OAuth2Application) Config() *oauth2.Config {
	return a.config
}

func (a *OAuth2Application) ActiveAccount() *Account {
	a.mux.RLock()
	defer a.mux.RUnlock()
	return a.active
}

func (a *OAuth2Application) SetActiveAccount(account *Account) {
	a.mux.Lock()
	defer a.mux.Unlock()
	a.active = account
}

// AddToken seeds the token cache, e.g. with a token persisted by a previous run.
func (a *OAuth2Application) AddToken(account *Account, scopes []string, token *oauth2.Token) {
	a.tokens.Put(tokenKey{Account: account.HomeAccountID, Scopes: ScopeKey(scopes)}, token)
}

func (a *OAuth2Application) AcquireTokenSilent(ctx context.Context, request *SilentRequest) (*Result, error) {
	if request == nil || request.Account == nil {
		return nil, NewError(KindNoAccount, "silent request requires an account", nil)
	}
	key := tokenKey{Account: request.Account.HomeAccountID, Scopes: ScopeKey(request.Scopes)}
	cached, ok := a.tokens.Get(key)
	if ok && request.Claims == "" && cached.Valid() {
		return a.result(cached, request.Scopes, request.Account), nil
	}
	refreshToken := a.refreshToken(key)
	if refreshToken == "" {
		return nil, NewError(KindInteractionRequired, "no refresh token for account "+request.Account.HomeAccountID, nil)
	}
	token, err := a.refresh(ctx, refreshToken, request.Scopes, request.Claims)
	if err != nil {
		return nil, classifyServerError(err)
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	a.tokens.Put(key, token)
	return a.result(token, request.Scopes, request.Account), nil
}

func (a *OAuth2Application) AcquireTokenPopup(ctx context.Context, request *InteractiveRequest) (*Result, error) {
	options := append(interactiveOptions(request), flow.WithPKCE(true))
	token, err := a.popup.Token(a.context(ctx), a.interactiveConfig(request), options...)
	if err != nil {
		return nil, classifyPopupError(err)
	}
	return a.complete(token, request.Scopes)
}

func (a *OAuth2Application) AcquireTokenRedirect(ctx context.Context, request *InteractiveRequest) (*Result, error) {
	token, err := a.redirect.Token(a.context(ctx), a.interactiveConfig(request), interactiveOptions(request)...)
	if err != nil {
		return nil, classifyRedirectError(err)
	}
	return a.complete(token, request.Scopes)
}

// refreshToken finds a refresh token for the account, preferring the one issued
// for the same scopes.
func (a *OAuth2Application) refreshToken(key tokenKey) string {
	if cached, ok := a.tokens.Get(key); ok && cached.RefreshToken != "" {
		return cached.RefreshToken
	}
	var result string
	a.tokens.Range(func(candidate tokenKey, token *oauth2.Token) bool {
		if candidate.Account == key.Account && token.RefreshToken != "" {
			result = token.RefreshToken
			return false
		}
		return true
	})
	return result
}

// refresh posts a refresh_token grant carrying scope and claims. oauth2.TokenSource
// takes no extra parameters, so the grant goes through a clientcredentials
// request with the grant type overridden.
func (a *OAuth2Application) refresh(ctx context.Context, refreshToken string, scopes []string, claims string) (*oauth2.Token, error) {
	params := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	if claims != "" {
		params.Set("claims", claims)
	}
	grant := &clientcredentials.Config{
		ClientID:       a.config.ClientID,
		ClientSecret:   a.config.ClientSecret,
		TokenURL:       a.config.Endpoint.TokenURL,
		Scopes:         scopes,
		EndpointParams: params,
		AuthStyle:      a.config.Endpoint.AuthStyle,
	}
	return grant.Token(a.context(ctx))
}

// interactiveConfig copies the client config with the request scopes.
func (a *OAuth2Application) interactiveConfig(request *InteractiveRequest) *oauth2.Config {
	cfg := *a.config
	if request != nil && len(request.Scopes) > 0 {
		cfg.Scopes = append([]string{}, request.Scopes...)
	}
	return &cfg
}

// interactiveOptions adds the claims request to the authorization URL.
func interactiveOptions(request *InteractiveRequest) []flow.Option {
	var options []flow.Option
	if request != nil && request.Claims != "" {
		options = append(options, flow.WithAuthURLParam("claims", request.Claims))
	}
	return options
}

func (a *OAuth2Application) complete(token *oauth2.Token, scopes []string) (*Result, error) {
	if token == nil || token.AccessToken == "" {
		return nil, NewError(KindServer, "authorization server returned no access token", nil)
	}
	account := a.ActiveAccount()
	if idToken := extraString(token, "id_token"); idToken != "" {
		if parsed, err := AccountFromIDToken(idToken); err == nil {
			account = parsed
		}
	}
	if account == nil {
		account = &Account{HomeAccountID: a.config.ClientID}
	}
	a.SetActiveAccount(account)
	a.tokens.Put(tokenKey{Account: account.HomeAccountID, Scopes: ScopeKey(scopes)}, token)
	return a.result(token, scopes, account), nil
}

func (a *OAuth2Application) result(token *oauth2.Token, scopes []string, account *Account) *Result {
	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &Result{
		AccessToken: token.AccessToken,
		TokenType:   tokenType,
		IDToken:     extraString(token, "id_token"),
		Scopes:      scopes,
		ExpiresOn:   token.Expiry,
		Account:     account,
	}
}

func (a *OAuth2Application) context(ctx context.Context) context.Context {
	if a.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

func extraString(token *oauth2.Token, key string) string {
	if value, ok := token.Extra(key).(string); ok {
		return value
	}
	return ""
}

// classifyPopupError maps browser flow failures onto popup kinds.
func classifyPopupError(err error) error {
	var identityErr *Error
	if errors.As(err, &identityErr) {
		return err
	}
	message := err.Error()
	switch {
	case errors.Is(err, exec.ErrNotFound), strings.Contains(message, "failed to start browser"):
		return NewError(KindPopupBlocked, "unable to open the authorization window", err)
	case strings.Contains(message, "failed to find auth code"):
		return NewError(KindEmptyWindow, "authorization window returned no response", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewError(KindUserCancelled, "interactive authorization abandoned", err)
	}
	return classifyServerError(err)
}

func classifyRedirectError(err error) error {
	var authErr *authflow.AuthorizationError
	switch {
	case errors.Is(err, authflow.ErrStateMismatch):
		return NewError(KindStateMismatch, "redirect response does not match the request", err)
	case errors.Is(err, authflow.ErrMissingCode):
		return NewError(KindServer, "redirect response has no authorization code", err)
	case errors.As(err, &authErr):
		if authErr.Code == "access_denied" {
			return NewError(KindUserCancelled, "user declined the authorization", err)
		}
		return NewError(KindServer, "authorization endpoint returned an error", err)
	}
	return classifyServerError(err)
}

func classifyServerError(err error) error {
	var identityErr *Error
	if errors.As(err, &identityErr) {
		return err
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case "invalid_grant", "interaction_required", "login_required", "consent_required":
			return NewError(KindInteractionRequired, "authorization server requires interaction", err)
		}
		return NewError(KindServer, "token request failed", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindUserCancelled, "token request abandoned", err)
	}
	return NewError(KindUnknown, "token request failed", err)
}
