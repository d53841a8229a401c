package taskclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/viant/scy/auth/authorizer"
	authflow "github.com/viant/taskclient/client/auth/flow"
	"github.com/viant/taskclient/client/auth/identity"
	"github.com/viant/taskclient/client/auth/store"
	redisstore "github.com/viant/taskclient/client/auth/store/redis"
	sqlitestore "github.com/viant/taskclient/client/auth/store/sqlite"
	"github.com/viant/taskclient/client/auth/token"
	"github.com/viant/taskclient/client/auth/transport"
	"github.com/viant/taskclient/client/tasks"
	"github.com/viant/taskclient/internal/logx"
)

// Client is a tasks client with its authorization stack.
type Client struct {
	*tasks.Client
	app       identity.Application
	transport *transport.RoundTripper
	scopes    []string
	logger    *slog.Logger
	closers   []io.Closer
}

// Application returns the identity application.
func (c *Client) Application() identity.Application {
	return c.app
}

// Store returns the claims challenge store.
func (c *Client) Store() store.Store {
	return c.transport.Store()
}

// Transport returns the challenge handling round tripper.
func (c *Client) Transport() *transport.RoundTripper {
	return c.transport
}

// SignIn makes sure an account is active, acquiring a token interactively when
// none is.
func (c *Client) SignIn(ctx context.Context) (*identity.Account, error) {
	if account := c.app.ActiveAccount(); account != nil {
		return account, nil
	}
	request := &identity.InteractiveRequest{Scopes: c.scopes}
	result, err := c.app.AcquireTokenPopup(ctx, request)
	if err != nil {
		if !identity.IsPopupFailure(err) {
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
		c.logger.Info("interactive.redirect", "kind", identity.KindOf(err))
		if result, err = c.app.AcquireTokenRedirect(ctx, request); err != nil {
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
	}
	if result.Account != nil {
		c.app.SetActiveAccount(result.Account)
	}
	account := c.app.ActiveAccount()
	if account == nil {
		return nil, token.ErrNoActiveAccount
	}
	return account, nil
}

// Close releases the store connections.
func (c *Client) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewClient creates a tasks client with the identity application, claims
// challenge store and transport configured via ClientOptions.
func NewClient(ctx context.Context, options *ClientOptions) (*Client, error) {
	options.Init()
	if err := options.Validate(); err != nil {
		return nil, err
	}
	logger := logx.New(options.Log)
	ret := &Client{scopes: options.Scopes, logger: logger}
	app, err := options.application(ctx)
	if err != nil {
		return nil, err
	}
	ret.app = app
	challenges, closer, err := options.store(ctx)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		ret.closers = append(ret.closers, closer)
	}
	invalidation, err := transport.ParseInvalidation(options.Invalidation)
	if err != nil {
		_ = ret.Close()
		return nil, err
	}
	transportOptions := []transport.Option{
		transport.WithApplication(app),
		transport.WithStore(challenges),
		transport.WithScopes(options.Scopes...),
		transport.WithInvalidation(invalidation),
		transport.WithLogger(logger),
	}
	if len(options.ChallengeMethods) > 0 {
		transportOptions = append(transportOptions, transport.WithChallengeMethods(options.ChallengeMethods...))
	}
	httpTransport := options.HTTPTransport
	if httpTransport == nil {
		httpTransport = networkTransport(options.Timeout)
	}
	transportOptions = append(transportOptions, transport.WithTransport(httpTransport))
	if ret.transport, err = transport.New(transportOptions...); err != nil {
		_ = ret.Close()
		return nil, err
	}
	httpClient := &http.Client{Transport: ret.transport}
	tasksOptions := []tasks.Option{tasks.WithHTTPClient(httpClient), tasks.WithLogger(logger)}
	if options.RateLimit > 0 {
		tasksOptions = append(tasksOptions, tasks.WithRateLimit(options.RateLimit, options.RateBurst))
	}
	if ret.Client, err = tasks.New(options.BaseURL, tasksOptions...); err != nil {
		_ = ret.Close()
		return nil, err
	}
	return ret, nil
}

// networkTransport bounds dialing, TLS handshakes and the wait for response
// headers by timeout. A whole round trip is left unbounded as it may include an
// interactive sign in.
func networkTransport(timeout time.Duration) *http.Transport {
	ret := http.DefaultTransport.(*http.Transport).Clone()
	ret.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	ret.TLSHandshakeTimeout = timeout
	ret.ResponseHeaderTimeout = timeout
	return ret
}

// application loads the OAuth2 client config with scy (optionally encrypted
// with EncryptionKey) unless an application was injected.
func (c *ClientOptions) application(ctx context.Context) (identity.Application, error) {
	if c.Auth.Application != nil {
		return c.Auth.Application, nil
	}
	configURL := c.Auth.OAuth2ConfigURL
	if c.Auth.EncryptionKey != "" {
		configURL += "|" + c.Auth.EncryptionKey
	}
	anAuthorizer := authorizer.New()
	oauthCfg := &authorizer.OAuthConfig{ConfigURL: configURL}
	if err := anAuthorizer.EnsureConfig(ctx, oauthCfg); err != nil {
		return nil, fmt.Errorf("failed to load oauth2 config %q: %w", c.Auth.OAuth2ConfigURL, err)
	}
	redirect := authflow.NewRedirectFlow(authflow.PromptNavigator(nil, nil), c.Auth.RedirectURL)
	return identity.NewOAuth2Application(oauthCfg.Config, identity.WithRedirectFlow(redirect)), nil
}

// store opens the configured claims challenge store; closer is nil for stores
// without connections.
func (c *ClientOptions) store(ctx context.Context) (store.Store, io.Closer, error) {
	if c.Store.Store != nil {
		return c.Store.Store, nil, nil
	}
	var options []store.Option
	if c.Store.MaxAge > 0 {
		options = append(options, store.WithMaxAge(c.Store.MaxAge))
	}
	switch c.Store.Type {
	case StoreFile:
		ret, err := store.NewFileStore(ctx, c.Store.URL, options...)
		return ret, nil, err
	case StoreRedis:
		ret, err := redisstore.Open(ctx, c.Store.Redis, options...)
		if err != nil {
			return nil, nil, err
		}
		return ret, ret, nil
	case StoreSQLite:
		ret, err := sqlitestore.Open(ctx, c.Store.URL, options...)
		if err != nil {
			return nil, nil, err
		}
		return ret, ret, nil
	default:
		return store.NewMemoryStore(options...), nil, nil
	}
}
