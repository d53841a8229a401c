package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/viant/taskclient/client/auth/challenge"
	"github.com/viant/taskclient/client/auth/identity"
	"github.com/viant/taskclient/client/auth/store"
	"github.com/viant/taskclient/client/auth/token"
	"github.com/viant/taskclient/internal/logx"
	"golang.org/x/sync/singleflight"
)

// DefaultChallengeMethods are the methods whose 401 responses are recovered.
var DefaultChallengeMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

type RoundTripper struct {
	app          identity.Application
	provider     *token.Provider
	store        store.Store
	scopes       []string
	transport    http.RoundTripper
	methods      map[string]bool
	invalidation Invalidation
	logger       *slog.Logger
	// concurrent challenges with the same claims share one interactive acquisition
	group singleflight.Group
}

func New(options ...Option) (*RoundTripper, error) {
	ret := &RoundTripper{
		transport: http.DefaultTransport,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.provider != nil {
		if ret.store != nil && ret.store != ret.provider.Store() {
			return nil, errors.New("token provider and transport must share the challenge store")
		}
		ret.store = ret.provider.Store()
		if ret.app == nil {
			ret.app = ret.provider.Application()
		}
		if len(ret.scopes) == 0 {
			ret.scopes = ret.provider.Scopes()
		}
	}
	if ret.app == nil {
		return nil, errors.New("identity application was empty")
	}
	if ret.store == nil {
		ret.store = store.NewMemoryStore()
	}
	if ret.provider == nil {
		ret.provider = token.New(ret.app, token.WithStore(ret.store), token.WithScopes(ret.scopes...))
	}
	if ret.methods == nil {
		ret.methods = methodSet(DefaultChallengeMethods)
	}
	return ret, nil
}

// Store returns the claims challenge store.
func (r *RoundTripper) Store() store.Store {
	return r.store
}

// Provider returns the token provider used for first attempts.
func (r *RoundTripper) Provider() *token.Provider {
	return r.provider
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	accessToken := getAuthToken(ctx)
	if accessToken == "" {
		var err error
		if accessToken, err = r.provider.Token(ctx, req.Method); err != nil {
			return nil, err
		}
	}
	getBody, err := bodyFunc(req)
	if err != nil {
		return nil, err
	}
	outgoing, err := clone(req, getBody)
	if err != nil {
		return nil, err
	}
	outgoing.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := r.transport.RoundTrip(outgoing)
	if err != nil {
		return nil, err
	}
	if skipChallenge(ctx) {
		return resp, nil
	}
	return r.resolve(req, getBody, resp)
}

// Resolve inspects the response to req. Anything but a 401 for a challenge
// method is returned unchanged. A claims challenge is stored for the request
// method, a token carrying the claims is acquired interactively and req is sent
// once more; the response to that single replay is returned as is. A replayed
// body comes from req.GetBody, or from req.Body when GetBody is nil.
func (r *RoundTripper) Resolve(req *http.Request, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode != http.StatusUnauthorized || !r.methods[store.Key(req.Method)] {
		return resp, nil
	}
	getBody, err := bodyFunc(req)
	if err != nil {
		discard(resp)
		return nil, err
	}
	return r.resolve(req, getBody, resp)
}

func (r *RoundTripper) resolve(req *http.Request, getBody func() (io.ReadCloser, error), resp *http.Response) (*http.Response, error) {
	if resp.StatusCode != http.StatusUnauthorized || !r.methods[store.Key(req.Method)] {
		return resp, nil
	}
	ctx := req.Context()
	logger := logx.RequestLogger(ctx, r.logger, req.Method, req.URL.Redacted())
	header, ok := challenge.FromResponse(resp)
	discard(resp)
	if !ok {
		logger.Warn("claims_challenge.missing_header")
		return nil, ErrUnknownHeader
	}
	claims, err := challenge.Claims(header)
	if err != nil {
		logger.Warn("claims_challenge.invalid", "error", err)
		return nil, err
	}
	decoded, err := challenge.DecodeClaims(claims)
	if err != nil {
		return nil, &token.ClaimsDecodeError{Method: req.Method, Claims: claims, Err: err}
	}
	logger.Info("claims_challenge.received")
	if err = r.store.Put(ctx, req.Method, claims); err != nil {
		return nil, fmt.Errorf("failed to store claims challenge for %s: %w", req.Method, err)
	}
	logger.Debug("claims_challenge.stored")

	result, err := r.acquire(req, decoded, logger)
	if err != nil {
		return nil, err
	}
	retry, err := clone(req, getBody)
	if err != nil {
		return nil, err
	}
	retry.Header.Set("Authorization", "Bearer "+result.AccessToken)
	replayed, err := r.transport.RoundTrip(retry)
	if err != nil {
		return nil, err
	}
	logger.Info("request.replayed", "status", replayed.StatusCode)
	if r.invalidation == InvalidateOnRetrySuccess && replayed.StatusCode >= 200 && replayed.StatusCode < 300 {
		if err = r.store.Delete(ctx, req.Method); err != nil {
			logger.Warn("claims_challenge.invalidate_failed", "error", err)
		}
	}
	return replayed, nil
}

// acquire joins or starts the interactive acquisition for claims. The shared
// acquisition outlives any single caller; each caller stops waiting when its
// own context is done.
func (r *RoundTripper) acquire(req *http.Request, claims string, logger *slog.Logger) (*identity.Result, error) {
	ctx := req.Context()
	flightCtx := context.WithoutCancel(ctx)
	method := req.Method
	flight := r.group.DoChan(claims, func() (interface{}, error) {
		return r.interactive(flightCtx, method, claims, logger)
	})
	select {
	case <-ctx.Done():
		logger.Info("interactive.abandoned", "error", ctx.Err())
		return nil, fmt.Errorf("interactive authorization for %s abandoned: %w", method, ctx.Err())
	case result := <-flight:
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Shared {
			logger.Debug("interactive.shared")
		}
		return result.Val.(*identity.Result), nil
	}
}

func (r *RoundTripper) interactive(ctx context.Context, method, claims string, logger *slog.Logger) (*identity.Result, error) {
	request := &identity.InteractiveRequest{Claims: claims, Scopes: append([]string{}, r.scopes...)}
	result, err := r.app.AcquireTokenPopup(ctx, request)
	if err == nil {
		return checked(result, "popup", method)
	}
	if !identity.IsPopupFailure(err) {
		return nil, &InteractiveAuthError{Flow: "popup", Method: method, Err: err}
	}
	logger.Info("interactive.popup.failed", "kind", identity.KindOf(err), "error", err)
	logger.Info("interactive.redirect")
	result, err = r.app.AcquireTokenRedirect(ctx, request)
	if err != nil {
		return nil, &InteractiveAuthError{Flow: "redirect", Method: method, Err: err}
	}
	return checked(result, "redirect", method)
}

func checked(result *identity.Result, flow, method string) (*identity.Result, error) {
	if result == nil || result.AccessToken == "" {
		return nil, &InteractiveAuthError{Flow: flow, Method: method, Err: errors.New("no access token acquired")}
	}
	return result, nil
}

func methodSet(methods []string) map[string]bool {
	ret := make(map[string]bool, len(methods))
	for _, method := range methods {
		ret[store.Key(method)] = true
	}
	return ret
}
