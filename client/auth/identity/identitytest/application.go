// Package identitytest provides a scriptable identity.Application for tests.
package identitytest

import (
	"context"
	"sync"

	"github.com/viant/taskclient/client/auth/identity"
)

// Application records every request and delegates to the configured funcs.
// A nil func succeeds with an access token named after the call; nil
// interactive funcs also sign the test account in.
type Application struct {
	SilentFunc   func(ctx context.Context, request *identity.SilentRequest) (*identity.Result, error)
	PopupFunc    func(ctx context.Context, request *identity.InteractiveRequest) (*identity.Result, error)
	RedirectFunc func(ctx context.Context, request *identity.InteractiveRequest) (*identity.Result, error)

	mux       sync.Mutex
	account   *identity.Account
	Silent    []*identity.SilentRequest
	Popups    []*identity.InteractiveRequest
	Redirects []*identity.InteractiveRequest
}

// New creates an application signed in as account (nil for signed out).
func New(account *identity.Account) *Application {
	return &Application{account: account}
}

func (a *Application) ActiveAccount() *identity.Account {
	a.mux.Lock()
	defer a.mux.Unlock()
	return a.account
}

func (a *Application) SetActiveAccount(account *identity.Account) {
	a.mux.Lock()
	defer a.mux.Unlock()
	a.account = account
}

func (a *Application) AcquireTokenSilent(ctx context.Context, request *identity.SilentRequest) (*identity.Result, error) {
	a.mux.Lock()
	a.Silent = append(a.Silent, request)
	fn := a.SilentFunc
	a.mux.Unlock()
	if fn != nil {
		return fn(ctx, request)
	}
	return &identity.Result{AccessToken: "silent", TokenType: "Bearer", Account: request.Account, Scopes: request.Scopes}, nil
}

func (a *Application) AcquireTokenPopup(ctx context.Context, request *identity.InteractiveRequest) (*identity.Result, error) {
	a.mux.Lock()
	a.Popups = append(a.Popups, request)
	fn := a.PopupFunc
	a.mux.Unlock()
	if fn != nil {
		return fn(ctx, request)
	}
	return &identity.Result{AccessToken: "popup", TokenType: "Bearer", Account: a.signIn(), Scopes: request.Scopes}, nil
}

func (a *Application) AcquireTokenRedirect(ctx context.Context, request *identity.InteractiveRequest) (*identity.Result, error) {
	a.mux.Lock()
	a.Redirects = append(a.Redirects, request)
	fn := a.RedirectFunc
	a.mux.Unlock()
	if fn != nil {
		return fn(ctx, request)
	}
	return &identity.Result{AccessToken: "redirect", TokenType: "Bearer", Account: a.signIn(), Scopes: request.Scopes}, nil
}

// signIn activates the default test account when none is active, as a real
// interactive flow does.
func (a *Application) signIn() *identity.Account {
	a.mux.Lock()
	defer a.mux.Unlock()
	if a.account == nil {
		a.account = &identity.Account{HomeAccountID: "test_subject", Username: "test_subject@example.com"}
	}
	return a.account
}

// Calls returns the number of silent, popup and redirect requests made so far.
func (a *Application) Calls() (silent, popup, redirect int) {
	a.mux.Lock()
	defer a.mux.Unlock()
	return len(a.Silent), len(a.Popups), len(a.Redirects)
}

// LastSilent returns the most recent silent request, or nil.
func (a *Application) LastSilent() *identity.SilentRequest {
	a.mux.Lock()
	defer a.mux.Unlock()
	if len(a.Silent) == 0 {
		return nil
	}
	return a.Silent[len(a.Silent)-1]
}

var _ identity.Application = (*Application)(nil)
