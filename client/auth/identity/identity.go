package identity

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Account identifies a signed-in user.
type Account struct {
	HomeAccountID string `json:"homeAccountId"`
	Username      string `json:"username,omitempty"`
	Name          string `json:"name,omitempty"`
	Issuer        string `json:"issuer,omitempty"`
	TenantID      string `json:"tenantId,omitempty"`
}

// SilentRequest asks for a token without user interaction.
type SilentRequest struct {
	Account *Account
	Scopes  []string
	// Claims is the JSON claims request; empty when no challenge applies.
	Claims string
}

// InteractiveRequest asks for a token through a user facing flow.
type InteractiveRequest struct {
	Scopes []string
	// Claims is the JSON claims request; empty when no challenge applies.
	Claims string
}

// Result is an acquired token.
type Result struct {
	AccessToken string
	TokenType   string
	IDToken     string
	Scopes      []string
	ExpiresOn   time.Time
	Account     *Account
}

// Application is the identity library consumed by the token provider and the
// challenge handler.
type Application interface {
	// ActiveAccount returns the account used for silent requests, or nil.
	ActiveAccount() *Account
	// SetActiveAccount replaces the active account.
	SetActiveAccount(account *Account)
	// AcquireTokenSilent returns a cached or refreshed token.
	AcquireTokenSilent(ctx context.Context, request *SilentRequest) (*Result, error)
	// AcquireTokenPopup acquires a token through the interactive popup flow.
	AcquireTokenPopup(ctx context.Context, request *InteractiveRequest) (*Result, error)
	// AcquireTokenRedirect acquires a token through the interactive redirect flow.
	AcquireTokenRedirect(ctx context.Context, request *InteractiveRequest) (*Result, error)
}

// ScopeKey returns a canonical, order independent form of scopes.
func ScopeKey(scopes []string) string {
	normalized := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		if scope = strings.TrimSpace(scope); scope != "" {
			normalized = append(normalized, scope)
		}
	}
	sort.Strings(normalized)
	return strings.Join(normalized, " ")
}
