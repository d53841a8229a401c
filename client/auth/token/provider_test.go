package token_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskclient/client/auth/challenge"
	"github.com/viant/taskclient/client/auth/identity"
	"github.com/viant/taskclient/client/auth/identity/identitytest"
	"github.com/viant/taskclient/client/auth/store"
	"github.com/viant/taskclient/client/auth/token"
)

var account = &identity.Account{HomeAccountID: "user.tenant", Username: "user@example.com"}

func TestProvider_Token(t *testing.T) {
	ctx := context.Background()
	claims := `{"access_token":{"acrs":{"essential":true,"value":"c1"}}}`
	challenges := store.NewMemoryStore()
	require.NoError(t, challenges.Put(ctx, http.MethodPut, challenge.EncodeClaims(claims)))

	app := identitytest.New(account)
	provider := token.New(app, token.WithStore(challenges), token.WithScopes("api://tasks/access_as_user"))

	testCases := []struct {
		description  string
		method       string
		expectClaims string
	}{
		{description: "challenged method", method: http.MethodPut, expectClaims: claims},
		{description: "lower case method", method: "put", expectClaims: claims},
		{description: "other method", method: http.MethodGet},
		{description: "null method", method: ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			accessToken, err := provider.Token(ctx, testCase.method)
			require.NoError(t, err)
			assert.Equal(t, "silent", accessToken)
			request := app.LastSilent()
			require.NotNil(t, request)
			assert.Equal(t, testCase.expectClaims, request.Claims)
			assert.Equal(t, account, request.Account)
			assert.Equal(t, []string{"api://tasks/access_as_user"}, request.Scopes)
		})
	}
}

func TestProvider_NoActiveAccount(t *testing.T) {
	app := identitytest.New(nil)
	provider := token.New(app)
	_, err := provider.Token(context.Background(), http.MethodGet)
	assert.ErrorIs(t, err, token.ErrNoActiveAccount)
	silent, _, _ := app.Calls()
	assert.Zero(t, silent)
}

func TestProvider_InvalidClaims(t *testing.T) {
	ctx := context.Background()
	challenges := store.NewMemoryStore()
	require.NoError(t, challenges.Put(ctx, http.MethodDelete, "!!not base64!!"))
	provider := token.New(identitytest.New(account), token.WithStore(challenges))

	_, err := provider.Token(ctx, http.MethodDelete)
	var decodeErr *token.ClaimsDecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, http.MethodDelete, decodeErr.Method)
}

func TestProvider_SilentError(t *testing.T) {
	expected := identity.NewError(identity.KindInteractionRequired, "expired", nil)
	app := identitytest.New(account)
	app.SilentFunc = func(ctx context.Context, request *identity.SilentRequest) (*identity.Result, error) {
		return nil, expected
	}
	_, err := token.New(app).Token(context.Background(), http.MethodPost)
	assert.True(t, errors.Is(err, expected))
}
