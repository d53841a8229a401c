package taskclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskclient"
	"github.com/viant/taskclient/client/auth/challenge"
	"github.com/viant/taskclient/client/auth/identity"
	"github.com/viant/taskclient/client/auth/identity/identitytest"
	"github.com/viant/taskclient/client/tasks"
	"github.com/viant/taskclient/internal/logx"
)

func newServer() *httptest.Server {
	header := fmt.Sprintf(`Bearer realm="", error="insufficient_claims", claims="%s"`, challenge.EncodeClaims(`{"access_token":{"acrs":{"essential":true,"value":"c1"}}}`))
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Header.Get("Authorization") != "Bearer popup" {
			w.Header().Set("WWW-Authenticate", header)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id":"1","description":"a"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"2","description":"b"}`))
	}))
}

func TestNewClient(t *testing.T) {
	server := newServer()
	defer server.Close()

	for _, storeType := range []string{taskclient.StoreMemory, taskclient.StoreFile, taskclient.StoreSQLite} {
		t.Run(storeType, func(t *testing.T) {
			ctx := context.Background()
			app := identitytest.New(nil)
			options := &taskclient.ClientOptions{
				BaseURL: server.URL + "/api/tasks",
				Scopes:  []string{"api://tasks/access_as_user"},
				Auth:    taskclient.ClientAuth{Application: app},
				Store:   taskclient.ClientStore{Type: storeType},
				Log:     logConfig(),
			}
			switch storeType {
			case taskclient.StoreFile:
				options.Store.URL = filepath.Join(t.TempDir(), "claims.json")
			case taskclient.StoreSQLite:
				options.Store.URL = filepath.Join(t.TempDir(), "claims.db")
			}
			cli, err := taskclient.NewClient(ctx, options)
			require.NoError(t, err)
			defer cli.Close()

			account, err := cli.SignIn(ctx)
			require.NoError(t, err)
			require.NotNil(t, account)
			_, popups, _ := app.Calls()
			assert.Equal(t, 1, popups)

			items, err := cli.List(ctx)
			require.NoError(t, err)
			assert.Len(t, items, 1)

			created, err := cli.Create(ctx, &tasks.Task{Description: "b"})
			require.NoError(t, err)
			assert.Equal(t, "2", created.ID)

			entries, err := cli.Store().List(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, http.MethodPost, entries[0].Method)
		})
	}
}

func TestNewClient_Invalid(t *testing.T) {
	ctx := context.Background()
	_, err := taskclient.NewClient(ctx, &taskclient.ClientOptions{})
	assert.Error(t, err)

	_, err = taskclient.NewClient(ctx, &taskclient.ClientOptions{
		BaseURL:      "http://localhost/api/tasks",
		Auth:         taskclient.ClientAuth{Application: identitytest.New(nil)},
		Invalidation: "sometimes",
	})
	assert.Error(t, err)
}

func TestClient_SignInActive(t *testing.T) {
	account := &identity.Account{HomeAccountID: "a"}
	app := identitytest.New(account)
	cli, err := taskclient.NewClient(context.Background(), &taskclient.ClientOptions{
		BaseURL: "http://localhost/api/tasks",
		Auth:    taskclient.ClientAuth{Application: app},
		Log:     logConfig(),
	})
	require.NoError(t, err)
	signedIn, err := cli.SignIn(context.Background())
	require.NoError(t, err)
	assert.Same(t, account, signedIn)
	_, popups, _ := app.Calls()
	assert.Zero(t, popups)
}

func TestNewClient_InteractiveOutlivesTimeout(t *testing.T) {
	server := newServer()
	defer server.Close()

	app := identitytest.New(&identity.Account{HomeAccountID: "test_subject"})
	var deadlines []bool
	app.PopupFunc = func(ctx context.Context, request *identity.InteractiveRequest) (*identity.Result, error) {
		_, ok := ctx.Deadline()
		deadlines = append(deadlines, ok)
		select {
		case <-time.After(300 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &identity.Result{AccessToken: "popup", TokenType: "Bearer", Account: app.ActiveAccount()}, nil
	}
	ctx := context.Background()
	cli, err := taskclient.NewClient(ctx, &taskclient.ClientOptions{
		BaseURL: server.URL + "/api/tasks",
		Auth:    taskclient.ClientAuth{Application: app},
		Log:     logConfig(),
		Timeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	defer cli.Close()

	created, err := cli.Create(ctx, &tasks.Task{Description: "b"})
	require.NoError(t, err)
	assert.Equal(t, "2", created.ID)
	assert.Equal(t, []bool{false}, deadlines)
}

func logConfig() logx.Config {
	return logx.Config{Level: "error"}
}
