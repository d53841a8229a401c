package tasks_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/scy/auth/flow"
	authflow "github.com/viant/taskclient/client/auth/flow"
	"github.com/viant/taskclient/client/auth/identity"
	"github.com/viant/taskclient/client/auth/mock"
	"github.com/viant/taskclient/client/auth/transport"
	"github.com/viant/taskclient/client/tasks"
	"golang.org/x/oauth2"
)

// browserFlow approves the authorization request the way a signed in browser would.
type browserFlow struct {
	calls int
}

func (b *browserFlow) Token(ctx context.Context, config *oauth2.Config, options ...flow.Option) (*oauth2.Token, error) {
	b.calls++
	return authflow.NewRedirectFlow(authflow.OutOfBandNavigator(nil), "").Token(ctx, config, options...)
}

func TestClient_StepUp(t *testing.T) {
	server, err := mock.NewHTTPTestAuthorizationServer(mock.WithRequiredACR("c1"))
	require.NoError(t, err)
	defer server.Close()
	ctx := context.Background()

	popup := &browserFlow{}
	app := identity.NewOAuth2Application(mock.NewTestClient(server.Issuer),
		identity.WithPopupFlow(popup),
		identity.WithRedirectFlow(authflow.NewRedirectFlow(authflow.OutOfBandNavigator(nil), "")))
	_, err = app.AcquireTokenRedirect(ctx, &identity.InteractiveRequest{Scopes: []string{mock.TasksScope}})
	require.NoError(t, err)

	rt, err := transport.New(transport.WithApplication(app), transport.WithScopes(mock.TasksScope))
	require.NoError(t, err)
	client, err := tasks.New(server.TasksURL(), tasks.WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	seeded := server.AddTask("seeded")
	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, seeded, list[0].ID)
	assert.Equal(t, 0, popup.calls)

	created, err := client.Create(ctx, &tasks.Task{Description: "step up"})
	require.NoError(t, err)
	assert.Equal(t, "step up", created.Description)
	assert.Equal(t, "test_subject", created.Owner)
	assert.Equal(t, 2, server.Requests(http.MethodPost), "challenged once, replayed once")
	assert.Equal(t, 1, popup.calls)

	stored, ok, err := rt.Store().Lookup(ctx, http.MethodPost)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, mock.ClaimsChallenge("c1"), stored)

	_, err = client.Create(ctx, &tasks.Task{Description: "no challenge"})
	require.NoError(t, err)
	assert.Equal(t, 3, server.Requests(http.MethodPost), "stored claims satisfy the resource up front")
	assert.Equal(t, 1, popup.calls)
	grants := server.Grants()
	last := grants[len(grants)-1]
	assert.Equal(t, "refresh_token", last.GrantType)
	assert.Equal(t, mock.ClaimsRequest("c1"), last.Claims)

	updated, err := client.Update(ctx, created.ID, &tasks.Task{Description: "done", Completed: true})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, 1, server.Requests(http.MethodPut), "the cached token already carries the context")
	assert.Equal(t, 1, popup.calls)

	_, err = client.Delete(ctx, seeded)
	require.NoError(t, err)
	_, found := server.Task(seeded)
	assert.False(t, found)

	got, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", got.Description)
}
