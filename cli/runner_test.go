package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskclient"
	"github.com/viant/taskclient/client/auth/challenge"
	"github.com/viant/taskclient/client/auth/identity/identitytest"
	"github.com/viant/taskclient/client/auth/store"
	"github.com/viant/taskclient/client/tasks"
)

func newResource() *httptest.Server {
	header := fmt.Sprintf(`Bearer realm="", error="insufficient_claims", claims="%s"`, challenge.EncodeClaims(`{"access_token":{"acrs":{"essential":true,"value":"c1"}}}`))
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Header.Get("Authorization") != "Bearer popup" {
			w.Header().Set("WWW-Authenticate", header)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/tasks":
			_, _ = w.Write([]byte(`[{"id":"1","description":"a"}]`))
		default:
			task := &tasks.Task{ID: "1", Description: "a"}
			_ = json.NewDecoder(r.Body).Decode(task)
			_ = json.NewEncoder(w).Encode(task)
		}
	}))
}

func TestRunner_Run(t *testing.T) {
	server := newResource()
	defer server.Close()
	storeURL := filepath.Join(t.TempDir(), "claims.json")
	base := []string{"-u", server.URL + "/api/tasks", "--store", "file", "--store-url", storeURL, "--log.level", "error"}

	testCases := []struct {
		description string
		args        []string
		expect      string
		expectErr   bool
	}{
		{description: "list", args: []string{"list"}, expect: `[{"id":"1","description":"a","completed":false}]`},
		{description: "get", args: []string{"get", "1"}, expect: `{"id":"1","description":"a","completed":false}`},
		{description: "create", args: []string{"create", "-d", "new"}, expect: `{"id":"1","description":"new","completed":false}`},
		{description: "update", args: []string{"update", "1", "-d", "done", "--completed"}, expect: `{"id":"1","description":"done","completed":true}`},
		{description: "missing id", args: []string{"get"}, expectErr: true},
		{description: "no command", args: []string{}, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			out := &bytes.Buffer{}
			runner := New(out)
			runner.Configure = func(options *taskclient.ClientOptions) {
				options.Auth.Application = identitytest.New(nil)
			}
			err := runner.Run(context.Background(), append(append([]string{}, base...), testCase.args...))
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, testCase.expect, out.String())
		})
	}

	out := &bytes.Buffer{}
	runner := New(out)
	runner.Configure = func(options *taskclient.ClientOptions) {
		options.Auth.Application = identitytest.New(nil)
	}
	require.NoError(t, runner.Run(context.Background(), append(append([]string{}, base...), "challenges")))
	var entries []*store.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "POST", entries[0].Method)
	assert.Equal(t, "PUT", entries[1].Method)

	out.Reset()
	require.NoError(t, runner.Run(context.Background(), append(append([]string{}, base...), "challenges", "--clear")))
	assert.Equal(t, "null\n", out.String())
}

func TestRunner_YAMLOutput(t *testing.T) {
	server := newResource()
	defer server.Close()
	out := &bytes.Buffer{}
	runner := New(out)
	runner.Configure = func(options *taskclient.ClientOptions) {
		options.Auth.Application = identitytest.New(nil)
	}
	require.NoError(t, runner.Run(context.Background(), []string{"-u", server.URL + "/api/tasks", "-o", "yaml", "list"}))
	assert.Contains(t, out.String(), "description: a")
}
