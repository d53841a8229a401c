package tasks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskclient/client/tasks"
	"github.com/viant/taskclient/internal/logx"
)

func TestClient_Requests(t *testing.T) {
	var seen []*http.Request
	var bodies []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Clone(context.Background()))
		body := map[string]interface{}{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/tasks":
			_, _ = w.Write([]byte(`[{"id":"1","description":"a"},{"id":"2","description":"b","completed":true}]`))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = w.Write([]byte(`{"id":"1","description":"a","owner":"me"}`))
		}
	}))
	defer server.Close()

	client, err := tasks.New(server.URL+"/api/tasks/", tasks.WithLogger(logx.Discard()))
	require.NoError(t, err)
	ctx := context.Background()

	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[1].Completed)

	task, err := client.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "me", task.Owner)

	_, err = client.Create(ctx, &tasks.Task{Description: "new"})
	require.NoError(t, err)
	_, err = client.Update(ctx, "1", &tasks.Task{Description: "changed", Completed: true})
	require.NoError(t, err)
	deleted, err := client.Delete(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	require.Len(t, seen, 5)
	expect := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/tasks"},
		{http.MethodGet, "/api/tasks/1"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/1"},
		{http.MethodDelete, "/api/tasks/1"},
	}
	for i, request := range seen {
		assert.Equal(t, expect[i].method, request.Method)
		assert.Equal(t, expect[i].path, request.URL.Path)
		assert.NotEmpty(t, request.Header.Get(tasks.RequestIDHeader))
		assert.Equal(t, "application/json", request.Header.Get("Accept"))
	}
	assert.Equal(t, "application/json", seen[2].Header.Get("Content-Type"))
	assert.Empty(t, seen[0].Header.Get("Content-Type"))
	assert.Equal(t, "new", bodies[2]["description"])
	assert.Equal(t, true, bodies[3]["completed"])
	assert.NotEqual(t, seen[0].Header.Get(tasks.RequestIDHeader), seen[1].Header.Get(tasks.RequestIDHeader))
}

func TestClient_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tasks/missing":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		case "/api/tasks/html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html></html>`))
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":`))
		}
	}))
	defer server.Close()
	client, err := tasks.New(server.URL + "/api/tasks")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Get(ctx, "missing")
	var statusErr *tasks.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.JSONEq(t, `{"error":"not found"}`, string(statusErr.Body))

	_, err = client.Get(ctx, "html")
	assert.ErrorIs(t, err, tasks.ErrUnexpectedContentType)

	_, err = client.Get(ctx, "truncated")
	assert.Error(t, err)

	_, err = tasks.New(" ")
	assert.Error(t, err)

	unreachable, err := tasks.New("http://127.0.0.1:1/api/tasks")
	require.NoError(t, err)
	_, err = unreachable.List(ctx)
	assert.Error(t, err)
}

func TestClient_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()
	client, err := tasks.New(server.URL, tasks.WithRateLimit(0.001, 1))
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.List(ctx)
	assert.Error(t, err)
}
