package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/google/uuid"
	"github.com/viant/afs/url"
	"github.com/viant/taskclient/internal/logx"
	"golang.org/x/time/rate"
)

const (
	// RequestIDHeader carries the client generated request id.
	RequestIDHeader = "X-Request-ID"
	jsonContentType = "application/json"
	maxErrorBody    = 64 << 10
)

var jsonMediaType = contenttype.NewMediaType(jsonContentType)

// ErrUnexpectedContentType reports a successful response that is not JSON.
var ErrUnexpectedContentType = errors.New("unexpected response content type")

// Client calls the tasks resource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
}

// New creates a client of the tasks collection at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("tasks base URL was empty")
	}
	ret := &Client{baseURL: baseURL, httpClient: http.DefaultClient}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}

// BaseURL returns the collection URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List returns all tasks.
func (c *Client) List(ctx context.Context) ([]*Task, error) {
	var result []*Task
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns the task with id.
func (c *Client) Get(ctx context.Context, id string) (*Task, error) {
	result := &Task{}
	if err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Create adds a task and returns it as stored.
func (c *Client) Create(ctx context.Context, task *Task) (*Task, error) {
	result := &Task{}
	if err := c.do(ctx, http.MethodPost, c.baseURL, task, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Update replaces the task with id.
func (c *Client) Update(ctx context.Context, id string, task *Task) (*Task, error) {
	result := &Task{}
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), task, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the task with id and returns the deleted task when the
// resource echoes it.
func (c *Client) Delete(ctx context.Context, id string) (*Task, error) {
	var result *Task
	if err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) itemURL(id string) string {
	return url.Join(c.baseURL, neturl.PathEscape(id))
}

func (c *Client) do(ctx context.Context, method, URL string, body interface{}, target interface{}) error {
	requestID := uuid.NewString()
	ctx = logx.WithRequest(logx.WithContext(ctx, logx.FromContext(ctx, c.logger).With("req_id", requestID)), nil, method, URL)
	logger := logx.FromContext(ctx, c.logger)
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait failed: %w", err)
		}
	}
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %T: %w", body, err)
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, URL, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", jsonContentType)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", jsonContentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("tasks.request.failed", "error", err)
		return fmt.Errorf("%s %s failed: %w", method, URL, err)
	}
	defer resp.Body.Close()
	logger.Debug("tasks.request.done", "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, URL: URL, StatusCode: resp.StatusCode, Body: bytes.TrimSpace(data)}
	}
	if resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		return nil
	}
	mediaType, err := contenttype.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !mediaType.Matches(jsonMediaType) {
		return fmt.Errorf("%w: %q", ErrUnexpectedContentType, resp.Header.Get("Content-Type"))
	}
	if err = json.NewDecoder(resp.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s %s response: %w", method, URL, err)
	}
	return nil
}
