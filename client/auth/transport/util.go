package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// bodyFunc returns a source of fresh copies of r's body, nil for a request
// without one. Without r.GetBody the body is read once and buffered; r itself
// is not modified.
func bodyFunc(r *http.Request) (func() (io.ReadCloser, error), error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	if r.GetBody != nil {
		return r.GetBody, nil
	}
	buf, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}, nil
}

// clone copies r for sending with a body taken from getBody.
func clone(r *http.Request, getBody func() (io.ReadCloser, error)) (*http.Request, error) {
	cloned := r.Clone(r.Context())
	if getBody == nil {
		return cloned, nil
	}
	body, err := getBody()
	if err != nil {
		return nil, fmt.Errorf("failed to copy request body: %w", err)
	}
	cloned.Body = body
	cloned.GetBody = getBody
	return cloned, nil
}

// discard drains and closes a response body so the connection can be reused.
func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
