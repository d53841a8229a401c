package flow

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Navigator takes the user agent to an authorization URL and returns the URL the
// authorization endpoint redirected back to.
type Navigator interface {
	Navigate(ctx context.Context, authURL string) (string, error)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, authURL string) (string, error)

func (f NavigatorFunc) Navigate(ctx context.Context, authURL string) (string, error) {
	return f(ctx, authURL)
}

type promptNavigator struct {
	in  io.Reader
	out io.Writer
}

// Navigate prints the URL and reads the redirected URL the user pastes back.
func (p *promptNavigator) Navigate(ctx context.Context, authURL string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "Open the following URL in a browser and sign in:\n\n  %s\n\nThen paste the URL you were redirected to: ", authURL)
	lines := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			errs <- fmt.Errorf("failed to read redirect location: %w", err)
			return
		}
		lines <- strings.TrimSpace(line)
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errs:
		return "", err
	case line := <-lines:
		return line, nil
	}
}

// PromptNavigator asks the user to complete the authorization in a browser; nil
// in/out default to the process stdin/stdout.
func PromptNavigator(in io.Reader, out io.Writer) Navigator {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &promptNavigator{in: in, out: out}
}

type outOfBandNavigator struct {
	client *http.Client
}

// Navigate requests the authorization URL without following redirects and
// returns the Location header, for authorization servers that approve without
// user interaction (test and trusted device setups).
func (o *outOfBandNavigator) Navigate(ctx context.Context, authURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request authorization URL %v", err)
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("missing location header")
	}
	return location, nil
}

// OutOfBandNavigator follows the authorization endpoint's first redirect only.
func OutOfBandNavigator(client *http.Client) Navigator {
	ret := &http.Client{}
	if client != nil {
		copied := *client
		ret = &copied
	}
	ret.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		// returning this prevents redirects
		return http.ErrUseLastResponse
	}
	return &outOfBandNavigator{client: ret}
}
