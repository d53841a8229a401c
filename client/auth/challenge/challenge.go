package challenge

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// HeaderName is the response header carrying authentication challenges.
	HeaderName = "WWW-Authenticate"
	// SchemeBearer is the OAuth 2.0 bearer token scheme.
	SchemeBearer = "Bearer"
	// ParamClaims is the auth-param holding the base64 encoded claims request.
	ParamClaims = "claims"
	// ParamError is the auth-param holding the OAuth error code.
	ParamError = "error"
	// InsufficientClaims is the error code servers send with a claims challenge.
	InsufficientClaims = "insufficient_claims"
)

var (
	// ErrMalformed reports a header that does not follow the challenge grammar.
	ErrMalformed = errors.New("malformed WWW-Authenticate header")
	// ErrNoClaims reports a well formed header without a claims parameter.
	ErrNoClaims = errors.New("WWW-Authenticate header has no claims parameter")
)

// ParseError describes why a WWW-Authenticate header could not yield a claims challenge.
type ParseError struct {
	Header string
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("failed to parse %s %q: %v", HeaderName, e.Header, e.Err)
	}
	return fmt.Sprintf("failed to parse %s %q at offset %d: %v", HeaderName, e.Header, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Challenge is a single challenge of a WWW-Authenticate header.
type Challenge struct {
	Scheme  string
	Token68 string
	// Params holds auth-params keyed by lower-cased name.
	Params map[string]string
}

// Param returns the named auth-param, matching the name case-insensitively.
func (c *Challenge) Param(name string) string {
	if c == nil || c.Params == nil {
		return ""
	}
	return c.Params[strings.ToLower(name)]
}

// IsBearer reports whether the challenge uses the Bearer scheme.
func (c *Challenge) IsBearer() bool {
	return c != nil && strings.EqualFold(c.Scheme, SchemeBearer)
}

// Claims returns the raw (still base64 encoded) claims parameter.
func (c *Challenge) Claims() string {
	return c.Param(ParamClaims)
}

// ErrorCode returns the OAuth error code, e.g. insufficient_claims.
func (c *Challenge) ErrorCode() string {
	return c.Param(ParamError)
}

// Claims extracts the raw claims challenge from a WWW-Authenticate header value.
// A Bearer challenge is preferred when several challenges carry claims.
func Claims(header string) (string, error) {
	challenges, err := Parse(header)
	if err != nil {
		return "", err
	}
	var candidate string
	for _, item := range challenges {
		claims := item.Claims()
		if claims == "" {
			continue
		}
		if item.IsBearer() {
			return claims, nil
		}
		if candidate == "" {
			candidate = claims
		}
	}
	if candidate == "" {
		return "", &ParseError{Header: header, Offset: -1, Err: ErrNoClaims}
	}
	return candidate, nil
}

// FromResponse returns the raw WWW-Authenticate header of a response, and false
// when the header is absent.
func FromResponse(resp *http.Response) (string, bool) {
	if resp == nil {
		return "", false
	}
	values := resp.Header.Values(HeaderName)
	if len(values) == 0 {
		return "", false
	}
	header := strings.TrimSpace(strings.Join(values, ", "))
	return header, header != ""
}

// DecodeClaims decodes a claims challenge into its JSON claims request.
// Servers are not consistent about padding or alphabet, so all four base64
// variants are tried.
func DecodeClaims(encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return "", nil
	}
	var lastErr error
	for _, encoding := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		data, err := encoding.DecodeString(encoded)
		if err == nil {
			return string(data), nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("failed to decode claims challenge: %w", lastErr)
}

// EncodeClaims encodes a JSON claims request the way servers transmit it.
func EncodeClaims(claims string) string {
	return base64.StdEncoding.EncodeToString([]byte(claims))
}
