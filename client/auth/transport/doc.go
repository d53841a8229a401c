// Package transport implements an http.RoundTripper that authorizes requests with
// bearer tokens and recovers from claims challenges.
//
// When a resource answers 401 Unauthorized with a WWW-Authenticate header carrying
// a claims parameter, the RoundTripper stores the challenge for the request
// method, acquires a new token interactively with the requested claims (popup
// first, redirect when the popup cannot be used) and replays the original request
// exactly once. Later requests for the same method get the claims up front
// through the token provider.
package transport
