// Package challenge parses RFC 7235 WWW-Authenticate headers and extracts the
// claims challenge a resource server issues when the presented access token does
// not carry the claims it requires (step-up authentication, conditional access
// evaluation).
//
// The claims parameter is kept in its transmitted (base64) form; DecodeClaims
// turns it into the JSON claims request handed to the authorization server.
package challenge
