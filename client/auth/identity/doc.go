// Package identity is the boundary to the identity provider.
//
// Application mirrors the operations a public client identity library exposes:
// the active account, silent token acquisition from cached/refresh tokens, and two
// interactive acquisitions. The "popup" acquisition drives a loopback browser
// authorization code flow; the "redirect" acquisition hands the authorization URL
// to a navigator and completes with the redirected callback URL. Interactive
// failures are reported as *Error with a Kind, so callers can fall back from a
// blocked popup to a redirect.
//
// OAuth2Application implements Application on top of golang.org/x/oauth2 and the
// viant/scy authorization code flows.
package identity
