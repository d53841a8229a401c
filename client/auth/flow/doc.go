// Package flow provides the redirect authorization code flow used as the fallback
// when the browser (popup) flow cannot be used, together with navigators that take
// the user agent to the authorization endpoint.
package flow
