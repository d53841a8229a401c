// Package token resolves the access token for an outgoing request.
//
// The provider asks the identity application for a token silently, adding the
// claims challenge previously stored for the request method so that a resource
// which already stepped up a method gets a satisfying token on the first attempt.
package token
