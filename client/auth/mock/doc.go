// Package mock provides an httptest authorization server and a step-up protected
// tasks resource that facilitate testing of the client-side claims challenge flow.
//
// The authorization server issues RS256 signed tokens; a claims request passed to
// /authorize or /token is reflected into the access token "acrs" claim. The tasks
// resource answers write requests whose token lacks the required authentication
// context with a 401 claims challenge.
package mock
