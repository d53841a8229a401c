// Package store persists claims challenges keyed by HTTP method.
//
// A challenge received for a method is written by the challenge handler and read
// by the token provider on every later token request for that method, so the
// token is requested with the required claims up front. Each method holds at most
// one challenge; a newer challenge replaces the older one.
//
// The package ships an in-memory store and a file store backed by viant/afs;
// the redis and sqlite sub packages provide shared persistent backends.
package store
