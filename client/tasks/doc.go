// Package tasks is the client of the tasks REST resource.
//
// Authorization and claims challenge recovery are done by the http.Client
// transport (see client/auth/transport); this package builds the requests and
// decodes the results.
package tasks
