// Package cli implements the tasks command line: CRUD commands against the
// tasks API and inspection of stored claims challenges.
package cli
