// Package collection provides small concurrency-safe containers shared by the stores.
package collection
