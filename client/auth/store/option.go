package store

import "time"

// Options controls entry lifetime for every store implementation.
type Options struct {
	maxAge time.Duration
	clock  func() time.Time
}

type Option func(*Options)

// WithMaxAge makes entries older than maxAge behave as absent. Zero keeps
// entries until they are replaced or deleted.
func WithMaxAge(maxAge time.Duration) Option {
	return func(o *Options) {
		o.maxAge = maxAge
	}
}

// WithClock sets the time source used to stamp and expire entries.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.clock = clock
	}
}

// MaxAge returns the configured entry lifetime.
func (o *Options) MaxAge() time.Duration {
	return o.maxAge
}

// Now returns the current time of the configured clock.
func (o *Options) Now() time.Time {
	return o.clock()
}

// Expired reports whether an entry created at created has outlived the max age.
func (o *Options) Expired(created time.Time) bool {
	if o.maxAge <= 0 {
		return false
	}
	return o.clock().Sub(created) >= o.maxAge
}

// NewOptions applies options over the defaults.
func NewOptions(options []Option) *Options {
	ret := &Options{clock: time.Now}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
