package repository

import "time"

type storeOptions struct {
	busyTimeout time.Duration
	now         func() time.Time
}

func defaultOptions() storeOptions {
	return storeOptions{busyTimeout: 5 * time.Second, now: time.Now}
}

// Option configures a Store.
type Option func(*storeOptions)

// WithBusyTimeout sets how long sqlite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *storeOptions) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithClock overrides the clock used for updated_at bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}
