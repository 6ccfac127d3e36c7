// Package service holds the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"time"
)

// Clock returns the current instant. Services stamp every timestamp they
// write through it.
type Clock func() time.Time

// UTCNow is the production Clock.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// FeedInvalidator drops cached feeds after a mutation.
type FeedInvalidator interface {
	InvalidateFeeds(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateFeeds(context.Context) {}

func orNoop(f FeedInvalidator) FeedInvalidator {
	if f == nil {
		return noopInvalidator{}
	}
	return f
}

func orUTC(now Clock) Clock {
	if now == nil {
		return UTCNow
	}
	return now
}
