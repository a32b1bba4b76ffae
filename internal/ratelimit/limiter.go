package ratelimit

import "context"

// RateLimiter bounds how often a single requester may run the fetch
// pipeline.
type RateLimiter interface {
	Allow(ctx context.Context, requester string) (bool, error)
	Wait(ctx context.Context, requester string) error
}
