// Package cache stores rendered pages for a limited time.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns the entry and true, or nil and false when absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	// Clear drops every entry this cache owns.
	Clear(ctx context.Context)
}
