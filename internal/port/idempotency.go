package port

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that have already been processed.
type IdempotencyStore interface {
	// MarkProcessed records key and reports true the first time it is seen
	// within ttl.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget removes key so a later delivery is processed again.
	Forget(ctx context.Context, key string) error
}
