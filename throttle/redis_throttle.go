package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Marker hands out at most one "go" per key per window across every process
// sharing the Redis instance.
type Marker struct {
	rdb    *redis.Client
	window time.Duration
}

func NewMarker(rdb *redis.Client, window time.Duration) *Marker {
	return &Marker{rdb: rdb, window: window}
}

func key(name string) string { return fmt.Sprintf("library:throttle:%s", name) }

// Acquire reports whether the caller won the current window for name.
// A nil Marker or a zero window never fires.
func (m *Marker) Acquire(ctx context.Context, name string) (bool, error) {
	if m == nil || m.rdb == nil || m.window <= 0 {
		return false, nil
	}
	return m.rdb.SetNX(ctx, key(name), time.Now().UTC().Format(time.RFC3339), m.window).Result()
}

// Reset clears the window so the next Acquire fires.
func (m *Marker) Reset(ctx context.Context, name string) error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Del(ctx, key(name)).Err()
}
