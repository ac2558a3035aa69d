package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ariefcatur/go-snack-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned to the storefront when stock cannot be read
// in time. The display shows a network error instead of guessing.
var ErrUnavailable = errors.New("inventory unavailable")

// Reader serves the customer-facing stock display: Redis first, then the
// store, all under a fixed timeout.
type Reader struct {
	Store   *Store
	Redis   redis.Cmdable
	Timeout time.Duration
}

type Snapshot struct {
	Record
	Available bool `json:"disponible"`
}

func (r *Reader) Current(ctx context.Context) (Snapshot, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if s, err := r.Redis.Get(ctx, redisx.KeyInventory).Bytes(); err == nil {
		var snap Snapshot
		if json.Unmarshal(s, &snap) == nil {
			return snap, nil
		}
	}

	rec, found, err := r.Store.Get(ctx)
	if err != nil {
		slog.Warn("inventory read failed", "error", err)
		return Snapshot{}, ErrUnavailable
	}
	snap := Snapshot{Record: rec, Available: found}
	if b, err := json.Marshal(snap); err == nil {
		_ = r.Redis.Set(ctx, redisx.KeyInventory, b, redisx.TTLInventory).Err()
	}
	return snap, nil
}

// Invalidate drops the cached snapshot after a write.
func (r *Reader) Invalidate(ctx context.Context) {
	if err := r.Redis.Del(ctx, redisx.KeyInventory).Err(); err != nil {
		slog.Warn("inventory cache invalidate failed", "error", err)
	}
}
