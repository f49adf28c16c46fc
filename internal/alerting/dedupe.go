package alerting

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/db"
)

// DefaultDedupeTTL is the suppression window when none is configured.
const DefaultDedupeTTL = 6 * time.Hour

// Dedupe suppresses repeat alerts for the same subject within a TTL window
// using a Redis counter. A nil Dedupe, or one without Redis, allows
// everything: losing dedupe must never lose alerts.
type Dedupe struct {
	store *db.RedisStore
	ttl   time.Duration
}

// NewDedupe creates a Dedupe over the given Redis store.
func NewDedupe(store *db.RedisStore, ttl time.Duration) *Dedupe {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &Dedupe{store: store, ttl: ttl}
}

// Allow reports whether an alert for this kind and subject should be sent.
// The first caller within the window wins; Redis errors fail open.
func (d *Dedupe) Allow(kind, subject string) bool {
	if d == nil || d.store == nil || d.store.Client == nil {
		return true
	}
	count, err := d.store.IncrementAlertKey(fmt.Sprintf("%s:%s", kind, subject), d.ttl)
	if err != nil {
		zap.L().Warn("alert dedupe check failed", zap.Error(err), zap.String("kind", kind))
		return true
	}
	return count == 1
}
