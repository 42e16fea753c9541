package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xfery/dropship-backend/pkg/redis"
)

// defaultDedupeTTL covers Stripe's redelivery window with margin.
const defaultDedupeTTL = 24 * time.Hour

// IdempotencyGuard dedupes webhook deliveries by event id. A mark is set
// before processing and released only when processing fails, so redeliveries
// of a failed event get another attempt while duplicates of a processed one
// are acknowledged without side effects.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope}, nil
}

func (g *IdempotencyGuard) key(eventID string) string {
	return g.store.IdempotencyKey(g.scope, eventID)
}

// CheckAndMark marks the event as in-flight. It reports true when the event
// was already marked by an earlier delivery. The mark value records when the
// event was first seen, which helps when inspecting stuck deliveries by hand.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	seenAt := time.Now().UTC().Format(time.RFC3339)
	set, err := g.store.SetNX(ctx, g.key(eventID), seenAt, g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete releases the mark so a failed event can be redelivered.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return g.store.Del(ctx, g.key(eventID))
}
