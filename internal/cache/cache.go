// Package cache provides an optional read-through cache for computed results.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store caches computed values by key.
type Store interface {
	// GetOrCompute returns the cached value for key or runs compute and caches
	// its result for ttl. Failed computations are not cached.
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (any, error)) (any, error)
	// Invalidate drops every entry whose key starts with prefix and returns how many were dropped.
	Invalidate(prefix string) int
}

var requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledger",
	Subsystem: "cache",
	Name:      "requests_total",
	Help:      "Cache lookups partitioned by result (hit, miss).",
}, []string{"result"})

// Fetch is the typed form of Store.GetOrCompute. A nil store computes directly.
func Fetch[T any](ctx context.Context, s Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if s == nil {
		return compute(ctx)
	}
	v, err := s.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (any, error) { return compute(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: key %q holds %T", key, v)
	}
	return out, nil
}

// Key joins a user-scoped cache key. Keys for one user share the "<user>|" prefix.
func Key(user fmt.Stringer, op string, params ...any) string {
	k := user.String() + "|" + op
	for _, p := range params {
		k += "|" + fmt.Sprint(p)
	}
	return k
}

// UserPrefix is the prefix to pass to Invalidate for all of a user's entries.
func UserPrefix(user fmt.Stringer) string { return user.String() + "|" }
