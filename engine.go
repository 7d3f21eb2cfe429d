package goSession

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/jwt"
)

// Engine defines a public type used by goSession APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config        Config
	identityCache *identityCacheStore
	refreshStore  *refreshStore
	pendingStore  *mfaPendingStore
	rateLimiter   *rate.Limiter
	audit         *auditDispatcher
	metrics       *Metrics
	provider      IdentityProvider
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// SessionCookieName returns the configured access-session cookie name, for
// callers that wire their own extraction.
func (e *Engine) SessionCookieName() string {
	if e == nil {
		return ""
	}
	return e.config.Cookies.SessionCookieName
}

// CSRFCookieName returns the configured CSRF cookie name.
func (e *Engine) CSRFCookieName() string {
	if e == nil {
		return ""
	}
	return e.config.Cookies.CSRFCookieName
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) warn(msg string) {
	log.Print(msg)
}

func (e *Engine) ttlBounds() jwt.Bounds {
	return jwt.Bounds{
		SafetyBuffer: e.config.Cache.SafetyBuffer,
		Floor:        e.config.Cache.FloorTTL,
		Ceiling:      e.config.Cache.CeilingTTL,
		Fallback:     e.config.Cache.FallbackTTL,
	}
}

func (e *Engine) refreshTTL() time.Duration {
	return time.Duration(e.config.Refresh.TTLDays) * 24 * time.Hour
}

/*
====================================
FAIL-OPEN CACHE ACCESS
====================================

Every cache operation runs under a short timeout so a degraded backend
cannot stall request handling. Lookup failure maps to a miss and store
failure to a silent no-op: cache unavailability degrades latency, never
correctness, because a miss always falls through to real verification.
*/

func (e *Engine) cacheLookup(ctx context.Context, token string) (*Identity, bool) {
	opCtx, cancel := context.WithTimeout(ctx, e.config.Cache.OpTimeout)
	defer cancel()

	identity, err := e.identityCache.Get(opCtx, token)
	if err != nil {
		if !errors.Is(err, errIdentityNotCached) {
			e.metricInc(MetricCacheBackendError)
			e.warn("goSession: identity cache lookup degraded to miss")
		}
		return nil, false
	}
	return identity, true
}

func (e *Engine) cacheStore(ctx context.Context, token string, identity *Identity, ttl time.Duration) {
	opCtx, cancel := context.WithTimeout(ctx, e.config.Cache.OpTimeout)
	defer cancel()

	if err := e.identityCache.Save(opCtx, token, identity, ttl); err != nil {
		e.metricInc(MetricCacheBackendError)
		e.warn("goSession: identity cache store skipped")
	}
}

func (e *Engine) cacheEvict(ctx context.Context, token string) {
	opCtx, cancel := context.WithTimeout(ctx, e.config.Cache.OpTimeout)
	defer cancel()

	if _, err := e.identityCache.Delete(opCtx, token); err != nil {
		e.metricInc(MetricCacheBackendError)
		e.warn("goSession: identity cache eviction skipped")
	}
}
