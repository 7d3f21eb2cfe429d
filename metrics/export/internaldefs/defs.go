package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricResolveCacheHit, Name: "gosession_resolve_cache_hit_total", Help: "Identity resolutions served from the cache."},
	{ID: goSession.MetricResolveCacheMiss, Name: "gosession_resolve_cache_miss_total", Help: "Identity resolutions that fell through to the provider."},
	{ID: goSession.MetricResolveFailure, Name: "gosession_resolve_failure_total", Help: "Failed identity resolutions."},
	{ID: goSession.MetricCacheBackendError, Name: "gosession_cache_backend_error_total", Help: "Cache operations degraded by backend errors."},
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful login attempts."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed login attempts."},
	{ID: goSession.MetricLoginRateLimited, Name: "gosession_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: goSession.MetricMFARequired, Name: "gosession_mfa_required_total", Help: "Login flows requiring MFA step-up."},
	{ID: goSession.MetricMFAConfirmSuccess, Name: "gosession_mfa_confirm_success_total", Help: "Successful MFA confirmations."},
	{ID: goSession.MetricMFAConfirmFailure, Name: "gosession_mfa_confirm_failure_total", Help: "Failed MFA confirmations."},
	{ID: goSession.MetricMFAPendingExpired, Name: "gosession_mfa_pending_expired_total", Help: "MFA confirmations rejected because the pending window expired."},
	{ID: goSession.MetricMFAReplayAttempt, Name: "gosession_mfa_replay_attempt_total", Help: "Detected MFA replay attempts."},
	{ID: goSession.MetricMFAAttemptsExceeded, Name: "gosession_mfa_attempts_exceeded_total", Help: "Pending MFA handshakes invalidated due to attempt cap."},
	{ID: goSession.MetricMFAPendingClamped, Name: "gosession_mfa_pending_clamped_total", Help: "Pending MFA windows clamped to the access token lifetime."},
	{ID: goSession.MetricFactorEnrolled, Name: "gosession_factor_enrolled_total", Help: "Enrolled MFA factors."},
	{ID: goSession.MetricFactorPruned, Name: "gosession_factor_pruned_total", Help: "Unverified MFA factors pruned before enrollment."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Failed refresh rotations."},
	{ID: goSession.MetricRotationExpired, Name: "gosession_rotation_expired_total", Help: "Refresh attempts with consumed or expired tokens."},
	{ID: goSession.MetricRefreshRateLimited, Name: "gosession_refresh_rate_limited_total", Help: "Rate-limited refresh attempts."},
	{ID: goSession.MetricProviderUnavailable, Name: "gosession_provider_unavailable_total", Help: "Operations failed by provider outages."},
	{ID: goSession.MetricSessionIssued, Name: "gosession_session_issued_total", Help: "Issued sessions."},
	{ID: goSession.MetricSessionRevoked, Name: "gosession_session_revoked_total", Help: "Revoked sessions."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Logout operations."},
	{ID: goSession.MetricRateLimitHit, Name: "gosession_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricResolveLatency, Name: "gosession_resolve_latency_seconds", Help: "Resolve latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
