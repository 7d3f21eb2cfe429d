package goSession

import (
	"errors"
	"net/http"
	"time"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cache    CacheConfig
	Refresh  RefreshConfig
	MFA      MFAConfig
	Cookies  CookieConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig

	// DefaultRole is assigned when provider metadata carries no role.
	DefaultRole string
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig tunes the identity cache: key prefix, the per-operation
// timeout that backs the fail-open policy, and the TTL derivation bounds.
type CacheConfig struct {
	RedisPrefix string
	OpTimeout   time.Duration

	// TTL derivation from the token's exp claim.
	SafetyBuffer time.Duration
	FloorTTL     time.Duration
	CeilingTTL   time.Duration
	FallbackTTL  time.Duration
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by goSession APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	RedisPrefix string
	TTLDays     int
}

/*
====================================
MFA CONFIG
====================================
*/

// MFAConfig defines a public type used by goSession APIs.
//
// MFAConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MFAConfig struct {
	RedisPrefix string
	PendingTTL  time.Duration
	MaxAttempts int
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig names the cookies emitted by [Engine.Cookies]. The refresh
// cookie is path-scoped so it only travels to the rotation endpoint; the
// CSRF cookie is the one cookie readable by client script.
type CookieConfig struct {
	SessionCookieName string
	RefreshCookieName string
	RefreshCookiePath string
	CSRFCookieName    string
	CSRFTTL           time.Duration
	Domain            string
	SameSite          http.SameSite
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines a public type used by goSession APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	ProductionMode bool

	EnableIPThrottle        bool
	EnableRefreshThrottle   bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration the engine starts from when no
// explicit config is supplied. Callers mutate the returned value and pass it
// to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			RedisPrefix:  "sid",
			OpTimeout:    250 * time.Millisecond,
			SafetyBuffer: 30 * time.Second,
			FloorTTL:     60 * time.Second,
			CeilingTTL:   6 * time.Hour,
			FallbackTTL:  5 * time.Minute,
		},
		Refresh: RefreshConfig{
			RedisPrefix: "rfr",
			TTLDays:     7,
		},
		MFA: MFAConfig{
			RedisPrefix: "mfp",
			PendingTTL:  5 * time.Minute,
			MaxAttempts: 5,
		},
		Cookies: CookieConfig{
			SessionCookieName: "session_token",
			RefreshCookieName: "refresh_token",
			RefreshCookiePath: "/auth/refresh",
			CSRFCookieName:    "csrf_token",
			CSRFTTL:           24 * time.Hour,
			SameSite:          http.SameSiteLaxMode,
		},
		Security: SecurityConfig{
			ProductionMode:          false,
			EnableIPThrottle:        false,
			EnableRefreshThrottle:   true,
			MaxLoginAttempts:        5,
			LoginCooldownDuration:   15 * time.Minute,
			MaxRefreshAttempts:      20,
			RefreshCooldownDuration: 1 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		DefaultRole: "user",
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Cache
	if c.Cache.OpTimeout <= 0 || c.Cache.OpTimeout > 5*time.Second {
		return errors.New("Cache OpTimeout must be in (0s, 5s]")
	}
	if c.Cache.SafetyBuffer < 0 {
		return errors.New("Cache SafetyBuffer must not be negative")
	}
	if c.Cache.FloorTTL <= 0 {
		return errors.New("Cache FloorTTL must be positive")
	}
	if c.Cache.CeilingTTL < c.Cache.FloorTTL {
		return errors.New("Cache CeilingTTL must not be below FloorTTL")
	}
	if c.Cache.FallbackTTL < c.Cache.FloorTTL || c.Cache.FallbackTTL > c.Cache.CeilingTTL {
		return errors.New("Cache FallbackTTL must be within [FloorTTL, CeilingTTL]")
	}

	// Refresh
	if c.Refresh.TTLDays <= 0 {
		return errors.New("Refresh TTLDays must be positive")
	}
	if c.Refresh.TTLDays > 365 {
		return errors.New("Refresh TTLDays exceeds one year")
	}

	// MFA
	if c.MFA.PendingTTL <= 0 {
		return errors.New("MFA PendingTTL must be positive")
	}
	if c.MFA.PendingTTL > c.Cache.CeilingTTL {
		return errors.New("MFA PendingTTL must not exceed Cache CeilingTTL")
	}
	if c.MFA.MaxAttempts <= 0 {
		return errors.New("MFA MaxAttempts must be positive")
	}

	// Cookies
	if c.Cookies.SessionCookieName == "" ||
		c.Cookies.RefreshCookieName == "" ||
		c.Cookies.CSRFCookieName == "" {
		return errors.New("cookie names must not be empty")
	}
	if c.Cookies.RefreshCookiePath == "" {
		return errors.New("Cookies RefreshCookiePath must not be empty")
	}
	if c.Cookies.CSRFTTL <= 0 {
		return errors.New("Cookies CSRFTTL must be positive")
	}

	// Security
	if c.Security.MaxLoginAttempts <= 0 || c.Security.LoginCooldownDuration <= 0 {
		return errors.New("login throttle configuration invalid")
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts <= 0 || c.Security.RefreshCooldownDuration <= 0 {
			return errors.New("refresh throttle configuration invalid")
		}
	}

	if c.DefaultRole == "" {
		return errors.New("DefaultRole must not be empty")
	}

	return nil
}
