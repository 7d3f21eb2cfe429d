package goSession

import (
	"fmt"
	"strings"
	"time"
)

// SecurityFinding defines a public type used by goSession APIs.
//
// SecurityFinding instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityFinding struct {
	Severity string
	Area     string
	Message  string
}

// SecurityReport defines a public type used by goSession APIs.
//
// SecurityReport instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityReport struct {
	ProductionMode bool
	Findings       []SecurityFinding
}

// SecurityAudit describes the securityaudit operation and its observable behavior.
//
// SecurityAudit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SecurityAudit() SecurityReport {
	cfg := e.config
	report := SecurityReport{ProductionMode: cfg.Security.ProductionMode}

	add := func(severity, area, message string) {
		report.Findings = append(report.Findings, SecurityFinding{
			Severity: severity,
			Area:     area,
			Message:  message,
		})
	}

	if !cfg.Security.ProductionMode {
		add("warn", "cookies", "production mode disabled: cookies are issued without the Secure attribute")
	}
	if !cfg.Security.EnableIPThrottle {
		add("warn", "rate-limit", "per-IP login throttling disabled: distributed credential stuffing is unmitigated")
	}
	if !cfg.Security.EnableRefreshThrottle {
		add("info", "rate-limit", "refresh throttling disabled")
	}
	if cfg.MFA.PendingTTL > 10*time.Minute {
		add("warn", "mfa", fmt.Sprintf("pending MFA window of %s is long; stolen pending tokens stay redeemable for the full window", cfg.MFA.PendingTTL))
	}
	if cfg.Refresh.TTLDays > 30 {
		add("warn", "refresh", fmt.Sprintf("refresh lifetime of %d days exceeds 30; consider shorter rotation", cfg.Refresh.TTLDays))
	}
	if cfg.Cache.CeilingTTL > 12*time.Hour {
		add("info", "cache", "identity cache ceiling above 12h delays revocation visibility")
	}
	if !cfg.Audit.Enabled {
		add("info", "audit", "audit dispatch disabled: authentication events are not recorded")
	}

	return report
}

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r SecurityReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "security report (production=%v)\n", r.ProductionMode)
	if len(r.Findings) == 0 {
		b.WriteString("  no findings\n")
		return b.String()
	}
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", f.Severity, f.Area, f.Message)
	}
	return b.String()
}
