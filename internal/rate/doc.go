// Package rate provides internal primitives used to build Redis-backed rate limit keys,
// errors, and limiter behavior for security-sensitive session workflows.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - slg:e:  — login per-email
//   - slg:ip: — login per-IP
//   - srf:    — refresh per-token-hash
//
// # What this package must NOT do
//
//   - Decide which flows are throttled (the engine owns that policy).
//   - Be imported outside the goSession module.
package rate
