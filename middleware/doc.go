// Package middleware exposes HTTP middleware adapters for required and optional
// identity enforcement built on top of goSession.Engine resolution.
//
// # Guards
//
//   - [Require] — rejects requests that do not resolve to an identity.
//   - [Optional] — resolves an identity when present, passes through otherwise.
//   - [RequireCSRF] — double-submit CSRF check for state-changing requests.
//
// Each guard extracts the access token from the Authorization header or the
// session cookie, calls Engine.Resolve, and injects the resolved identity into
// the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself — all decisions are delegated to Engine.Resolve.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine.Resolve.
package middleware
