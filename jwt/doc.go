// Package jwt derives cache lifetimes from a bearer token's embedded expiry
// claim without verifying its signature.
//
// # Architecture boundaries
//
// Signature verification is the identity provider's job, performed by the
// Engine resolver; this package is a best-effort TTL optimization only. A
// token that fails to decode is not an error here — the caller receives the
// configured fallback TTL and full verification still happens upstream.
//
// # What this package must NOT do
//
//   - Accept a token as valid (no trust decisions).
//   - Access Redis or any I/O.
//   - Import goSession.
package jwt
