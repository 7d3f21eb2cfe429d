// Package internal contains helper utilities that are intentionally private to goSession,
// including secure random generation and token key hashing.
//
// # Sub-packages
//
//   - rate — core Redis-backed rate limit primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
