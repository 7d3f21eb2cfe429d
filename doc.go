// Package goSession is the session lifecycle layer that sits in front of an
// external identity provider. It verifies bearer credentials, caches
// verified identity in Redis so repeated requests skip the provider round
// trip, rotates and revokes refresh tokens, and drives the MFA step-up flow
// that gates session completion behind a second factor.
//
// The package does not implement an identity provider: password storage,
// token minting, and one-time-code verification belong to the injected
// [IdentityProvider]. goSession owns the key shapes, TTL policy, rotation
// discipline, and the pending-MFA window.
//
// Construction follows the builder pattern:
//
//	engine, err := goSession.New().
//		WithRedis(rdb).
//		WithProvider(provider).
//		Build()
//
//	Docs: docs/engine.md, docs/usage.md
package goSession
