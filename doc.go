// Package gkv defines the core interfaces, types, and helpers of a
// transactional key-value storage backend for graph databases. It provides
// persistent handles, configuration, transaction tokens, shared error codes,
// and retry helpers. Concrete engines live in subpackages such as badger,
// which wraps an embedded transactional store behind the handle-addressed
// contract defined here.
//
// The data model is deliberately narrow: opaque byte arrays addressed by
// fixed-size persistent handles, read and written inside transaction scopes
// obtained from the environment. Everything engine-specific (on-disk format,
// locking, conflict detection) stays behind the subpackage boundary so the
// engine can be swapped without touching callers.
package gkv

// Transaction propagation model
//
// Operations never rely on implicit goroutine-affine state. A transaction is
// an explicit token: bind it to a context with ContextWithTransaction and
// pass that context to data operations, or pass a plain context to get a
// single-operation auto-commit transaction. Commit and Rollback release the
// token; using it afterwards fails with an IllegalState-coded error, and
// Rollback alone is safe to repeat.
