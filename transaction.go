package gkv

import (
	"context"
)

// Transaction is a unit of isolation bounding a group of store, read and
// remove operations. A Transaction is confined to one goroutine; tokens must
// never be shared or migrated across goroutines.
//
// Commit finalizes the transaction. A write-write race lost to another
// transaction surfaces as a CommitConflict-coded error; the caller is
// expected to retry the whole unit of work (see RetryOnConflict).
// Rollback aborts the transaction and is idempotent: rolling back an
// already-resolved transaction is a no-op.
type Transaction interface {
	// Commit finalizes the transaction and makes its writes visible.
	Commit(ctx context.Context) error
	// Rollback aborts the transaction, discarding its writes.
	Rollback(ctx context.Context) error
	// Active reports whether the transaction has begun and is not yet
	// committed or rolled back.
	Active() bool
	// ID returns the transaction's identifier. Inert pass-through
	// transactions report NilHandle.
	ID() Handle
}

// Transactor begins transactions against an open environment. When the
// environment is configured non-transactional, Begin returns an inert
// pass-through Transaction so callers need no conditional logic.
type Transactor interface {
	Begin(ctx context.Context) (Transaction, error)
}

type txContextKey struct{}

// ContextWithTransaction binds tx to the context, making it the ambient
// transaction for data operations performed with the returned context.
// This replaces thread-affine transaction state with explicit propagation.
func ContextWithTransaction(ctx context.Context, tx Transaction) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TransactionFrom returns the ambient transaction bound to ctx, if any.
func TransactionFrom(ctx context.Context) (Transaction, bool) {
	tx, ok := ctx.Value(txContextKey{}).(Transaction)
	return tx, ok
}
