package badger

import (
	"context"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/gkvdb/gkv"
)

// Transaction coordination for the environment. Tokens are explicit: bind
// them to a context with gkv.ContextWithTransaction so data operations join
// the ambient transaction, or let each operation auto-commit its own.
// Nesting is not supported; one active transaction per context.

var (
	errNested   = errors.New("context already holds an active transaction")
	errResolved = errors.New("transaction already committed or rolled back")
)

var (
	_ gkv.Transactor  = (*Environment)(nil)
	_ gkv.Transaction = (*transaction)(nil)
	_ gkv.Transaction = inertTransaction{}
)

// Begin starts a new transaction against the open environment. When the
// environment is non-transactional it returns an inert pass-through token so
// callers need no conditional logic. Begin fails with a
// NestedTransaction-coded error if ctx already carries an active transaction.
func (e *Environment) Begin(ctx context.Context) (gkv.Transaction, error) {
	if ambient, ok := gkv.TransactionFrom(ctx); ok && ambient.Active() {
		return nil, gkv.Error{Code: gkv.NestedTransaction, Err: errNested}
	}
	db, config, err := e.engine()
	if err != nil {
		return nil, err
	}
	if !config.Transactional {
		return inertTransaction{}, nil
	}
	// Registering before creating the engine transaction makes Shutdown wait
	// for this token to resolve before the engine is closed.
	if !e.track() {
		return nil, gkv.Error{Code: gkv.IllegalState, Err: errClosed}
	}
	return &transaction{
		env: e,
		btx: db.NewTransaction(!config.ReadOnly),
		id:  gkv.NewHandle(),
	}, nil
}

// RunTransaction executes fn inside a new transaction. The transaction is
// bound to the context passed to fn, so data operations inside fn join it
// automatically. It commits on success and rolls back on error or panic;
// release is guaranteed on all exit paths. Combine with gkv.RetryOnConflict
// to re-execute the unit of work on commit conflicts.
func (e *Environment) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t, err := e.Begin(ctx)
	if err != nil {
		return err
	}
	tctx := gkv.ContextWithTransaction(ctx, t)
	// No-op once committed; releases the transaction on error and panic paths.
	defer t.Rollback(tctx)
	if err := fn(tctx); err != nil {
		return err
	}
	return t.Commit(tctx)
}

// transaction wraps one engine transaction. Confined to a single goroutine
// by contract; the mutex only protects resolution against a concurrent
// Shutdown-driven rollback.
type transaction struct {
	env *Environment
	btx *badger.Txn
	id  gkv.Handle

	mu       sync.Mutex
	resolved bool
}

// Commit finalizes the transaction. A lost write-write race surfaces as a
// CommitConflict-coded error; the caller should retry the whole unit of work.
func (t *transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.resolved {
		return gkv.Error{Code: gkv.IllegalState, Err: errResolved}
	}
	t.resolved = true
	defer t.env.txs.Done()
	if err := t.btx.Commit(); err != nil {
		switch {
		case errors.Is(err, badger.ErrConflict):
			return gkv.Error{Code: gkv.CommitConflict, Err: err, UserData: t.id}
		case errors.Is(err, badger.ErrDBClosed):
			return gkv.Error{Code: gkv.IllegalState, Err: err}
		default:
			return gkv.Error{Code: gkv.StoreFailure, Err: err, UserData: t.id}
		}
	}
	return nil
}

// Rollback aborts the transaction, discarding its writes. It is idempotent:
// rolling back an already-resolved transaction is a no-op.
func (t *transaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.resolved {
		return nil
	}
	t.resolved = true
	t.btx.Discard()
	t.env.txs.Done()
	return nil
}

// Active reports whether the transaction is begun and unresolved.
func (t *transaction) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.resolved
}

// ID returns the transaction identifier.
func (t *transaction) ID() gkv.Handle {
	return t.id
}

// inertTransaction is the pass-through token handed out when transactional
// mode is off. Commit and Rollback are no-ops; data operations bound to it
// execute without isolation. Active always reports false so it never trips
// the nested-transaction check.
type inertTransaction struct{}

func (inertTransaction) Commit(context.Context) error   { return nil }
func (inertTransaction) Rollback(context.Context) error { return nil }
func (inertTransaction) Active() bool                   { return false }
func (inertTransaction) ID() gkv.Handle                 { return gkv.NilHandle }
