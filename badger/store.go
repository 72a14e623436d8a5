package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang/snappy"

	"github.com/gkvdb/gkv"
)

// DataStore is the primary handle-to-byte-array index of an Environment.
// Every operation runs inside a transaction scope: the ambient transaction
// bound to ctx when there is one, otherwise a single-operation auto-commit
// transaction acquired and released by the operation itself. A context still
// carrying a resolved token fails with an IllegalState-coded error instead
// of falling back to auto-commit.
//
// Within one transaction a Store followed by a GetData on the same handle
// observes the just-written value. Across transactions visibility follows
// the engine's snapshot isolation.
type DataStore struct {
	env *Environment
}

// NewDataStore returns a DataStore bound to env.
func NewDataStore(env *Environment) *DataStore {
	return &DataStore{env: env}
}

// Store inserts or overwrites the record at handle. Overwrite is
// unconditional; a write-write race with another transaction surfaces only
// at commit time as a CommitConflict.
func (s *DataStore) Store(ctx context.Context, handle gkv.Handle, data []byte) error {
	db, config, err := s.env.engine()
	if err != nil {
		return err
	}
	payload := data
	if config.Compression {
		payload = snappy.Encode(nil, data)
	}
	op := func(btx *badger.Txn) error {
		return btx.Set(handle.Bytes(), payload)
	}
	btx, ok, err := s.ambient(ctx)
	if err != nil {
		return err
	}
	if ok {
		return mapWriteError(op(btx), handle)
	}
	return mapWriteError(db.Update(op), handle)
}

// GetData returns the bytes stored at handle. Absence is an explicit result,
// not an error: a handle that was never written, or was removed, yields
// (nil, false, nil). Only engine-level failures (or a closed environment)
// yield an error.
func (s *DataStore) GetData(ctx context.Context, handle gkv.Handle) ([]byte, bool, error) {
	db, config, err := s.env.engine()
	if err != nil {
		return nil, false, err
	}
	var data []byte
	found := false
	op := func(btx *badger.Txn) error {
		item, err := btx.Get(handle.Bytes())
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ba, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if config.Compression {
			if ba, err = snappy.Decode(nil, ba); err != nil {
				return err
			}
		}
		data = ba
		found = true
		return nil
	}
	btx, ok, err := s.ambient(ctx)
	if err != nil {
		return nil, false, err
	}
	if ok {
		err = op(btx)
	} else {
		err = db.View(op)
	}
	if err != nil {
		return nil, false, mapReadError(err, handle)
	}
	return data, found, nil
}

// RemoveData deletes the record at handle. Removing an absent handle is a
// no-op, not an error.
func (s *DataStore) RemoveData(ctx context.Context, handle gkv.Handle) error {
	db, _, err := s.env.engine()
	if err != nil {
		return err
	}
	op := func(btx *badger.Txn) error {
		return btx.Delete(handle.Bytes())
	}
	btx, ok, err := s.ambient(ctx)
	if err != nil {
		return err
	}
	if ok {
		return mapWriteError(op(btx), handle)
	}
	return mapWriteError(db.Update(op), handle)
}

// ContainsData reports whether a record exists at handle without
// materializing its value.
func (s *DataStore) ContainsData(ctx context.Context, handle gkv.Handle) (bool, error) {
	db, _, err := s.env.engine()
	if err != nil {
		return false, err
	}
	found := false
	op := func(btx *badger.Txn) error {
		_, err := btx.Get(handle.Bytes())
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}
	btx, ok, err := s.ambient(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		err = op(btx)
	} else {
		err = db.View(op)
	}
	if err != nil {
		return false, mapReadError(err, handle)
	}
	return found, nil
}

var errForeignEnvironment = errors.New("transaction token belongs to a different environment")

// ambient resolves the transaction token bound to ctx. A token that is an
// active transaction of this store's environment supplies the engine
// transaction to operate in; no token at all (or an inert pass-through one)
// selects the auto-commit path. Anything else is a usage error: a resolved
// token, or one belonging to another environment, must fail rather than
// silently degrade to auto-commit.
func (s *DataStore) ambient(ctx context.Context) (*badger.Txn, bool, error) {
	tx, ok := gkv.TransactionFrom(ctx)
	if !ok {
		return nil, false, nil
	}
	if _, inert := tx.(inertTransaction); inert {
		return nil, false, nil
	}
	t, ok := tx.(*transaction)
	if !ok || t.env != s.env {
		return nil, false, gkv.Error{Code: gkv.IllegalState, Err: errForeignEnvironment}
	}
	if !t.Active() {
		return nil, false, gkv.Error{Code: gkv.IllegalState, Err: errResolved, UserData: t.id}
	}
	return t.btx, true, nil
}

func mapWriteError(err error, handle gkv.Handle) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrConflict):
		// Auto-commit transactions can lose a race too.
		return gkv.Error{Code: gkv.CommitConflict, Err: err, UserData: handle}
	case errors.Is(err, badger.ErrDBClosed):
		return gkv.Error{Code: gkv.IllegalState, Err: err}
	default:
		return gkv.Error{Code: gkv.StoreFailure, Err: err, UserData: handle}
	}
}

func mapReadError(err error, handle gkv.Handle) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return gkv.Error{Code: gkv.IllegalState, Err: err}
	}
	return gkv.Error{Code: gkv.ReadFailure, Err: err, UserData: handle}
}
