// Package badger implements the gkv storage contract on top of BadgerDB.
// It owns the engine lifecycle, translates the engine-agnostic configuration
// into engine options, and exposes the handle-addressed data store and
// transaction coordination the graph layer builds upon.
package badger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/gkvdb/gkv"
)

// Environment owns one open instance of the embedded engine. It is an
// exclusively-owned resource handle: startup opens the engine at a filesystem
// location, shutdown closes it, and every data operation in between runs
// against it. The engine holds an exclusive lock on the location, so at most
// one Environment (process-wide) can have a given location open.
//
// An Environment is safe for concurrent use across independent transactions.
type Environment struct {
	mu       sync.RWMutex
	db       *badger.DB
	location string
	config   gkv.Configuration
	open     bool

	// In-flight transactions; shutdown drains this before closing the engine.
	txs sync.WaitGroup
}

// Directory/File permission.
const permission os.FileMode = os.ModeSticky | os.ModePerm

// modeMarkerFilename is the marker file recording the mode a store was
// created with, validated on every reopen.
const modeMarkerFilename = "MODE"

var (
	errAlreadyOpen = errors.New("environment is already open")
	errClosed      = errors.New("environment is closed")
)

// NewEnvironment returns a closed Environment. Call Startup to open it.
func NewEnvironment() *Environment {
	return &Environment{}
}

// Startup opens the embedded engine at location using the given
// configuration. The directory is created if absent, unless the environment
// is read-only, in which case the location (and its mode marker) must already
// exist. A store is permanently bound to the transactional and compression
// modes it was created with; reopening it under different modes fails with a
// ConfigInvalid-coded error rather than silently changing guarantees.
func (e *Environment) Startup(ctx context.Context, location string, config gkv.Configuration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.open {
		return gkv.Error{Code: gkv.IllegalState, Err: errAlreadyOpen, UserData: e.location}
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if !config.InMemory {
		if err := prepareLocation(location, config); err != nil {
			return err
		}
	}

	db, err := badger.Open(toEngineOptions(location, config))
	if err != nil {
		return classifyOpenError(err)
	}
	if err := verifyEngineOptions(db, config); err != nil {
		db.Close()
		return err
	}
	if !config.InMemory && !config.ReadOnly {
		if err := writeModeMarker(location, config); err != nil {
			db.Close()
			return err
		}
	}

	e.db = db
	e.location = location
	e.config = config
	e.open = true
	log.Info("environment opened", "location", location,
		"transactional", config.Transactional, "readOnly", config.ReadOnly)
	return nil
}

// Shutdown flushes and closes the engine. It blocks until in-flight
// transactions have been resolved or ctx expires, whichever comes first, then
// releases the underlying resources. Shutting down an already-closed
// environment is an idempotent no-op.
func (e *Environment) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return nil
	}
	e.open = false
	db := e.db
	location := e.location
	e.db = nil
	e.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		e.txs.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		log.Warn("shutdown forced with unresolved transactions", "location", location)
	}

	if err := db.Close(); err != nil {
		return gkv.Error{Code: gkv.StoreFailure, Err: err, UserData: location}
	}
	log.Info("environment closed", "location", location)
	return nil
}

// Location returns the configured storage location. It fails with an
// IllegalState-coded error while the environment is closed.
func (e *Environment) Location() (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.open {
		return "", gkv.Error{Code: gkv.IllegalState, Err: errClosed}
	}
	return e.location, nil
}

// Transactional reports the effective transactional flag of the open engine.
func (e *Environment) Transactional() (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.open {
		return false, gkv.Error{Code: gkv.IllegalState, Err: errClosed}
	}
	return e.db.Opts().DetectConflicts, nil
}

// ReadOnly reports the effective read-only flag of the open engine.
func (e *Environment) ReadOnly() (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.open {
		return false, gkv.Error{Code: gkv.IllegalState, Err: errClosed}
	}
	return e.db.Opts().ReadOnly, nil
}

// engine returns the open engine and the configuration it was opened with.
func (e *Environment) engine() (*badger.DB, gkv.Configuration, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.open {
		return nil, gkv.Configuration{}, gkv.Error{Code: gkv.IllegalState, Err: errClosed}
	}
	return e.db, e.config, nil
}

// track registers an in-flight transaction while the environment is still
// open. Registering under the lock keeps the drain in Shutdown from racing
// with a concurrent Begin.
func (e *Environment) track() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.open {
		return false
	}
	e.txs.Add(1)
	return true
}

// prepareLocation validates the storage location against the configuration
// before the engine is opened, so mismatches surface at startup rather than
// mid-operation.
func prepareLocation(location string, config gkv.Configuration) error {
	if config.ReadOnly {
		if _, err := os.Stat(location); err != nil {
			return gkv.Error{
				Code: gkv.ConfigInvalid,
				Err:  fmt.Errorf("read-only requested but location does not exist: %w", err),
			}
		}
	} else if err := os.MkdirAll(location, permission); err != nil {
		return gkv.Error{Code: gkv.EngineOpenFailure, Err: err, UserData: location}
	}
	return checkModeMarker(location, config)
}

// modeMarkerContent renders the marker recording how a store was created.
func modeMarkerContent(config gkv.Configuration) string {
	mode := "plain"
	if config.Transactional {
		mode = "transactional"
	}
	values := "raw"
	if config.Compression {
		values = "snappy"
	}
	return mode + " " + values + "\n"
}

// checkModeMarker compares the persisted mode marker, when present, against
// the requested configuration. A read-only open requires the marker since the
// store must have been created by a writable environment first.
func checkModeMarker(location string, config gkv.Configuration) error {
	ba, err := os.ReadFile(filepath.Join(location, modeMarkerFilename))
	if err != nil {
		if os.IsNotExist(err) {
			if config.ReadOnly {
				return gkv.Error{
					Code: gkv.ConfigInvalid,
					Err:  errors.New("read-only open of a location with no mode marker"),
				}
			}
			// Fresh store; the marker gets written after a successful open.
			return nil
		}
		return gkv.Error{Code: gkv.EngineOpenFailure, Err: err, UserData: location}
	}
	want := strings.TrimSpace(modeMarkerContent(config))
	got := strings.TrimSpace(string(ba))
	if got != want {
		return gkv.Error{
			Code: gkv.ConfigInvalid,
			Err:  fmt.Errorf("store was created as %q, cannot reopen as %q", got, want),
		}
	}
	return nil
}

// markerPermission restricts writes to the owner; a world-writable marker
// would undermine the mode-mismatch guard.
const markerPermission os.FileMode = 0o644

// writeModeMarker persists the mode marker for a writable store. Overwriting
// with identical content on reopen is harmless.
func writeModeMarker(location string, config gkv.Configuration) error {
	fn := filepath.Join(location, modeMarkerFilename)
	if err := os.WriteFile(fn, []byte(modeMarkerContent(config)), markerPermission); err != nil {
		return gkv.Error{Code: gkv.EngineOpenFailure, Err: err, UserData: location}
	}
	return nil
}
