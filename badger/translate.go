package badger

import (
	"fmt"
	log "log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/gkvdb/gkv"
)

// All engine-specific flag and type mapping lives in this file so the rest of
// the package (and every caller above it) stays engine-agnostic.

// toEngineOptions translates the gkv configuration into the engine's own
// options object. Transactional mode maps onto the engine's optimistic
// conflict detection; with it off, concurrent writers get no isolation and
// commits never conflict.
func toEngineOptions(location string, config gkv.Configuration) badger.Options {
	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(location)
	}
	opts = opts.
		WithReadOnly(config.ReadOnly).
		WithDetectConflicts(config.Transactional).
		WithSyncWrites(config.SyncWrites).
		WithLogger(engineLogger{})
	if config.CacheSize > 0 {
		// Split the hint between the block and index caches.
		opts = opts.
			WithBlockCacheSize(config.CacheSize / 2).
			WithIndexCacheSize(config.CacheSize / 2)
	}
	return opts
}

// verifyEngineOptions asserts that the effective flags of the opened engine
// equal the requested ones. A silent mismatch here would disable durability
// or isolation guarantees without surfacing an error, so startup fails loudly
// instead.
func verifyEngineOptions(db *badger.DB, config gkv.Configuration) error {
	effective := db.Opts()
	if effective.ReadOnly != config.ReadOnly {
		return gkv.Error{
			Code: gkv.ConfigInvalid,
			Err:  fmt.Errorf("engine opened with read-only=%v, requested %v", effective.ReadOnly, config.ReadOnly),
		}
	}
	if effective.DetectConflicts != config.Transactional {
		return gkv.Error{
			Code: gkv.ConfigInvalid,
			Err:  fmt.Errorf("engine opened with transactional=%v, requested %v", effective.DetectConflicts, config.Transactional),
		}
	}
	return nil
}

// classifyOpenError maps an engine open failure onto the gkv taxonomy. The
// engine takes an exclusive directory lock, so a concurrent open of the same
// location surfaces as LockConflict; everything else is EngineOpenFailure.
func classifyOpenError(err error) error {
	if strings.Contains(err.Error(), "directory lock") {
		return gkv.Error{Code: gkv.LockConflict, Err: err}
	}
	return gkv.Error{Code: gkv.EngineOpenFailure, Err: err}
}

// engineLogger routes the engine's own chatter through the application's
// slog handler.
type engineLogger struct{}

func (engineLogger) Errorf(format string, args ...interface{}) {
	log.Error("engine: " + strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}

func (engineLogger) Warningf(format string, args ...interface{}) {
	log.Warn("engine: " + strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}

func (engineLogger) Infof(format string, args ...interface{}) {
	log.Info("engine: " + strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}

func (engineLogger) Debugf(format string, args ...interface{}) {
	log.Debug("engine: " + strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}
