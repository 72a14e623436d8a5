package gkv

import "errors"

var (
	errNoHandleFactory  = errors.New("configuration requires a handle factory")
	errInMemoryReadOnly = errors.New("in-memory environments cannot be read-only")
)

// Configuration holds the settings consumed once at environment startup.
// It is a pure data holder; construction and loading are the embedding
// application's concern.
type Configuration struct {
	// Transactional selects transactional mode. When false, the transaction
	// coordinator degrades to a no-op pass-through and data operations
	// execute without isolation guarantees.
	Transactional bool `json:"transactional"`
	// ReadOnly opens the environment without write permission. The storage
	// location must already exist.
	ReadOnly bool `json:"read_only"`
	// HandleFactory generates and parses the persistent handles keying the
	// data store. Required.
	HandleFactory HandleFactory `json:"-"`

	// InMemory keeps the whole environment in memory, never touching the
	// filesystem. Useful for embedding and tests. Incompatible with ReadOnly.
	InMemory bool `json:"in_memory,omitempty"`
	// SyncWrites forces an fsync on every write, trading throughput for a
	// smaller window of data loss on crash.
	SyncWrites bool `json:"sync_writes,omitempty"`
	// CacheSize is a hint, in bytes, for the engine's block & index caches.
	// Zero selects the engine defaults.
	CacheSize int64 `json:"cache_size,omitempty"`
	// Compression enables transparent snappy compression of stored values.
	// A store created with compression on must always be reopened with it on.
	Compression bool `json:"compression,omitempty"`
}

// Validate checks the configuration for internal consistency. It is invoked
// by the environment at startup; any error it returns carries the
// ConfigInvalid code.
func (c Configuration) Validate() error {
	if c.HandleFactory == nil {
		return Error{Code: ConfigInvalid, Err: errNoHandleFactory}
	}
	if c.InMemory && c.ReadOnly {
		return Error{Code: ConfigInvalid, Err: errInMemoryReadOnly}
	}
	return nil
}
