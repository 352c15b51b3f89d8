// Package blob provides the string-keyed blob store backing the log
// store: a minimal get/set contract with file and SQLite backends, and
// a fire-and-forget ordered write queue on top.
package blob

import "context"

// Store is an asynchronous-friendly string-keyed blob store. A Set is
// durable and atomic per key; there is no cross-key transactionality.
type Store interface {
	// Get returns the value for key. ok is false if the key has never
	// been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set durably replaces the value for key.
	Set(ctx context.Context, key, value string) error
	// Quarantine moves the current payload of key aside under a
	// .corrupt-suffixed name, so an undecodable blob survives the next
	// full-state write. A missing key is not an error.
	Quarantine(ctx context.Context, key string) error
}
