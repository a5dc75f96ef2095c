// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"context"
	"fmt"
)

// PushResult classifies the outcome of a single Store.Push call.
type PushResult int

const (
	// Success means the bytes were transferred and are now present
	// at the destination.
	Success PushResult = iota
	// Skipped means the transport determined the destination already
	// had matching bytes before any transfer was attempted.
	Skipped
	// SkippedLate means the same determination was made only after a
	// transfer attempt began; tallied the same as Skipped.
	SkippedLate
	// Failed is a hard transfer error.
	Failed
)

func (r PushResult) String() string {
	switch r {
	case Success:
		return "success"
	case Skipped:
		return "skipped"
	case SkippedLate:
		return "skipped-late"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Store is the capability contract every transport implements: open a
// session, push bytes to it, pull bytes from it, and close the
// session. Sessions are owned by the calling operation.
type Store interface {
	// Open initializes the session (connect, authenticate). It is
	// safe to call on a store that will never be used; failure is
	// reported, not panicked.
	Open(ctx context.Context) error
	// Push uploads the bytes at localPath to relativeName under the
	// store's root.
	Push(ctx context.Context, localPath, relativeName string) (PushResult, error)
	// Pull returns the full bytes stored at relativeName, or ok=false
	// if no such object exists (as distinct from a transport error).
	Pull(ctx context.Context, relativeName string) (content []byte, ok bool, err error)
	// Close releases session resources.
	Close() error
}

// StoreFactory builds a Store session for a StoreRecord.
type StoreFactory func(rec StoreRecord) Store

var registry = map[string]StoreFactory{}

// registerScheme associates a URL scheme with a transport factory. Each
// transport calls this from its own init(), mirroring how the teacher's
// vcstypes table is assembled once at load time and looked up by name.
func registerScheme(scheme string, factory StoreFactory) {
	registry[scheme] = factory
}

// openStore looks up the transport for rec's URL scheme and opens a
// session. ErrUnsupportedScheme is returned for unknown schemes so
// callers can warn and skip rather than abort.
func openStore(ctx context.Context, rec StoreRecord) (Store, error) {
	factory, ok := registry[rec.URL.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, rec.URL.Scheme)
	}
	store := factory(rec)
	if err := store.Open(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreOpenFailed, rec.URL.Redacted(), err)
	}
	return store, nil
}
