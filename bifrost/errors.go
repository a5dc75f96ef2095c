// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import "errors"

// Sentinel errors for every error kind named in the error-handling design.
// Callers use errors.Is against these; wrapping with fmt.Errorf("...: %w", ...)
// at each boundary keeps the original diagnostic while preserving the kind.
var (
	ErrCorruptProxy     = errors.New("corrupt proxy")
	ErrNotAProxy        = errors.New("not a proxy")
	ErrDoubleClean      = errors.New("clean filter received an already-clean proxy")
	ErrCacheMissing     = errors.New("local cache directory is missing")
	ErrMissingLocalSource = errors.New("proxy references bytes absent from the local cache")
	ErrStoreOpenFailed  = errors.New("store open failed")
	ErrIntegrityMismatch = errors.New("store returned bytes failing digest/length verification")
	ErrNoPrimaryUpdated = errors.New("push completed without updating any primary store")
	ErrVCSInternal      = errors.New("VCS reported an internal error status")
	ErrOversizeUnfiltered = errors.New("unfiltered blob exceeds its size threshold")
	ErrRequiresRestage  = errors.New("staged content was not produced by the clean filter")
	ErrUnsupportedScheme = errors.New("no store implementation registered for this URL scheme")
	ErrBlobUnavailable  = errors.New("no store holds bytes matching the proxy's digest and length")
	ErrPushFailed       = errors.New("push to store failed")
)
