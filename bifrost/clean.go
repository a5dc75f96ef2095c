// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"fmt"
	"io"
)

// Clean implements the clean filter: it buffers the whole blob (so a
// negative first-line check still leaves the full bytes available for
// digesting), refuses to re-clean an already-proxied input, and writes
// the encoded proxy to out while persisting the original bytes to the
// cache.
func Clean(in io.Reader, out io.Writer, cache *Cache) error {
	content, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading blob: %w", err)
	}

	if looksLikeProxy(content) {
		return ErrDoubleClean
	}

	d := digestBytes(content)
	length := int64(len(content))

	if err := cache.Put(d, content); err != nil {
		return fmt.Errorf("caching blob %s: %w", d, err)
	}

	if _, err := out.Write(encodeProxy(d, length)); err != nil {
		return fmt.Errorf("writing proxy: %w", err)
	}
	return nil
}
