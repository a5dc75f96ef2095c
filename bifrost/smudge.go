// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"context"
	"fmt"
	"io"
)

// Smudge implements the smudge filter: decode the proxy on in, try
// each catalog store in order, verify the returned bytes against the
// proxy's digest and length, and write the first verifying blob to
// out. A store returning bytes that fail verification is bypassed, not
// trusted, and does not abort the operation while another store might
// still succeed.
func Smudge(ctx context.Context, in io.Reader, out io.Writer, catalog *Catalog, cache *Cache) error {
	proxy, err := decodeProxy(in)
	if err != nil {
		return err
	}

	for _, rec := range catalog.Records {
		content, ok, err := pullFromStore(ctx, rec, proxy, cache)
		if err != nil {
			log.Warnf("store %s: %v", storeLabel(rec), err)
			continue
		}
		if !ok {
			continue
		}
		if err := cache.Put(proxy.Digest, content); err != nil {
			return fmt.Errorf("repopulating cache for %s: %w", proxy.Digest, err)
		}
		if _, err := out.Write(content); err != nil {
			return fmt.Errorf("writing blob: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: digest %s length %d", ErrBlobUnavailable, proxy.Digest, proxy.Length)
}

// pullFromStore attempts to retrieve and verify proxy's bytes from a
// single catalog record. ok is false when the store simply doesn't
// have the bytes (absence, unsupported scheme, open failure,
// non-absolute URL) or when verification fails; err carries a
// diagnostic worth surfacing in those non-fatal cases.
func pullFromStore(ctx context.Context, rec StoreRecord, proxy Proxy, cache *Cache) ([]byte, bool, error) {
	if rec.Name == InternalStoreName {
		if !cache.Exists(proxy.Digest) {
			return nil, false, nil
		}
		f, err := cache.Open(proxy.Digest)
		if err != nil {
			return nil, false, fmt.Errorf("opening cache entry: %w", err)
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			return nil, false, fmt.Errorf("reading cache entry: %w", err)
		}
		if ok, reason := verifyContent(content, proxy); !ok {
			return nil, false, fmt.Errorf("%w: %s", ErrIntegrityMismatch, reason)
		}
		return content, true, nil
	}

	if !rec.URL.IsAbs() {
		return nil, false, nil
	}

	store, err := openStore(ctx, rec)
	if err != nil {
		return nil, false, err
	}
	defer store.Close()

	content, ok, err := store.Pull(ctx, proxy.Digest.cacheRelPath())
	if err != nil {
		return nil, false, fmt.Errorf("pulling from %s: %v", rec.URL.Redacted(), err)
	}
	if !ok {
		return nil, false, nil
	}

	if ok, reason := verifyContent(content, proxy); !ok {
		return nil, false, fmt.Errorf("%w: store %s: %s", ErrIntegrityMismatch, rec.URL.Redacted(), reason)
	}
	return content, true, nil
}

func verifyContent(content []byte, proxy Proxy) (bool, string) {
	if int64(len(content)) != proxy.Length {
		return false, fmt.Sprintf("length mismatch: got %d want %d", len(content), proxy.Length)
	}
	if digestBytes(content) != proxy.Digest {
		return false, "digest mismatch"
	}
	return true, ""
}

func storeLabel(rec StoreRecord) string {
	if rec.Name == InternalStoreName {
		return rec.Name
	}
	return rec.Name + " (" + rec.URL.Redacted() + ")"
}
