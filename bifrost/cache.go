// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Cache is the content-addressed local directory cache keyed by
// digest. Writes are idempotent and made atomically visible by writing
// to a temporary name and renaming into place.
type Cache struct {
	root string
}

// NewCache returns a Cache rooted at <repoGitDir>/bifrost/data.
func NewCache(gitDir string) *Cache {
	return &Cache{root: filepath.Join(gitDir, "bifrost", "data")}
}

// Path returns the filesystem path for d beneath the cache root.
func (c *Cache) Path(d Digest) string {
	return filepath.Join(c.root, filepath.FromSlash(d.cacheRelPath()))
}

// Exists reports whether d is already cached.
func (c *Cache) Exists(d Digest) bool {
	_, err := os.Stat(c.Path(d))
	return err == nil
}

// RootExists reports whether the cache directory itself is present,
// distinguishing a clean uninitialized state from one where the cache
// was removed out from under the repository.
func (c *Cache) RootExists() bool {
	info, err := os.Stat(c.root)
	return err == nil && info.IsDir()
}

// Open returns a reader over the cached bytes for d.
func (c *Cache) Open(d Digest) (*os.File, error) {
	return os.Open(c.Path(d))
}

// Put writes content to the cache path for d. If the path already
// exists the call is a no-op: the digest invariant guarantees any
// existing file at that path already holds the same bytes.
func (c *Cache) Put(d Digest, content []byte) error {
	dest := c.Path(d)
	if _, err := os.Stat(dest); err == nil {
		return nil
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".bifrost-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary cache file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cache content for %s: %w", d, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temporary cache file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		// A concurrent writer may have already renamed identical
		// content into place; that is not a failure.
		if _, statErr := os.Stat(dest); statErr == nil {
			return nil
		}
		return fmt.Errorf("renaming cache file into place for %s: %w", d, err)
	}
	return nil
}

// PutStream drains r and caches its content under d via Put.
func (c *Cache) PutStream(d Digest, r io.Reader) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading stream to cache for %s: %w", d, err)
	}
	return c.Put(d, content)
}
