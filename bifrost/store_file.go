// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func init() {
	registerScheme("file", newFileStore)
}

// fileStore is the local-filesystem-directory transport. The store's
// root is the URL's path; relative names are joined beneath it.
type fileStore struct {
	root string
}

func newFileStore(rec StoreRecord) Store {
	return &fileStore{root: rec.URL.Path}
}

func (s *fileStore) Open(ctx context.Context) error {
	return os.MkdirAll(s.root, 0755)
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) Push(ctx context.Context, localPath, relativeName string) (PushResult, error) {
	dest := filepath.Join(s.root, filepath.FromSlash(relativeName))
	if info, err := os.Stat(dest); err == nil {
		src, err := os.Stat(localPath)
		if err == nil && src.Size() == info.Size() {
			return Skipped, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return Failed, fmt.Errorf("creating destination directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".bifrost-push-*")
	if err != nil {
		return Failed, fmt.Errorf("creating temporary push file: %w", err)
	}
	defer os.Remove(tmp.Name())

	in, err := os.Open(localPath)
	if err != nil {
		tmp.Close()
		return Failed, fmt.Errorf("opening local source %s: %w", localPath, err)
	}
	_, copyErr := io.Copy(tmp, in)
	in.Close()
	closeErr := tmp.Close()
	if copyErr != nil {
		return Failed, fmt.Errorf("copying to store: %w", copyErr)
	}
	if closeErr != nil {
		return Failed, fmt.Errorf("closing temporary push file: %w", closeErr)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return Failed, fmt.Errorf("renaming into place at %s: %w", dest, err)
	}
	return Success, nil
}

func (s *fileStore) Pull(ctx context.Context, relativeName string) ([]byte, bool, error) {
	src := filepath.Join(s.root, filepath.FromSlash(relativeName))
	content, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return content, true, nil
}
