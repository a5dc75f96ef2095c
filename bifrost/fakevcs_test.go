// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import "fmt"

// fakeVCS is an in-memory VCS double. RevListAll and RevListNotRemotes
// return commit lists in the order a test sets them; ChangedEntries and
// ReadBlob/BlobSize key off per-commit and global blob maps respectively
// so a test can fabricate history without a real repository.
type fakeVCS struct {
	notRemotes map[string][]string // keyed by localRef+"|"+remoteName
	all        []string
	changes    map[string][]ChangedEntry
	blobs      map[string][]byte // ref -> content ("commit:path" or ":path")
	staged     []string
	filterAttr map[string]string
	binaryAttr map[string]bool
	intConfig  map[string]int
	regexLines map[string][]string
}

func newFakeVCS() *fakeVCS {
	return &fakeVCS{
		notRemotes: map[string][]string{},
		changes:    map[string][]ChangedEntry{},
		blobs:      map[string][]byte{},
		filterAttr: map[string]string{},
		binaryAttr: map[string]bool{},
		intConfig:  map[string]int{},
		regexLines: map[string][]string{},
	}
}

func (f *fakeVCS) RevListNotRemotes(localRef, remoteName string) ([]string, error) {
	return f.notRemotes[localRef+"|"+remoteName], nil
}

func (f *fakeVCS) RevListAll() ([]string, error) { return f.all, nil }

func (f *fakeVCS) ChangedEntries(commitID string) ([]ChangedEntry, error) {
	return f.changes[commitID], nil
}

func (f *fakeVCS) ReadBlob(ref string) ([]byte, error) {
	content, ok := f.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("fakeVCS: no blob at %s", ref)
	}
	return content, nil
}

func (f *fakeVCS) BlobSize(ref string) (int64, error) {
	content, err := f.ReadBlob(ref)
	if err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

func (f *fakeVCS) StagedPaths() ([]string, error) { return f.staged, nil }

func (f *fakeVCS) FilterAttribute(path string) (string, error) {
	return f.filterAttr[path], nil
}

func (f *fakeVCS) AttributeIsSet(path, name string) (bool, error) {
	return f.binaryAttr[path], nil
}

func (f *fakeVCS) ConfigGetInt(key, file string) (int, bool, error) {
	v, ok := f.intConfig[file+"|"+key]
	return v, ok, nil
}

func (f *fakeVCS) ConfigGetRegex(pattern, file string) ([]string, error) {
	return f.regexLines[file], nil
}

func (f *fakeVCS) ConfigSet(key, value, file string) error { return nil }
