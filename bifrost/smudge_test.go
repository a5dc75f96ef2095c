// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"bytes"
	"context"
	"net/url"
	"testing"
)

// memStore is an in-memory Store used to exercise Smudge without a
// real transport. Objects are keyed by relativeName.
type memStore struct {
	objects map[string][]byte
	opened  bool
}

func newMemStoreFactory(objects map[string][]byte) StoreFactory {
	return func(rec StoreRecord) Store {
		return &memStore{objects: objects}
	}
}

func (s *memStore) Open(ctx context.Context) error { s.opened = true; return nil }
func (s *memStore) Close() error                   { return nil }
func (s *memStore) Push(ctx context.Context, localPath, relativeName string) (PushResult, error) {
	return Success, nil
}
func (s *memStore) Pull(ctx context.Context, relativeName string) ([]byte, bool, error) {
	content, ok := s.objects[relativeName]
	return content, ok, nil
}

func memCatalog(t *testing.T, scheme string, objects map[string][]byte) *Catalog {
	t.Helper()
	registerScheme(scheme, newMemStoreFactory(objects))
	u, err := url.Parse(scheme + "://mem/store")
	assertTrue(t, err == nil)
	return &Catalog{Records: []StoreRecord{
		internalStoreRecord(),
		{Name: "remote1", URL: u, Primary: true},
	}}
}

func TestSmudgeSuccess(t *testing.T) {
	d := digestBytes([]byte("hello world"))
	proxy := encodeProxy(d, 11)
	objects := map[string][]byte{d.cacheRelPath(): []byte("hello world")}
	catalog := memCatalog(t, "testmem-success", objects)

	dir := t.TempDir()
	cache := NewCache(dir)
	var out bytes.Buffer

	err := Smudge(context.Background(), bytes.NewReader(proxy), &out, catalog, cache)
	assertTrue(t, err == nil)
	assertEqual(t, out.String(), "hello world")
	assertBool(t, cache.Exists(d), true)
}

func TestSmudgeFromCacheWithoutRemote(t *testing.T) {
	d := digestBytes([]byte("cached bytes"))
	proxy := encodeProxy(d, int64(len("cached bytes")))
	dir := t.TempDir()
	cache := NewCache(dir)
	assertTrue(t, cache.Put(d, []byte("cached bytes")) == nil)

	catalog := &Catalog{Records: []StoreRecord{internalStoreRecord()}}
	var out bytes.Buffer
	err := Smudge(context.Background(), bytes.NewReader(proxy), &out, catalog, cache)
	assertTrue(t, err == nil)
	assertEqual(t, out.String(), "cached bytes")
}

func TestSmudgeIntegrityRejectionFallsThrough(t *testing.T) {
	d := digestBytes([]byte("hello world"))
	proxy := encodeProxy(d, 11)
	// Store holds a file of the right length but wrong content (wrong
	// digest): must be rejected, not served.
	objects := map[string][]byte{d.cacheRelPath(): []byte("HELLO WORLD")}
	catalog := memCatalog(t, "testmem-badsha", objects)

	dir := t.TempDir()
	cache := NewCache(dir)
	var out bytes.Buffer
	err := Smudge(context.Background(), bytes.NewReader(proxy), &out, catalog, cache)
	assertTrue(t, err != nil) // no store has valid bytes
}

func TestSmudgeNotAProxy(t *testing.T) {
	catalog := &Catalog{Records: []StoreRecord{internalStoreRecord()}}
	dir := t.TempDir()
	cache := NewCache(dir)
	var out bytes.Buffer
	err := Smudge(context.Background(), bytes.NewReader([]byte("plain content")), &out, catalog, cache)
	assertTrue(t, err == ErrNotAProxy)
}

func TestSmudgeUnavailableWhenNoStoreHasBytes(t *testing.T) {
	d := digestBytes([]byte("missing"))
	proxy := encodeProxy(d, 7)
	catalog := &Catalog{Records: []StoreRecord{internalStoreRecord()}}
	dir := t.TempDir()
	cache := NewCache(dir)
	var out bytes.Buffer
	err := Smudge(context.Background(), bytes.NewReader(proxy), &out, catalog, cache)
	assertTrue(t, err != nil)
}
