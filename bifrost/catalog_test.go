// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import "testing"

func TestLoadCatalogSingleStore(t *testing.T) {
	v := newFakeVCS()
	v.regexLines[".gitbifrost"] = []string{
		"store.main.url file:///srv/bifrost",
		"store.main.remote /origin/repo.git",
		"store.main.primary true",
	}

	catalog, err := LoadCatalog(v)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(catalog.Records) != 2 {
		t.Fatalf("expected internal + 1 store, got %d", len(catalog.Records))
	}
	assertEqual(t, catalog.Records[0].Name, InternalStoreName)
	assertEqual(t, catalog.Records[1].Name, "main")
	assertBool(t, catalog.Records[1].Primary, true)
}

func TestLoadCatalogUserFileOverridesCredentials(t *testing.T) {
	v := newFakeVCS()
	v.regexLines[".gitbifrost"] = []string{
		"store.main.url sftp://example.com/data",
		"store.main.remote /origin/repo.git",
		"store.main.username shared",
	}
	v.regexLines[".gitbifrostuser"] = []string{
		"store.main.username alice",
		"store.main.password hunter2",
	}

	catalog, err := LoadCatalog(v)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	rec := catalog.Records[1]
	assertEqual(t, rec.Username, "alice")
	assertEqual(t, rec.Password, "hunter2")
}

func TestLoadCatalogMissingURLFails(t *testing.T) {
	v := newFakeVCS()
	v.regexLines[".gitbifrost"] = []string{"store.main.primary true"}

	_, err := LoadCatalog(v)
	assertTrue(t, err != nil)
}

func TestLoadCatalogMatchingRemote(t *testing.T) {
	v := newFakeVCS()
	v.regexLines[".gitbifrost"] = []string{
		"store.a.url file:///srv/a",
		"store.a.remote https://example.com/repo.git",
		"store.a.primary true",
		"store.b.url file:///srv/b",
		"store.b.remote https://example.com/other.git",
	}

	catalog, err := LoadCatalog(v)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	matches := catalog.MatchingRemote("https://example.com/repo.git")
	if len(matches) != 1 || matches[0].Name != "a" {
		t.Fatalf("expected only store a to match, got %v", matches)
	}
}

func TestCatalogValidateRejectsDuplicateNames(t *testing.T) {
	c := &Catalog{Records: []StoreRecord{
		{Name: "dup"},
		{Name: "dup"},
	}}
	assertTrue(t, c.validate() != nil)
}
