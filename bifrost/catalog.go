// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// InternalStoreName is the reserved name of the Local Cache pseudo-store.
const InternalStoreName = "store.BIFROST.INTERNAL"

// StoreRecord is a fully parsed store declaration.
type StoreRecord struct {
	Name     string
	URL      *url.URL
	Remote   string
	Primary  bool
	Username string
	Password string
}

var storeKeyPattern = regexp.MustCompile(`^store\.([^.]+)\.(url|remote|primary|username|password)$`)

// Catalog is the ordered list of configured stores, with the internal
// cache pseudo-store always first.
type Catalog struct {
	Records []StoreRecord
}

// LoadCatalog reads store.<NAME>.<KEY> lines from .gitbifrost and, if
// present, .gitbifrostuser (which may add stores or override keys for
// ones .gitbifrost already declares). Grouping by (name,key) is a
// reduction over the parsed tuples: later files win ties.
func LoadCatalog(vcs VCS) (*Catalog, error) {
	type fields struct {
		url, remote, username, password string
		primary                         bool
		primarySet                      bool
	}
	order := []string{}
	byName := map[string]*fields{}

	parseFile := func(file string) error {
		lines, err := vcs.ConfigGetRegex(`^store\..*`, file)
		if err != nil {
			return err
		}
		for _, line := range lines {
			name, key, value, ok := splitConfigLine(line)
			if !ok {
				continue
			}
			f, exists := byName[name]
			if !exists {
				f = &fields{}
				byName[name] = f
				order = append(order, name)
			}
			switch key {
			case "url":
				f.url = value
			case "remote":
				f.remote = value
			case "username":
				f.username = value
			case "password":
				f.password = value
			case "primary":
				f.primary = value == "true"
				f.primarySet = true
			}
		}
		return nil
	}

	if err := parseFile(".gitbifrost"); err != nil {
		return nil, fmt.Errorf("reading .gitbifrost: %w", err)
	}
	if err := parseFile(".gitbifrostuser"); err != nil {
		return nil, fmt.Errorf("reading .gitbifrostuser: %w", err)
	}

	records := make([]StoreRecord, 0, len(order)+1)
	for _, name := range order {
		f := byName[name]
		if f.url == "" {
			return nil, fmt.Errorf("store %q has no url", name)
		}
		parsed, err := url.Parse(f.url)
		if err != nil {
			return nil, fmt.Errorf("store %q has invalid url %q: %w", name, f.url, err)
		}
		records = append(records, StoreRecord{
			Name:     name,
			URL:      parsed,
			Remote:   canonicalizeRemote(f.remote),
			Primary:  f.primary,
			Username: f.username,
			Password: f.password,
		})
	}

	catalog := &Catalog{Records: append([]StoreRecord{internalStoreRecord()}, records...)}
	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func internalStoreRecord() StoreRecord {
	return StoreRecord{
		Name: InternalStoreName,
		URL:  &url.URL{Scheme: "bifrost-internal"},
	}
}

func (c *Catalog) validate() error {
	seen := map[string]bool{}
	for _, r := range c.Records {
		if seen[r.Name] {
			return fmt.Errorf("duplicate store name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// MatchingRemote returns the stores whose Remote matches destRemote,
// in catalog order.
func (c *Catalog) MatchingRemote(destRemote string) []StoreRecord {
	want := canonicalizeRemote(destRemote)
	var out []StoreRecord
	for _, r := range c.Records {
		if r.Name == InternalStoreName {
			continue
		}
		if r.Remote != "" && r.Remote == want {
			out = append(out, r)
		}
	}
	return out
}

// splitConfigLine parses a "store.<name>.<key> <value>" config line as
// returned by `git config --get-regexp`.
func splitConfigLine(line string) (name, key, value string, ok bool) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) != 2 {
		return "", "", "", false
	}
	m := storeKeyPattern.FindStringSubmatch(parts[0])
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], parts[1], true
}

// canonicalizeRemote normalizes a remote reference to an absolute form
// so it compares correctly against the destination push URL. Local
// paths are made absolute and cleaned; URL-form remotes are returned
// unchanged since their scheme already disambiguates them from paths.
func canonicalizeRemote(remote string) string {
	if remote == "" {
		return ""
	}
	if strings.Contains(remote, "://") {
		return remote
	}
	abs, err := filepath.Abs(remote)
	if err != nil {
		return remote
	}
	return filepath.Clean(abs)
}
