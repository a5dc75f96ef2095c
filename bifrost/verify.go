// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"bytes"
	"context"
	"fmt"
)

// VerifyReport is one reachable proxy's audit outcome.
type VerifyReport struct {
	Commit, Path string
	Digest       Digest
	FileMissing  bool
	WrongSize    bool
	BadSHA       bool
}

func (r VerifyReport) bad() bool { return r.FileMissing || r.WrongSize || r.BadSHA }

// RunVerify walks every reachable revision, enumerates proxies, pulls
// each one's bytes from rec, and checks them against the proxy's
// digest and length. It returns every entry when verbose, otherwise
// only the bad ones; the count of bad entries is always returned
// separately as the exit-status convention requires.
func RunVerify(ctx context.Context, vcs VCS, rec StoreRecord, verbose bool) ([]VerifyReport, int, error) {
	store, err := openStore(ctx, rec)
	if err != nil {
		return nil, 0, err
	}
	defer store.Close()

	commits, err := vcs.RevListAll()
	if err != nil {
		return nil, 0, fmt.Errorf("listing revisions: %w", err)
	}

	var reports []VerifyReport
	badFiles := 0
	seen := map[Digest]bool{}
	baton := NewBaton("verifying")

	for i, commit := range commits {
		baton.Percent(i, len(commits))
		entries, err := vcs.ChangedEntries(commit)
		if err != nil {
			return nil, 0, fmt.Errorf("reading changes in %s: %w", commit, err)
		}
		for _, e := range entries {
			if e.Status == "D" {
				continue
			}
			content, err := vcs.ReadBlob(commit + ":" + e.Path)
			if err != nil {
				continue
			}
			proxy, err := decodeProxy(bytes.NewReader(content))
			if err != nil {
				continue
			}
			if seen[proxy.Digest] {
				continue
			}
			seen[proxy.Digest] = true

			report := VerifyReport{Commit: commit, Path: e.Path, Digest: proxy.Digest}
			bytesPulled, ok, err := store.Pull(ctx, proxy.Digest.cacheRelPath())
			if err != nil || !ok {
				report.FileMissing = true
			} else {
				if int64(len(bytesPulled)) != proxy.Length {
					report.WrongSize = true
				}
				if digestBytes(bytesPulled) != proxy.Digest {
					report.BadSHA = true
				}
			}
			if report.bad() {
				badFiles++
			}
			if verbose || report.bad() {
				reports = append(reports, report)
			}
		}
	}
	baton.End(fmt.Sprintf("%d bad file(s)", badFiles))
	return reports, badFiles, nil
}
