// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"bytes"
	"context"
	"fmt"
)

// PushRecord is one line of pre-push hook stdin: <local_ref> <local_sha>
// <remote_ref> <remote_sha>.
type PushRecord struct {
	LocalRef, LocalSHA, RemoteRef, RemoteSHA string
}

const zeroSHA = "0000000000000000000000000000000000000000"

// PrepushTally summarizes what happened during replication.
type PrepushTally struct {
	Success, Skipped, SkippedLate, Failed int
	PrimaryUpdated                        int
}

// RunPrepush enumerates every proxy introduced by the outgoing
// revisions in records and replicates the backing bytes from the local
// cache to every store whose remote matches remoteURL, primary or not.
// A store that fails to open is skipped; a failed push aborts the whole
// operation. It succeeds iff at least one matching primary store is
// updated and every referenced proxy's bytes were locatable in the
// cache.
func RunPrepush(ctx context.Context, vcs VCS, cache *Cache, catalog *Catalog, remoteName, remoteURL string, records []PushRecord) (PrepushTally, error) {
	proxies, err := enumeratePushedProxies(vcs, remoteName, records)
	if err != nil {
		return PrepushTally{}, err
	}

	if len(proxies) == 0 {
		// Nothing is being pushed, so an absent cache is not a
		// problem: a clean no-op either way.
		return PrepushTally{}, nil
	}

	if !cache.RootExists() {
		return PrepushTally{}, fmt.Errorf("%w: %d proxies need replication but the cache is gone", ErrCacheMissing, len(proxies))
	}

	matching := catalog.MatchingRemote(remoteURL)
	tally := PrepushTally{}
	baton := NewBaton(fmt.Sprintf("pushing to %d store(s)", len(matching)))

	for _, rec := range matching {
		store, err := openStore(ctx, rec)
		if err != nil {
			log.Warnf("skipping store %s: %v", storeLabel(rec), err)
			continue
		}

		for d := range proxies {
			if !cache.Exists(d) {
				store.Close()
				return tally, fmt.Errorf("%w: %s", ErrMissingLocalSource, d)
			}
			result, err := store.Push(ctx, cache.Path(d), d.cacheRelPath())
			baton.Twirl()
			if err != nil || result == Failed {
				store.Close()
				return tally, fmt.Errorf("%w: %s: %v", ErrPushFailed, storeLabel(rec), err)
			}
			switch result {
			case Success:
				tally.Success++
			case Skipped:
				tally.Skipped++
			case SkippedLate:
				tally.SkippedLate++
			}
		}
		store.Close()
		if rec.Primary {
			tally.PrimaryUpdated++
		}
	}
	baton.End("done")

	if tally.PrimaryUpdated == 0 {
		return tally, ErrNoPrimaryUpdated
	}
	return tally, nil
}

// enumeratePushedProxies walks the commits each push record introduces
// and collects the digests of every proxy any of them reference.
func enumeratePushedProxies(vcs VCS, remoteName string, records []PushRecord) (map[Digest]bool, error) {
	proxies := map[Digest]bool{}
	for _, rec := range records {
		if rec.LocalSHA == zeroSHA {
			continue // branch deletion: nothing to push
		}
		commits, err := vcs.RevListNotRemotes(rec.LocalRef, remoteName)
		if err != nil {
			return nil, fmt.Errorf("enumerating revisions for %s: %w", rec.LocalRef, err)
		}
		for _, commit := range commits {
			entries, err := vcs.ChangedEntries(commit)
			if err != nil {
				return nil, fmt.Errorf("reading changes in %s: %w", commit, err)
			}
			for _, e := range entries {
				if e.Status == "X" {
					return nil, fmt.Errorf("%w: commit %s path %s", ErrVCSInternal, commit, e.Path)
				}
				if e.Status == "D" {
					continue
				}
				content, err := vcs.ReadBlob(commit + ":" + e.Path)
				if err != nil {
					// The path may not exist as a blob at this
					// commit (e.g. it became a directory); not
					// fatal to the overall enumeration.
					log.Debugf("reading %s:%s: %v", commit, e.Path, err)
					continue
				}
				proxy, err := decodeProxy(bytes.NewReader(content))
				if err != nil {
					continue // not a proxy, nothing to replicate
				}
				proxies[proxy.Digest] = true
			}
		}
	}
	return proxies, nil
}
