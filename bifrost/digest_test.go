// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import "testing"

func TestDigestBytes(t *testing.T) {
	d := digestBytes([]byte("hello world"))
	assertEqual(t, string(d), "2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED")
}

func TestDigestCacheRelPath(t *testing.T) {
	d := Digest("2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED")
	assertEqual(t, d.cacheRelPath(), "2/A/A/2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED.bin")
}

func TestDigestValid(t *testing.T) {
	assertBool(t, Digest("2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED").valid(), true)
	assertBool(t, Digest("too-short").valid(), false)
	assertBool(t, Digest("ZZZZC35C94FCFB415DBE95F408B9CE91EE846EDA").valid(), false)
}
