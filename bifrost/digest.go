// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// Digest is the 160-bit content address of a blob, rendered as 40
// uppercase hex characters.
type Digest string

const digestLen = 40

// digestBytes computes the content address of b.
func digestBytes(b []byte) Digest {
	sum := sha1.Sum(b)
	return Digest(strings.ToUpper(hex.EncodeToString(sum[:])))
}

// valid reports whether d looks like a 160-bit hex digest.
func (d Digest) valid() bool {
	if len(d) != digestLen {
		return false
	}
	_, err := hex.DecodeString(string(d))
	return err == nil
}

// cacheRelPath returns the digest's cache-relative path: the first
// three hex nybbles as nested directories, 4096-way fanout.
func (d Digest) cacheRelPath() string {
	return fmt.Sprintf("%c/%c/%c/%s.bin", d[0], d[1], d[2], d)
}
