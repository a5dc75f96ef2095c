// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// sentinel is the first line of every proxy file. Its presence as the
// first line of a blob is conclusive evidence the blob is a proxy.
const sentinel = "~*@git-bifrost@*~"

// proxyVersion is the current format version written by encodeProxy.
const proxyVersion = 1

// Proxy is the decoded four-line surrogate committed in place of a
// large blob.
type Proxy struct {
	Version int
	Digest  Digest
	Length  int64
}

// encodeProxy renders the four-line LF-terminated proxy format.
func encodeProxy(d Digest, length int64) []byte {
	return []byte(fmt.Sprintf("%s\n%d\n%s\n%d\n", sentinel, proxyVersion, d, length))
}

// decodeProxy reads a stream and decodes it as a proxy. If the first
// line is not exactly the sentinel, it returns ErrNotAProxy: the stream
// is raw content, not a protocol violation. Once the sentinel is
// recognized, any further parse failure is ErrCorruptProxy.
func decodeProxy(r io.Reader) (Proxy, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return Proxy{}, ErrNotAProxy
	}
	if scanner.Text() != sentinel {
		return Proxy{}, ErrNotAProxy
	}

	if !scanner.Scan() {
		return Proxy{}, fmt.Errorf("%w: missing version line", ErrCorruptProxy)
	}
	version, err := strconv.Atoi(scanner.Text())
	if err != nil || version <= 0 {
		return Proxy{}, fmt.Errorf("%w: bad version %q", ErrCorruptProxy, scanner.Text())
	}

	if !scanner.Scan() {
		return Proxy{}, fmt.Errorf("%w: missing digest line", ErrCorruptProxy)
	}
	digest := Digest(scanner.Text())
	if !digest.valid() {
		return Proxy{}, fmt.Errorf("%w: bad digest %q", ErrCorruptProxy, scanner.Text())
	}

	if !scanner.Scan() {
		return Proxy{}, fmt.Errorf("%w: missing length line", ErrCorruptProxy)
	}
	length, err := strconv.ParseInt(scanner.Text(), 10, 64)
	if err != nil || length < 0 {
		return Proxy{}, fmt.Errorf("%w: bad length %q", ErrCorruptProxy, scanner.Text())
	}

	return Proxy{Version: version, Digest: digest, Length: length}, nil
}

// looksLikeProxy is a cheap first-line check used by the clean filter,
// which only needs to know whether content begins with the sentinel,
// not parse the full format.
func looksLikeProxy(b []byte) bool {
	if len(b) < len(sentinel) {
		return false
	}
	return string(b[:len(sentinel)]) == sentinel
}
