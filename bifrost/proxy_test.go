// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeProxyRoundTrip(t *testing.T) {
	d := Digest("2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED")
	encoded := encodeProxy(d, 11)
	proxy, err := decodeProxy(bytes.NewReader(encoded))
	assertTrue(t, err == nil)
	assertEqual(t, string(proxy.Digest), string(d))
	assertIntEqual(t, int(proxy.Length), 11)
	assertIntEqual(t, proxy.Version, 1)
}

func TestEncodeProxyLiteralFormat(t *testing.T) {
	d := Digest("2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED")
	got := string(encodeProxy(d, 11))
	want := "~*@git-bifrost@*~\n1\n2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED\n11\n"
	assertEqual(t, got, want)
}

func TestDecodeProxyNotAProxy(t *testing.T) {
	_, err := decodeProxy(strings.NewReader("hello world"))
	assertTrue(t, errors.Is(err, ErrNotAProxy))
}

func TestDecodeProxyCorruptAfterSentinel(t *testing.T) {
	bad := sentinel + "\nnot-a-number\nAAAA\n10\n"
	_, err := decodeProxy(strings.NewReader(bad))
	assertTrue(t, errors.Is(err, ErrCorruptProxy))
}

func TestDecodeProxyTruncated(t *testing.T) {
	_, err := decodeProxy(strings.NewReader(sentinel + "\n1\n"))
	assertTrue(t, errors.Is(err, ErrCorruptProxy))
}

func TestLooksLikeProxy(t *testing.T) {
	assertBool(t, looksLikeProxy([]byte(sentinel+"\n1\nAAAA\n10\n")), true)
	assertBool(t, looksLikeProxy([]byte("plain content")), false)
	assertBool(t, looksLikeProxy([]byte("~*@")), false) // shorter than sentinel
}
