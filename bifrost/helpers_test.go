// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import "testing"

func assertEqual(t *testing.T, a, b string) {
	t.Helper()
	if a != b {
		t.Fatalf("assertEqual: expected %q == %q", a, b)
	}
}

func assertTrue(t *testing.T, see bool) {
	t.Helper()
	if !see {
		t.Errorf("assertTrue: expected true")
	}
}

func assertBool(t *testing.T, see, expect bool) {
	t.Helper()
	if see != expect {
		t.Errorf("assertBool: expected %v saw %v", expect, see)
	}
}

func assertIntEqual(t *testing.T, a, b int) {
	t.Helper()
	if a != b {
		t.Errorf("assertIntEqual: expected %d == %d", a, b)
	}
}
