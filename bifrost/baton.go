// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// Baton ships progress indications to stderr. It degrades to silence
// when stderr is not a terminal, so piped hook invocations stay quiet.
type Baton struct {
	stream   *os.File
	isTerm   bool
	count    int
	prompt   string
	started  time.Time
}

// NewBaton creates a Baton that announces prompt and, on End, how long
// the operation took.
func NewBaton(prompt string) *Baton {
	b := &Baton{
		stream:  os.Stderr,
		isTerm:  term.IsTerminal(int(os.Stderr.Fd())),
		prompt:  prompt,
		started: time.Now(),
	}
	if b.isTerm {
		fmt.Fprintf(b.stream, "%s...", prompt)
	}
	return b
}

// Twirl advances the spinner by one tick.
func (b *Baton) Twirl() {
	if !b.isTerm {
		return
	}
	fmt.Fprintf(b.stream, "%c\b", "-\\|/"[b.count%4])
	b.count++
}

// Percent reports completed/total as a percentage, overwriting the
// previous report when attached to a terminal.
func (b *Baton) Percent(completed, total int) {
	if !b.isTerm || total == 0 {
		return
	}
	fmt.Fprintf(b.stream, "\r%s... %d%%", b.prompt, completed*100/total)
}

// End reports completion and, when attached to a terminal, elapsed time.
func (b *Baton) End(msg string) {
	if !b.isTerm {
		return
	}
	fmt.Fprintf(b.stream, "\r%s... (%s) %s.\n", b.prompt, time.Since(b.started).Round(time.Millisecond), msg)
}
