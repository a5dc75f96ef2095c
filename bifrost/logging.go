// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// log is the package-wide diagnostics sink. Diagnostics always go to
// stderr; stdout is reserved for filter output (proxy/blob bytes).
var log = logrus.New()

func init() {
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	}
	configureVerbosity()
}

// configureVerbosity maps GITBIFROST_VERBOSITY onto a logrus level.
// Normal (the default) only surfaces warnings and errors; Loud adds
// per-operation progress; Debug adds subprocess and transport traces.
func configureVerbosity() {
	switch os.Getenv("GITBIFROST_VERBOSITY") {
	case "Loud":
		log.SetLevel(logrus.InfoLevel)
	case "Debug":
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
}

// croak reports a fatal condition and terminates the process, matching
// the teacher's croak() convention: a one-line stderr diagnostic
// followed by a nonzero exit.
func croak(msg string, args ...interface{}) {
	log.Errorf(msg, args...)
	os.Exit(1)
}
