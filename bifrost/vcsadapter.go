// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ChangedEntry is one line of a diff-tree report: a one-letter status
// (A, M, D, R..., C..., or X for "something is wrong") and the path it
// names.
type ChangedEntry struct {
	Status string
	Path   string
}

// VCS is the contract Pre-commit Guard, Pre-push Orchestrator, Verify
// Sweep and the Store Catalog depend on. *VCSAdapter is the only
// production implementation; tests substitute a fake to exercise
// those components without a real git subprocess.
type VCS interface {
	RevListNotRemotes(localRef, remoteName string) ([]string, error)
	RevListAll() ([]string, error)
	ChangedEntries(commitID string) ([]ChangedEntry, error)
	ReadBlob(ref string) ([]byte, error)
	BlobSize(ref string) (int64, error)
	StagedPaths() ([]string, error)
	FilterAttribute(path string) (string, error)
	AttributeIsSet(path, name string) (bool, error)
	ConfigGetInt(key, file string) (int, bool, error)
	ConfigGetRegex(pattern, file string) ([]string, error)
	ConfigSet(key, value, file string) error
}

// VCSAdapter launches git subprocesses and parses their output. Every
// invocation disables the pager and interactive prompts, never
// inherits stdin, and surfaces a nonzero exit as an error unless the
// caller explicitly tolerates one (config lookups tolerate "not set").
type VCSAdapter struct {
	// WorkDir is the directory git subprocesses run in; empty means
	// the current working directory.
	WorkDir string
}

func NewVCSAdapter() *VCSAdapter { return &VCSAdapter{} }

func (v *VCSAdapter) command(args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Dir = v.WorkDir
	cmd.Env = append(cmd.Environ(), "GIT_PAGER=cat", "GIT_TERMINAL_PROMPT=0")
	return cmd
}

// run executes git with args, capturing stdout. A nonzero exit is
// returned as an error that includes the command and stderr content.
func (v *VCSAdapter) run(args ...string) ([]byte, error) {
	cmd := v.command(args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Debugf("git %s", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// RevListNotRemotes returns commits reachable from localRef that are
// not reachable from any ref under remoteName, in the order git
// reports them.
func (v *VCSAdapter) RevListNotRemotes(localRef, remoteName string) ([]string, error) {
	out, err := v.run("rev-list", localRef, "--not", "--remotes="+remoteName)
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

// RevListAll returns every reachable commit.
func (v *VCSAdapter) RevListAll() ([]string, error) {
	out, err := v.run("rev-list", "--all")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

// ChangedEntries returns the status/path pairs a commit touches
// relative to its first parent (the root commit is diffed against the
// empty tree).
func (v *VCSAdapter) ChangedEntries(commitID string) ([]ChangedEntry, error) {
	out, err := v.run("diff-tree", "--no-commit-id", "--name-status", "-r", "-z",
		"--root", commitID)
	if err != nil {
		return nil, err
	}
	fields := splitNUL(out)
	entries := make([]ChangedEntry, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		status := fields[i]
		if strings.HasPrefix(status, "R") || strings.HasPrefix(status, "C") {
			// rename/copy records carry an extra path field
			if i+2 < len(fields) {
				entries = append(entries, ChangedEntry{Status: status, Path: fields[i+2]})
				i++
				continue
			}
		}
		entries = append(entries, ChangedEntry{Status: status, Path: fields[i+1]})
	}
	return entries, nil
}

// ReadBlob reads the full content of a historical blob named
// commit:path (or :path for the staged blob). Callers that only need a
// prefix truncate the returned bytes themselves.
func (v *VCSAdapter) ReadBlob(ref string) ([]byte, error) {
	return v.run("cat-file", "-p", ref)
}

// BlobSize reports the size of a historical blob without reading its
// content.
func (v *VCSAdapter) BlobSize(ref string) (int64, error) {
	out, err := v.run("cat-file", "-s", ref)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
}

// StagedPaths returns the paths that differ between the index and HEAD.
func (v *VCSAdapter) StagedPaths() ([]string, error) {
	out, err := v.run("diff", "--cached", "--name-only", "-z")
	if err != nil {
		return nil, err
	}
	return splitNUL(out), nil
}

// FilterAttribute returns the value of the filter attribute for path as
// recorded in the index state (i.e. honoring .gitattributes as staged,
// not as checked out).
func (v *VCSAdapter) FilterAttribute(path string) (string, error) {
	out, err := v.run("check-attr", "--cached", "-z", "filter", "--", path)
	if err != nil {
		return "", err
	}
	fields := splitNUL(out)
	// check-attr -z emits path, attribute-name, value as consecutive
	// NUL-terminated records.
	if len(fields) >= 3 {
		return fields[2], nil
	}
	return "", nil
}

// AttributeIsSet reports whether the named boolean attribute is set
// for path in the index state.
func (v *VCSAdapter) AttributeIsSet(path, name string) (bool, error) {
	out, err := v.run("check-attr", "--cached", "-z", name, "--", path)
	if err != nil {
		return false, err
	}
	fields := splitNUL(out)
	if len(fields) >= 3 {
		return fields[2] == "set", nil
	}
	return false, nil
}

// ConfigGetInt reads an integer config key from file. The second
// return value is false if the key is unset; an unset key is tolerated,
// not an error.
func (v *VCSAdapter) ConfigGetInt(key, file string) (int, bool, error) {
	cmd := v.command("config", "--file", file, "--get", key)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("git config --get %s: %w: %s", key, err, stderr.String())
	}
	value, err := strconv.Atoi(strings.TrimSpace(stdout.String()))
	if err != nil {
		return 0, false, fmt.Errorf("config key %s is not an integer: %w", key, err)
	}
	return value, true, nil
}

// ConfigGetRegex returns every "key value" line in file whose key
// matches pattern.
func (v *VCSAdapter) ConfigGetRegex(pattern, file string) ([]string, error) {
	cmd := v.command("config", "--file", file, "--get-regexp", pattern)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil // no matches, not an error
		}
		return nil, fmt.Errorf("git config --get-regexp %s: %w: %s", pattern, err, stderr.String())
	}
	return splitNonEmptyLines(stdout.Bytes()), nil
}

// ConfigSet writes key=value into file.
func (v *VCSAdapter) ConfigSet(key, value, file string) error {
	_, err := v.run("config", "--file", file, key, value)
	return err
}

func splitNonEmptyLines(b []byte) []string {
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func splitNUL(b []byte) []string {
	trimmed := bytes.TrimRight(b, "\x00")
	if len(trimmed) == 0 {
		return nil
	}
	parts := bytes.Split(trimmed, []byte{0})
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = string(p)
	}
	return out
}
