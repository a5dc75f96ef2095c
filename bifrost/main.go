// git-bifrost transparently replaces oversize blobs with small proxy
// files at commit time and reconstitutes them at checkout time from
// one or more external stores.
//
// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

var doc = `git-bifrost - large file support for git

usage: git-bifrost [-v] SUBCOMMAND [ARGS...]

Subcommands:
   hook-pre-push <remote_name> <remote_url>   run as git's pre-push hook
   hook-pre-commit                            run as git's pre-commit hook
   filter-clean <path>                        run as git's clean filter
   filter-smudge <path>                       run as git's smudge filter
   verify <store-uri>                         audit a store against history
   init                                       not implemented; prints setup guidance
   clone <git-clone-args...>                  not implemented; prints setup guidance
   help                                       show this message
`

func main() {
	verbose := flag.Bool("v", false, "enable verbose diagnostics")
	verboseLong := flag.Bool("verbose", false, "enable verbose diagnostics")
	username := flag.String("username", "", "store credentials (verify)")
	password := flag.String("password", "", "store credentials (verify)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, doc) }
	flag.Parse()
	if (*verbose || *verboseLong) && log.GetLevel() < logrus.InfoLevel {
		log.SetLevel(logrus.InfoLevel)
	}

	if flag.NArg() == 0 {
		fmt.Fprint(os.Stderr, doc)
		os.Exit(1)
	}

	ctx := context.Background()
	vcs := NewVCSAdapter()

	switch flag.Arg(0) {
	case "help":
		fmt.Print(doc)
	case "filter-clean":
		runFilterClean()
	case "filter-smudge":
		runFilterSmudge(ctx, vcs)
	case "hook-pre-commit":
		runHookPreCommit(vcs)
	case "hook-pre-push":
		runHookPrePush(ctx, vcs)
	case "verify":
		runVerifyCommand(ctx, vcs, *username, *password, *verbose || *verboseLong)
	case "init":
		runInit()
	case "clone":
		runClone()
	default:
		croak("unknown subcommand %q; try 'git-bifrost help'", flag.Arg(0))
	}
}

func gitDir() string {
	out, err := exec.Command("git", "rev-parse", "--git-dir").Output()
	if err != nil {
		croak("not a git repository: %v", err)
	}
	return strings.TrimSpace(string(out))
}

func runFilterClean() {
	cache := NewCache(gitDir())
	if err := Clean(os.Stdin, os.Stdout, cache); err != nil {
		croak("clean: %v", err)
	}
}

func runFilterSmudge(ctx context.Context, vcs VCS) {
	cache := NewCache(gitDir())
	catalog, err := LoadCatalog(vcs)
	if err != nil {
		croak("smudge: loading store catalog: %v", err)
	}
	if err := Smudge(ctx, os.Stdin, os.Stdout, catalog, cache); err != nil {
		croak("smudge: %v", err)
	}
}

func runHookPreCommit(vcs VCS) {
	violations, err := RunPrecommit(vcs)
	if err != nil {
		croak("pre-commit: %v", err)
	}
	if len(violations) == 0 {
		return
	}
	for _, v := range violations {
		fmt.Fprintln(os.Stderr, v.Message)
	}
	fmt.Fprintln(os.Stderr, "git-bifrost: restage affected files after correcting the issue above, then retry the commit.")
	os.Exit(1)
}

func runHookPrePush(ctx context.Context, vcs VCS) {
	if flag.NArg() < 3 {
		croak("hook-pre-push requires <remote_name> <remote_url>")
	}
	remoteName := flag.Arg(1)
	remoteURL := flag.Arg(2)

	var records []PushRecord
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 {
			continue
		}
		records = append(records, PushRecord{
			LocalRef: fields[0], LocalSHA: fields[1],
			RemoteRef: fields[2], RemoteSHA: fields[3],
		})
	}

	cache := NewCache(gitDir())
	catalog, err := LoadCatalog(vcs)
	if err != nil {
		croak("pre-push: loading store catalog: %v", err)
	}

	tally, err := RunPrepush(ctx, vcs, cache, catalog, remoteName, remoteURL, records)
	if err != nil {
		croak("pre-push: %v", err)
	}
	log.Infof("pre-push: %d succeeded, %d skipped, %d primary store(s) updated",
		tally.Success, tally.Skipped+tally.SkippedLate, tally.PrimaryUpdated)
}

func runVerifyCommand(ctx context.Context, vcs VCS, username, password string, verbose bool) {
	if flag.NArg() < 2 {
		croak("verify requires a store URI")
	}
	raw := flag.Arg(1)
	parsed, err := url.Parse(raw)
	if err != nil {
		croak("verify: invalid store URI %q: %v", raw, err)
	}
	rec := StoreRecord{Name: "verify-target", URL: parsed, Username: username, Password: password}

	reports, badFiles, err := RunVerify(ctx, vcs, rec, verbose)
	if err != nil {
		croak("verify: %v", err)
	}
	for _, r := range reports {
		fmt.Printf("%s %s %s: missing=%v wrong-size=%v bad-sha=%v\n",
			r.Commit, r.Path, r.Digest, r.FileMissing, r.WrongSize, r.BadSHA)
	}
	os.Exit(badFiles)
}

// runInit and runClone are thin shims: installing hooks/filter entries
// and driving `git clone` are external collaborators per scope, but the
// CLI still needs an entry point that says so rather than silently
// falling through to "unknown subcommand".
func runInit() {
	fmt.Fprintln(os.Stderr, "git-bifrost: init is not implemented by this build; install the pre-commit/pre-push hooks and the bifrost clean/smudge filter attribute manually.")
}

func runClone() {
	fmt.Fprintln(os.Stderr, "git-bifrost: clone is not implemented by this build; run 'git clone' directly, then 'git-bifrost init' inside the clone.")
}
