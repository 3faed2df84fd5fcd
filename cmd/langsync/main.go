package main

import (
	"errors"
	"fmt"
	"os"
)

// exitError carries a specific exit status out of a subcommand.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	sub := os.Args[1]
	args := os.Args[2:]
	var err error
	switch sub {
	case "sync":
		cfg, e := parseSyncFlags("sync", args)
		if e != nil {
			err = e
			break
		}
		err = runSync(cfg, os.Stdout)
	case "check":
		cfg, e := parseSyncFlags("check", args)
		if e != nil {
			err = e
			break
		}
		err = runSync(cfg, os.Stdout)
	case "extract":
		cfg, e := parseExtractFlags(args)
		if e != nil {
			err = e
			break
		}
		err = runExtract(cfg, os.Stdout)
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "langsync: unknown subcommand %q\n", sub)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "langsync: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `langsync - keep locale stores in sync with the lookup calls in a source tree

usage: langsync <command> [options]

commands:
  sync       Add keys used in source but missing from any locale store (default values as seed).
  check      Report missing keys without modifying stores; exits 1 when keys are missing.
  extract    List the keys and default values found in source.

Settings are read from .langsync.yaml (or -config), then LANGSYNC_* environment
variables (a .env file is honored), then flags.

Use 'langsync sync -h' or 'langsync extract -h' for command-specific flags.
`)
}
