package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/loopcontext/langsync"
	"github.com/loopcontext/langsync/internal/logging"
)

// syncConfig holds the resolved settings for the sync and check commands.
type syncConfig struct {
	settings
	// check reports only and fails when keys are missing.
	check bool
}

func usageSync(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `usage: langsync %s [options]

Sync scans -root for lookup calls and makes sure every key exists in every
locale store. Missing keys are added with the default value found in source.
Locale stores are taken from -stores, else <langs>/<locale>.json for each of
-locales, else every .json/.yaml/.yml file in -langs, else en-US and vi-VN.

Check behaves like sync -noadd and exits with status 1 when keys are missing.
A run where some stores could not be read or written exits with status 2.

Flags:
`, fs.Name())
		fs.PrintDefaults()
	}
}

func parseSyncFlags(name string, args []string) (*syncConfig, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = usageSync(fs)
	var (
		common    commonFlags
		langs     string
		locales   string
		stores    string
		noAdd     bool
		sortKeys  bool
		overwrite bool
	)
	common.register(fs)
	fs.StringVar(&langs, "langs", defaultLangsDir, "Directory holding the locale stores.")
	fs.StringVar(&locales, "locales", "", "Comma-separated locale names, e.g. en-US,vi-VN (stores are <langs>/<locale>.json).")
	fs.StringVar(&stores, "stores", "", "Comma-separated locale store paths; overrides -langs and -locales.")
	fs.BoolVar(&noAdd, "noadd", false, "Only report missing keys, do not modify any store.")
	fs.BoolVar(&sortKeys, "sort", false, "Sort keys alphabetically when writing stores.")
	fs.BoolVar(&overwrite, "overwrite", false, "Replace existing values with the defaults found in source.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%s: unexpected arguments %v", name, fs.Args())
	}

	s, set, err := common.resolve(fs)
	if err != nil {
		return nil, err
	}
	if set["langs"] {
		s.LangsDir = langs
	}
	if set["locales"] {
		s.Locales = splitList(locales)
	}
	if set["stores"] {
		s.Stores = splitList(stores)
	}
	if set["noadd"] {
		s.NoAdd = noAdd
	}
	if set["sort"] {
		s.Sort = sortKeys
	}
	if set["overwrite"] {
		s.Overwrite = overwrite
	}
	cfg := &syncConfig{settings: s, check: name == "check"}
	if cfg.check {
		cfg.NoAdd = true
	}
	return cfg, nil
}

func runSync(cfg *syncConfig, w io.Writer) error {
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	paths, err := cfg.storePaths()
	if err != nil {
		return err
	}
	logger.Debug().Str("root", cfg.Root).Strs("stores", paths).Msg("starting sync")

	report, err := langsync.Run(langsync.Config{
		ReportOnly:        cfg.NoAdd,
		SortOnWrite:       cfg.Sort,
		OverwriteExisting: cfg.Overwrite,
		SourceRoot:        cfg.Root,
		StorePaths:        paths,
		Extractor:         cfg.extractorConfig(),
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	if _, err := report.WriteTo(w); err != nil {
		return err
	}

	if cfg.check && len(report.Missing) > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d keys missing from locale stores", len(report.Missing))}
	}
	if report.Failed() {
		return &exitError{code: 2, err: fmt.Errorf("%d of %d locale stores failed", len(report.Errors()), len(report.Stores))}
	}
	return nil
}
