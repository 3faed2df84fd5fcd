package main

import (
	"flag"
	"strings"
)

// commonFlags are registered by every subcommand. Only flags given on the
// command line override the config file and environment.
type commonFlags struct {
	config    string
	root      string
	lookup    string
	pattern   string
	ext       string
	exclude   string
	logLevel  string
	logFormat string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", defaultConfigFile, "YAML settings file. Missing is fine unless set explicitly.")
	fs.StringVar(&c.root, "root", ".", "Source tree to scan for lookup calls.")
	fs.StringVar(&c.lookup, "lookup", "", "Lookup call to detect (default \"LangManager.GetString\").")
	fs.StringVar(&c.pattern, "pattern", "", "Custom regular expression with (?P<key...>) and (?P<def...>) groups; overrides -lookup.")
	fs.StringVar(&c.ext, "ext", "", "Comma-separated source file extensions (default \".cs\").")
	fs.StringVar(&c.exclude, "exclude", "", "Comma-separated directory names to skip (default \".git,bin,obj\").")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error (default info).")
	fs.StringVar(&c.logFormat, "log-format", "", "Log format: console or json (default console).")
}

// resolve merges defaults, the config file, the environment and the flags
// that were set, in that order.
func (c *commonFlags) resolve(fs *flag.FlagSet) (settings, map[string]bool, error) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	s := defaultSettings()
	if err := loadSettingsFile(&s, c.config, set["config"]); err != nil {
		return s, set, err
	}
	if err := applyEnv(&s); err != nil {
		return s, set, err
	}
	if set["root"] {
		s.Root = c.root
	}
	if set["lookup"] {
		s.Lookup = c.lookup
	}
	if set["pattern"] {
		s.Pattern = c.pattern
	}
	if set["ext"] {
		s.Extensions = splitList(c.ext)
	}
	if set["exclude"] {
		s.Exclude = splitList(c.exclude)
	}
	if set["log-level"] {
		s.LogLevel = c.logLevel
	}
	if set["log-format"] {
		s.LogFormat = c.logFormat
	}
	s.Root = strings.TrimSpace(s.Root)
	if s.Root == "" {
		s.Root = "."
	}
	return s, set, nil
}
