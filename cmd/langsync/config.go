package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/loopcontext/langsync"
)

const (
	defaultConfigFile = ".langsync.yaml"
	defaultLangsDir   = "res/langs"
	envPrefix         = "LANGSYNC_"
)

// defaultLocales are used when the langs directory holds no store yet.
var defaultLocales = []string{"en-US", "vi-VN"}

// settings is the merged configuration shared by all subcommands.
// Precedence: defaults < config file < environment < flags.
type settings struct {
	Root       string   `yaml:"root"`
	LangsDir   string   `yaml:"langs"`
	Locales    []string `yaml:"locales"`
	Stores     []string `yaml:"stores"`
	Lookup     string   `yaml:"lookup"`
	Pattern    string   `yaml:"pattern"`
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude"`
	NoAdd      bool     `yaml:"noadd"`
	Sort       bool     `yaml:"sort"`
	Overwrite  bool     `yaml:"overwrite"`
	LogLevel   string   `yaml:"log_level"`
	LogFormat  string   `yaml:"log_format"`
}

func defaultSettings() settings {
	return settings{
		Root:       ".",
		LangsDir:   defaultLangsDir,
		Lookup:     langsync.DefaultLookupAPI,
		Extensions: langsync.DefaultExtensions,
		Exclude:    langsync.DefaultExcludeDirs,
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// loadSettingsFile merges the YAML file at path into s. A missing file is only
// an error when it was named explicitly.
func loadSettingsFile(s *settings, path string, explicit bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(content, s); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv merges LANGSYNC_* variables into s after loading a .env file from
// the working directory, if any.
func applyEnv(s *settings) error {
	_ = godotenv.Load()

	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
			*dst = splitList(v)
		}
	}
	boolean := func(name string, dst *bool) error {
		v := strings.TrimSpace(os.Getenv(envPrefix + name))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = b
		return nil
	}

	str("ROOT", &s.Root)
	str("LANGS", &s.LangsDir)
	list("LOCALES", &s.Locales)
	list("STORES", &s.Stores)
	str("LOOKUP", &s.Lookup)
	str("PATTERN", &s.Pattern)
	list("EXTENSIONS", &s.Extensions)
	list("EXCLUDE", &s.Exclude)
	str("LOG_LEVEL", &s.LogLevel)
	str("LOG_FORMAT", &s.LogFormat)
	for name, dst := range map[string]*bool{"NOADD": &s.NoAdd, "SORT": &s.Sort, "OVERWRITE": &s.Overwrite} {
		if err := boolean(name, dst); err != nil {
			return err
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// storePaths resolves the locale store files: explicit stores first, then
// <langs>/<locale>.json for each locale, then every store file found in the
// langs directory, then the default locales.
func (s *settings) storePaths() ([]string, error) {
	if len(s.Stores) > 0 {
		return s.Stores, nil
	}
	if len(s.Locales) > 0 {
		return s.localePaths(s.Locales), nil
	}
	entries, err := os.ReadDir(s.LangsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list %s: %w", s.LangsDir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !langsync.IsStoreFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(s.LangsDir, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return s.localePaths(defaultLocales), nil
	}
	return paths, nil
}

func (s *settings) localePaths(locales []string) []string {
	paths := make([]string, 0, len(locales))
	for _, locale := range locales {
		name := locale
		if !langsync.IsStoreFile(name) {
			name += ".json"
		}
		paths = append(paths, filepath.Join(s.LangsDir, name))
	}
	return paths
}

func (s *settings) extractorConfig() langsync.ExtractorConfig {
	return langsync.ExtractorConfig{
		LookupAPI:   s.Lookup,
		Pattern:     s.Pattern,
		Extensions:  s.Extensions,
		ExcludeDirs: s.Exclude,
	}
}
