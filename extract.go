package langsync

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
)

const DefaultLookupAPI = "LangManager.GetString"

var (
	DefaultExtensions  = []string{".cs"}
	DefaultExcludeDirs = []string{".git", "bin", "obj"}
)

// callPatternFmt matches <api>("key", "default") with either quote style.
// RE2 has no backreferences, so each literal is an alternation of a
// double-quoted and a single-quoted capture.
const callPatternFmt = `%s\(\s*(?:"(?P<key_dq>.+?)"|'(?P<key_sq>.+?)')\s*,\s*(?:"(?P<def_dq>.*?)"|'(?P<def_sq>.*?)')\s*\)`

// CallPattern returns the default call pattern for a lookup API name.
func CallPattern(lookupAPI string) string {
	return fmt.Sprintf(callPatternFmt, regexp.QuoteMeta(lookupAPI))
}

// Extractor scans source trees for lookup calls.
type Extractor struct {
	pattern     *regexp.Regexp
	keyGroups   []int
	defGroups   []int
	extensions  map[string]struct{}
	excludeDirs map[string]struct{}
	logger      zerolog.Logger
}

func NewExtractor(cfg ExtractorConfig) (*Extractor, error) {
	if cfg.LookupAPI == "" {
		cfg.LookupAPI = DefaultLookupAPI
	}
	if cfg.Pattern == "" {
		cfg.Pattern = CallPattern(cfg.LookupAPI)
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	if cfg.ExcludeDirs == nil {
		cfg.ExcludeDirs = DefaultExcludeDirs
	}

	pattern, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	ext := &Extractor{
		pattern:     pattern,
		extensions:  map[string]struct{}{},
		excludeDirs: map[string]struct{}{},
		logger:      cfg.Logger,
	}
	for idx, name := range pattern.SubexpNames() {
		switch {
		case strings.HasPrefix(name, "key"):
			ext.keyGroups = append(ext.keyGroups, idx)
		case strings.HasPrefix(name, "def"):
			ext.defGroups = append(ext.defGroups, idx)
		}
	}
	if len(ext.keyGroups) == 0 || len(ext.defGroups) == 0 {
		return nil, fmt.Errorf("%w: %q needs named groups prefixed \"key\" and \"def\"", ErrInvalidPattern, cfg.Pattern)
	}
	for _, e := range cfg.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		ext.extensions[e] = struct{}{}
	}
	for _, d := range cfg.ExcludeDirs {
		d = strings.TrimSpace(d)
		if d != "" {
			ext.excludeDirs[d] = struct{}{}
		}
	}
	return ext, nil
}

// Extract walks root and returns every key found, bound to the default of its
// last occurrence. Directory entries are visited in lexical order, so "last"
// means last file in that order, then last match within the file. A missing
// or unreadable root gives an empty result.
func (e *Extractor) Extract(root string) *Usages {
	usages := NewUsages()
	root = filepath.Clean(root)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Debug().Err(err).Str("path", p).Msg("skipping unreadable path")
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, skip := e.excludeDirs[d.Name()]; skip && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !e.matchesExtension(p) {
			return nil
		}
		src, err := os.ReadFile(p)
		if err != nil {
			e.logger.Debug().Err(err).Str("path", p).Msg("skipping unreadable file")
			return nil
		}
		text, ok := decodeText(src)
		if !ok {
			e.logger.Debug().Str("path", p).Msg("skipping file that is not UTF-8 text")
			return nil
		}
		e.extractInto(usages, text)
		return nil
	})
	if err != nil {
		e.logger.Debug().Err(err).Str("root", root).Msg("source walk stopped")
	}
	e.logger.Debug().Str("root", root).Int("keys", usages.Len()).Msg("source scan finished")
	return usages
}

// ExtractSource applies the call pattern to a single buffer.
func (e *Extractor) ExtractSource(src []byte) *Usages {
	usages := NewUsages()
	if text, ok := decodeText(src); ok {
		e.extractInto(usages, text)
	}
	return usages
}

func (e *Extractor) extractInto(usages *Usages, text string) {
	for _, m := range e.pattern.FindAllStringSubmatchIndex(text, -1) {
		key, _ := firstGroup(text, m, e.keyGroups)
		if key == "" {
			continue
		}
		def, _ := firstGroup(text, m, e.defGroups)
		usages.Set(key, def)
	}
}

// firstGroup returns the first participating group among idxs. Participation
// is checked on the index pair so an empty default still counts.
func firstGroup(text string, m []int, idxs []int) (string, bool) {
	for _, idx := range idxs {
		start, end := m[2*idx], m[2*idx+1]
		if start >= 0 {
			return text[start:end], true
		}
	}
	return "", false
}

func (e *Extractor) matchesExtension(p string) bool {
	_, ok := e.extensions[strings.ToLower(filepath.Ext(p))]
	return ok
}

// decodeText strips a UTF-8 byte order mark and rejects anything that is not
// valid UTF-8.
func decodeText(src []byte) (string, bool) {
	if !utf8.Valid(src) {
		return "", false
	}
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(src)
	if err != nil {
		return "", false
	}
	return string(out), true
}
