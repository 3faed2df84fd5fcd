package langsync

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/loopcontext/langsync/internal/localetag"
)

const (
	DefaultResourcePath = "res/langs"
	DefaultLanguage     = "en-US"
	overflowStatKey     = "__overflow__"
)

// Catalog serves lookups from the locale stores of a resource directory, the
// runtime side of the stores kept in sync by Reconcile.
type Catalog interface {
	GetString(lang string, key string, def string) string
	GetStringWithCtx(ctx context.Context, key string, def string) string
	Languages() []string
}

// CatalogStats is a snapshot of lookup counters. Per-locale maps are keyed
// by normalized tag, MissingKeys by "<locale>:<key>".
type CatalogStats struct {
	LanguageFallbacks map[string]int
	MissingLanguages  map[string]int
	MissingKeys       map[string]int
	// StoreKeys is the key count of every store loaded by the last reload.
	StoreKeys map[string]int
	// IgnoredStores lists the store files the last reload could not use.
	IgnoredStores []string
	LastReloadAt  time.Time
}

// counter counts occurrences of at most limit distinct names. Further names
// share the overflowStatKey bucket, which counts toward the limit.
type counter struct {
	limit  int
	counts map[string]int
}

func newCounter(limit int) counter {
	return counter{limit: limit, counts: map[string]int{}}
}

func (c counter) add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "unknown"
	} else if len(name) > 120 {
		name = name[:120]
	}
	if _, seen := c.counts[name]; !seen && c.limit > 0 {
		reserved := 1
		if _, ok := c.counts[overflowStatKey]; ok {
			reserved = 0
		}
		if len(c.counts)+reserved >= c.limit {
			name = overflowStatKey
		}
	}
	c.counts[name]++
}

func (c counter) copy() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

type catalogStats struct {
	mu          sync.Mutex
	limit       int
	fallbacks   counter
	missingLang counter
	missingKeys counter
	storeKeys   map[string]int
	ignored     []string
	reloadedAt  time.Time
}

func newCatalogStats(limit int) *catalogStats {
	s := &catalogStats{limit: limit}
	s.reset()
	return s
}

func (s *catalogStats) fallback(requested string, served string) {
	s.mu.Lock()
	s.fallbacks.add(requested + "->" + served)
	s.mu.Unlock()
}

func (s *catalogStats) missingLanguage(lang string) {
	s.mu.Lock()
	s.missingLang.add(lang)
	s.mu.Unlock()
}

func (s *catalogStats) missingKey(lang string, key string) {
	s.mu.Lock()
	s.missingKeys.add(lang + ":" + key)
	s.mu.Unlock()
}

// reloaded records the outcome of a reload: the loaded stores and the paths
// that were ignored.
func (s *catalogStats) reloaded(stores map[string]*LocaleStore, ignored []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeKeys = make(map[string]int, len(stores))
	for locale, store := range stores {
		s.storeKeys[locale] = store.Len()
	}
	s.ignored = ignored
	s.reloadedAt = time.Now()
}

// reset clears the lookup counters. Reload results are kept.
func (s *catalogStats) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallbacks = newCounter(s.limit)
	s.missingLang = newCounter(s.limit)
	s.missingKeys = newCounter(s.limit)
}

func (s *catalogStats) snapshot() CatalogStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	storeKeys := make(map[string]int, len(s.storeKeys))
	for k, v := range s.storeKeys {
		storeKeys[k] = v
	}
	return CatalogStats{
		LanguageFallbacks: s.fallbacks.copy(),
		MissingLanguages:  s.missingLang.copy(),
		MissingKeys:       s.missingKeys.copy(),
		StoreKeys:         storeKeys,
		IgnoredStores:     append([]string(nil), s.ignored...),
		LastReloadAt:      s.reloadedAt,
	}
}

type DefaultCatalog struct {
	mu      sync.RWMutex
	stores  map[string]*LocaleStore // indexed by normalized locale tag
	cfg     CatalogConfig
	backend Backend
	stats   *catalogStats
}

// readStores loads every store file of the resource directory. The second
// result lists the store files that were left out.
func (dc *DefaultCatalog) readStores() (map[string]*LocaleStore, []string, error) {
	entries, err := dc.backend.ReadDir(dc.cfg.ResourcePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list locale stores: %w", err)
	}

	stores := map[string]*LocaleStore{}
	var ignored []string
	for _, entry := range entries {
		if entry.IsDir() || !IsStoreFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dc.cfg.ResourcePath, entry.Name())
		if stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())); !localetag.Valid(stem) {
			dc.cfg.Logger.Warn().Str("path", path).Msg("store file name is not a locale tag, ignored")
			ignored = append(ignored, path)
			continue
		}
		store, err := LoadStore(dc.backend, path)
		if err != nil {
			// A broken store must not take the other languages down.
			dc.cfg.Logger.Warn().Err(err).Str("path", path).Msg("skipping locale store")
			ignored = append(ignored, path)
			continue
		}
		if _, dup := stores[store.Locale]; dup {
			dc.cfg.Logger.Warn().Str("path", path).Str("locale", store.Locale).Msg("duplicate locale store ignored")
			ignored = append(ignored, path)
			continue
		}
		stores[store.Locale] = store
	}
	return stores, ignored, nil
}

// Reload re-reads the resource directory and swaps the loaded stores.
func (dc *DefaultCatalog) Reload() error {
	stores, ignored, err := dc.readStores()
	if err != nil {
		return err
	}
	dc.mu.Lock()
	dc.stores = stores
	dc.mu.Unlock()
	dc.stats.reloaded(stores, ignored)
	return nil
}

func appendLangIfMissing(target *[]string, seen map[string]struct{}, lang string) {
	if lang == "" {
		return
	}
	if _, exists := seen[lang]; exists {
		return
	}
	seen[lang] = struct{}{}
	*target = append(*target, lang)
}

// candidates lists the languages tried for a request, most specific first.
func (dc *DefaultCatalog) candidates(requested string) []string {
	out := make([]string, 0, 6)
	seen := map[string]struct{}{}
	appendLangIfMissing(&out, seen, requested)
	appendLangIfMissing(&out, seen, localetag.Base(requested))
	for _, lang := range dc.cfg.FallbackLanguages {
		appendLangIfMissing(&out, seen, localetag.Normalize(lang))
	}
	appendLangIfMissing(&out, seen, dc.cfg.DefaultLanguage)
	return out
}

// GetString looks key up in lang, then its base language, the fallback
// languages and the default language. When no store has the key, def is
// returned, or the key itself if def is empty.
func (dc *DefaultCatalog) GetString(lang string, key string, def string) string {
	requested := localetag.Normalize(lang)
	if requested == "" {
		requested = dc.cfg.DefaultLanguage
	}

	dc.mu.RLock()
	defer dc.mu.RUnlock()
	if _, found := dc.stores[requested]; !found {
		dc.stats.missingLanguage(requested)
	}
	for _, candidate := range dc.candidates(requested) {
		store, found := dc.stores[candidate]
		if !found {
			continue
		}
		if value, ok := store.Get(key); ok {
			if candidate != requested {
				dc.stats.fallback(requested, candidate)
			}
			return value
		}
	}
	dc.stats.missingKey(requested, key)
	if def == "" {
		return key
	}
	return def
}

// GetStringWithCtx reads the language from ctx under the configured key.
func (dc *DefaultCatalog) GetStringWithCtx(ctx context.Context, key string, def string) string {
	lang := dc.cfg.DefaultLanguage
	if ctx != nil {
		if v := ctx.Value(dc.cfg.CtxLanguageKey); v != nil {
			lang = fmt.Sprintf("%v", v)
		} else if v := ctx.Value(string(dc.cfg.CtxLanguageKey)); v != nil {
			lang = fmt.Sprintf("%v", v)
		}
	}
	return dc.GetString(lang, key, def)
}

// Languages returns the loaded locale tags, sorted.
func (dc *DefaultCatalog) Languages() []string {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	out := make([]string, 0, len(dc.stores))
	for lang := range dc.stores {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

func (dc *DefaultCatalog) SnapshotStats() CatalogStats {
	return dc.stats.snapshot()
}

func (dc *DefaultCatalog) ResetStats() {
	dc.stats.reset()
}

// Reloader is implemented by catalogs that can re-read their stores.
type Reloader interface {
	Reload() error
}

// StatsReporter is implemented by catalogs that keep lookup counters.
type StatsReporter interface {
	SnapshotStats() CatalogStats
	ResetStats()
}

func Reload(catalog Catalog) error {
	if r, ok := catalog.(Reloader); ok {
		return r.Reload()
	}
	return fmt.Errorf("catalog %T cannot reload", catalog)
}

func SnapshotStats(catalog Catalog) (CatalogStats, error) {
	if r, ok := catalog.(StatsReporter); ok {
		return r.SnapshotStats(), nil
	}
	return CatalogStats{}, fmt.Errorf("catalog %T keeps no stats", catalog)
}

func ResetStats(catalog Catalog) error {
	if r, ok := catalog.(StatsReporter); ok {
		r.ResetStats()
		return nil
	}
	return fmt.Errorf("catalog %T keeps no stats", catalog)
}

func NewCatalog(cfg CatalogConfig) (Catalog, error) {
	if cfg.ResourcePath == "" {
		cfg.ResourcePath = DefaultResourcePath
	}
	cfg.DefaultLanguage = localetag.Normalize(cfg.DefaultLanguage)
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = DefaultLanguage
	}
	if cfg.CtxLanguageKey == "" {
		cfg.CtxLanguageKey = "language"
	}
	if cfg.StatsMaxKeys <= 0 {
		cfg.StatsMaxKeys = 512
	}
	backend := cfg.Backend
	if backend == nil {
		backend = OSBackend{}
	}

	dc := &DefaultCatalog{
		cfg:     cfg,
		backend: backend,
		stats:   newCatalogStats(cfg.StatsMaxKeys),
	}
	err := dc.Reload()

	return dc, err
}
