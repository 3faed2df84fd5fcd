package langsync

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/loopcontext/langsync/internal/localetag"
)

// IsMissing reports whether key is absent from at least one store. Full
// coverage means presence in every store, so a key held by some but not all
// stores is still missing.
func IsMissing(key string, stores []*LocaleStore) bool {
	for _, store := range stores {
		if !store.Has(key) {
			return true
		}
	}
	return false
}

// MissingSet returns the usages that are missing from any store, sorted by key.
func MissingSet(usages *Usages, stores []*LocaleStore) []UsageRecord {
	var missing []UsageRecord
	for _, rec := range usages.Records() {
		if IsMissing(rec.Key, stores) {
			missing = append(missing, rec)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].Key < missing[j].Key })
	return missing
}

// Reconciler brings locale stores in line with a set of usages.
type Reconciler struct {
	cfg     Config
	backend Backend
	logger  zerolog.Logger
}

func NewReconciler(cfg Config) *Reconciler {
	backend := cfg.Backend
	if backend == nil {
		backend = OSBackend{}
	}
	return &Reconciler{cfg: cfg, backend: backend, logger: cfg.Logger}
}

// LoadStores loads every configured store. Stores that fail to load are
// returned empty, with the failure recorded in the matching StoreResult.
func (r *Reconciler) LoadStores() ([]*LocaleStore, []StoreResult) {
	stores := make([]*LocaleStore, 0, len(r.cfg.StorePaths))
	results := make([]StoreResult, 0, len(r.cfg.StorePaths))
	for _, path := range r.cfg.StorePaths {
		store, err := LoadStore(r.backend, path)
		result := StoreResult{Path: store.Path, Locale: store.Locale, Err: err}
		if err != nil {
			r.logger.Warn().Err(err).Str("path", path).Msg("locale store unusable, treating it as empty")
		} else {
			if !localetag.Valid(store.Locale) {
				r.logger.Warn().Str("path", path).Msg("store file name is not a locale tag")
			}
			r.logger.Debug().Str("path", path).Str("locale", store.Locale).Int("keys", store.Len()).Msg("locale store loaded")
		}
		stores = append(stores, store)
		results = append(results, result)
	}
	return stores, results
}

// Reconcile computes the missing keys and, unless the configuration is
// report-only, merges them into the stores and persists the result.
//
// Per-store failures are recorded in the report and never stop the other
// stores. The returned error is reserved for failures that make writing
// impossible, such as a store directory that cannot be created.
func (r *Reconciler) Reconcile(usages *Usages) (*Report, error) {
	report := &Report{
		UsageCount: usages.Len(),
		ReportOnly: r.cfg.ReportOnly,
		Overwrite:  r.cfg.OverwriteExisting,
	}
	if usages.Len() == 0 {
		r.logger.Info().Msg("no lookup usages found")
		return report, nil
	}

	stores, results := r.LoadStores()
	report.Stores = results
	report.Missing = MissingSet(usages, stores)
	if len(report.Missing) == 0 {
		r.logger.Info().Int("stores", len(stores)).Msg("no missing keys")
		return report, nil
	}
	if r.cfg.ReportOnly {
		return report, nil
	}

	missing := make(map[string]struct{}, len(report.Missing))
	for _, rec := range report.Missing {
		missing[rec.Key] = struct{}{}
	}
	for _, rec := range usages.Records() {
		if _, ok := missing[rec.Key]; !ok {
			continue
		}
		for i, store := range stores {
			if store.Has(rec.Key) {
				continue
			}
			store.Set(rec.Key, rec.Default)
			report.Stores[i].Added++
		}
	}
	report.Added = len(report.Missing)

	if r.cfg.OverwriteExisting {
		for _, rec := range usages.Records() {
			for i, store := range stores {
				if added, changed := store.Set(rec.Key, rec.Default); changed && !added {
					report.Stores[i].Updated++
				}
			}
		}
	}

	report.Sorted = r.cfg.SortOnWrite
	for i, store := range stores {
		report.Stores[i].Keys = store.Len()
		if report.Stores[i].Err != nil {
			report.Stores[i].Skipped = true
			r.logger.Warn().Str("path", store.Path).Msg("not rewriting locale store that failed to load")
			continue
		}
		dir := filepath.Dir(store.Path)
		if err := r.backend.MkdirAll(dir); err != nil {
			return report, fmt.Errorf("create store directory %s: %w", dir, err)
		}
		if err := SaveStore(r.backend, store, r.cfg.SortOnWrite); err != nil {
			report.Stores[i].Err = err
			r.logger.Error().Err(err).Str("path", store.Path).Msg("failed to write locale store")
			continue
		}
		report.Stores[i].Written = true
		r.logger.Debug().Str("path", store.Path).Int("keys", store.Len()).Msg("locale store written")
	}
	return report, nil
}

// Run scans cfg.SourceRoot and reconciles the result against cfg.StorePaths.
// cfg.Logger is used for both steps.
func Run(cfg Config) (*Report, error) {
	cfg.Extractor.Logger = cfg.Logger
	extractor, err := NewExtractor(cfg.Extractor)
	if err != nil {
		return nil, err
	}
	root := cfg.SourceRoot
	if root == "" {
		root = "."
	}
	usages := extractor.Extract(root)
	return NewReconciler(cfg).Reconcile(usages)
}
