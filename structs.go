package langsync

import (
	"github.com/rs/zerolog"
)

// UsageRecord is a key found at a lookup call site together with the default
// literal supplied there.
type UsageRecord struct {
	Key     string `yaml:"key"`
	Default string `yaml:"default"`
}

// Usages maps keys to defaults. Keys keep the order in which they were first
// discovered; Set on an existing key replaces the value in place.
type Usages struct {
	order  []string
	values map[string]string
}

func NewUsages() *Usages {
	return &Usages{values: map[string]string{}}
}

func (u *Usages) Set(key string, def string) {
	if _, found := u.values[key]; !found {
		u.order = append(u.order, key)
	}
	u.values[key] = def
}

func (u *Usages) Get(key string) (string, bool) {
	def, found := u.values[key]
	return def, found
}

func (u *Usages) Has(key string) bool {
	_, found := u.values[key]
	return found
}

func (u *Usages) Len() int {
	if u == nil {
		return 0
	}
	return len(u.order)
}

// Keys returns the keys in discovery order.
func (u *Usages) Keys() []string {
	out := make([]string, len(u.order))
	copy(out, u.order)
	return out
}

// Records returns one record per key in discovery order.
func (u *Usages) Records() []UsageRecord {
	out := make([]UsageRecord, 0, len(u.order))
	for _, key := range u.order {
		out = append(out, UsageRecord{Key: key, Default: u.values[key]})
	}
	return out
}

// ExtractorConfig controls which files are scanned and what a lookup call
// looks like.
type ExtractorConfig struct {
	// LookupAPI is the qualified call name, e.g. "LangManager.GetString".
	LookupAPI string
	// Pattern replaces the generated call pattern. Key captures are named
	// groups prefixed "key", default captures are prefixed "def".
	Pattern     string
	Extensions  []string
	ExcludeDirs []string
	Logger      zerolog.Logger
}

type Config struct {
	ReportOnly        bool
	SortOnWrite       bool
	OverwriteExisting bool
	SourceRoot        string
	StorePaths        []string

	Extractor ExtractorConfig
	// Backend defaults to OSBackend.
	Backend Backend
	Logger  zerolog.Logger
}

// CatalogConfig configures a runtime Catalog.
type CatalogConfig struct {
	ResourcePath      string
	DefaultLanguage   string
	FallbackLanguages []string
	CtxLanguageKey    ContextKey
	StatsMaxKeys      int
	Backend           Backend
	Logger            zerolog.Logger
}

// ContextKey is the type of the context key holding the request language.
type ContextKey string
