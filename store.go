package langsync

import (
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/loopcontext/langsync/internal/localetag"
)

//go:generate mockgen -source=$GOFILE -package mock_langsync -destination=test/mock/$GOFILE

// Backend is the file access used for locale stores.
type Backend interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	MkdirAll(dir string) error
	ReadDir(dir string) ([]fs.DirEntry, error)
}

const (
	storeFilePermissions = 0o644
	storeDirPermissions  = 0o755
)

// OSBackend reads and writes the local filesystem.
type OSBackend struct{}

func (OSBackend) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSBackend) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, storeFilePermissions)
}

func (OSBackend) MkdirAll(dir string) error {
	return os.MkdirAll(dir, storeDirPermissions)
}

func (OSBackend) ReadDir(dir string) ([]fs.DirEntry, error) {
	return os.ReadDir(dir)
}

// LocaleStore is an ordered key/value document for one locale. Keys keep
// their on-disk order; keys added later are appended.
type LocaleStore struct {
	Path   string
	Locale string

	order  []string
	values map[string]string
}

func NewLocaleStore(path string) *LocaleStore {
	return &LocaleStore{
		Path:   path,
		Locale: localetag.FromPath(path),
		values: map[string]string{},
	}
}

func (s *LocaleStore) Has(key string) bool {
	_, found := s.values[key]
	return found
}

func (s *LocaleStore) Get(key string) (string, bool) {
	value, found := s.values[key]
	return value, found
}

// Set stores value under key. It reports whether the key was new and whether
// an existing value changed.
func (s *LocaleStore) Set(key string, value string) (added bool, changed bool) {
	old, found := s.values[key]
	if !found {
		s.order = append(s.order, key)
		s.values[key] = value
		return true, true
	}
	s.values[key] = value
	return false, old != value
}

func (s *LocaleStore) Len() int {
	return len(s.order)
}

// Keys returns the keys in document order, or lexically sorted.
func (s *LocaleStore) Keys(sorted bool) []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	if sorted {
		sort.Strings(out)
	}
	return out
}

func (s *LocaleStore) reset() {
	s.order = nil
	s.values = map[string]string{}
}

// LoadStore reads the store at path. A file that does not exist gives an
// empty store and a nil error. A file that cannot be read or parsed gives an
// empty store together with a StoreError.
func LoadStore(backend Backend, path string) (*LocaleStore, error) {
	store := NewLocaleStore(path)
	format, err := codecFor(path)
	if err != nil {
		return store, newStoreError("parse", path, err)
	}
	data, err := backend.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return store, newStoreError("read", path, err)
	}
	if err := format.Decode(data, store); err != nil {
		store.reset()
		return store, newStoreError("parse", path, err)
	}
	return store, nil
}

// SaveStore serializes the store with the codec matching its extension and
// overwrites its file.
func SaveStore(backend Backend, store *LocaleStore, sorted bool) error {
	format, err := codecFor(store.Path)
	if err != nil {
		return newStoreError("write", store.Path, err)
	}
	data, err := format.Encode(store, sorted)
	if err != nil {
		return newStoreError("write", store.Path, err)
	}
	if err := backend.WriteFile(store.Path, data); err != nil {
		return newStoreError("write", store.Path, err)
	}
	return nil
}
