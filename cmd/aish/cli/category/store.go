package category

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

var _ Store = (*FileStore)(nil)

// FileStore persists assignments as a TOML table in a single file.
// Writes are atomic (temp file + rename) so a crash mid-write never
// corrupts the map.
type FileStore struct {
	path string

	mu sync.RWMutex
	m  map[string]Kind
}

type storeFile struct {
	Commands map[string]string `toml:"commands"`
}

// OpenFileStore loads (or initializes) the store at path.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, m: make(map[string]Kind)}

	data, err := os.ReadFile(path) //nolint:gosec // fixed path under user config dir
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read category store: %w", err)
	}

	var f storeFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for sig, raw := range f.Commands {
		k, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("category store %s: %w", path, err)
		}
		s.m[sig] = k
	}
	return s, nil
}

// Lookup implements Store.
func (s *FileStore) Lookup(signature string) (Kind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.m[signature]
	return k, ok
}

// Store implements Store.
func (s *FileStore) Store(signature string, k Kind) error {
	if signature == "" {
		return errors.New("empty command signature")
	}
	if !k.Valid() {
		return fmt.Errorf("invalid category %q", k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[signature] = k
	return s.saveLocked()
}

// Forget removes an assignment. Removing an absent signature is not an
// error; reports whether an entry existed.
func (s *FileStore) Forget(signature string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[signature]; !ok {
		return false, nil
	}
	delete(s.m, signature)
	return true, s.saveLocked()
}

// List returns all assignments sorted by signature.
func (s *FileStore) List() []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Assignment, 0, len(s.m))
	for sig, k := range s.m {
		out = append(out, Assignment{Signature: sig, Category: k})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Signature < out[j].Signature })
	return out
}

// Assignment is one signature→category entry.
type Assignment struct {
	Signature string
	Category  Kind
}

func (s *FileStore) saveLocked() error {
	f := storeFile{Commands: make(map[string]string, len(s.m))}
	for sig, k := range s.m {
		f.Commands[sig] = string(k)
	}

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal category store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write category store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename category store: %w", err)
	}
	return nil
}
