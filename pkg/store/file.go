package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/datamapper/pkg/schema"
)

// FileStore is a file-based snapshot store for CLI use.
// Each root is stored as <dir>/<root>.json with 0600 permissions.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/datamapper/roots/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns the default file store directory.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "datamapper", "roots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "datamapper", "roots"), nil
}

func (s *FileStore) rootPath(root string) string {
	return filepath.Join(s.baseDir, root+".json")
}

func (s *FileStore) Load(ctx context.Context, root string) (snap *schema.Snapshot, err error) {
	defer func(start time.Time) { observeLoad(ctx, BackendFile, root, start, err) }(time.Now())

	if err := checkRoot(root); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.rootPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(root)
		}
		return nil, storeErr(err, "read %s", root)
	}
	return decode(data)
}

func (s *FileStore) Save(ctx context.Context, root string, snap *schema.Snapshot) (err error) {
	var size int
	defer func(start time.Time) { observeSave(ctx, BackendFile, root, size, start, err) }(time.Now())

	if err := checkRoot(root); err != nil {
		return err
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	size = len(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so readers never see a partial file.
	tmp := s.rootPath(root) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return storeErr(err, "write %s", root)
	}
	if err := os.Rename(tmp, s.rootPath(root)); err != nil {
		os.Remove(tmp)
		return storeErr(err, "write %s", root)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, root string) error {
	if err := checkRoot(root); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.rootPath(root)); err != nil && !os.IsNotExist(err) {
		return storeErr(err, "remove %s", root)
	}
	return nil
}

func (s *FileStore) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, storeErr(err, "read store dir")
	}
	var roots []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		roots = append(roots, strings.TrimSuffix(entry.Name(), ".json"))
	}
	slices.Sort(roots)
	return roots, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for snapshot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
