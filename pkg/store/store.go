// Package store persists mapping snapshots, one per mapping root.
//
// A root is a named mapping document such as "orders". Backends:
//   - memory: in-process map for tests and the HTTP server's scratch roots
//   - file: one JSON file per root, for the CLI
//   - redis: JSON values under a key prefix, for shared deployments
//   - mongo: one document per root
//
// [Persister] binds a store to one root and implements the mutation
// engine's persistence contract.
//
// # Usage
//
//	s, err := store.Open(ctx, store.Options{Backend: "file", Dir: dir})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	p, err := store.NewPersister(s, "orders")
//	engine := mutation.New(p, logger)
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/observability"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Load returns the snapshot of root. A missing root is a ROOT_NOT_FOUND error.
	Load(ctx context.Context, root string) (*schema.Snapshot, error)

	// Save replaces the snapshot of root.
	Save(ctx context.Context, root string, snap *schema.Snapshot) error

	// Delete removes root. Deleting a missing root is not an error.
	Delete(ctx context.Context, root string) error

	// List returns every stored root, sorted.
	List(ctx context.Context) ([]string, error)

	// Close releases backend connections.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Dir is the file backend's directory.
	Dir string

	RedisURL    string
	RedisPrefix string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(opts.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, RedisOptions{URL: opts.RedisURL, Prefix: opts.RedisPrefix})
	case BackendMongo:
		return NewMongoStore(ctx, MongoOptions{URI: opts.MongoURI, Database: opts.MongoDatabase, Collection: opts.MongoCollection})
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", opts.Backend)
}

// IsNotFound reports whether err means the root does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeRootNotFound)
}

func notFound(root string) error {
	return errors.New(errors.ErrCodeRootNotFound, "root %q not found", root)
}

func checkRoot(root string) error {
	return errors.ValidateRootName(root)
}

func encode(snap *schema.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "snapshot is nil")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*schema.Snapshot, error) {
	var snap schema.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "parse snapshot")
	}
	return &snap, nil
}

// storeErr tags backend failures that carry no code yet.
func storeErr(err error, format string, args ...any) error {
	if err == nil || errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeStore, err, format, args...)
}

func observeLoad(ctx context.Context, backend, root string, start time.Time, err error) {
	observability.Store().OnLoad(ctx, backend, root, time.Since(start), err)
}

func observeSave(ctx context.Context, backend, root string, size int, start time.Time, err error) {
	observability.Store().OnSave(ctx, backend, root, size, time.Since(start), err)
}
