package observability

import (
	"context"
	"sync"
	"time"
)

// BuildHooks observes graph rebuilds of one root.
type BuildHooks interface {
	OnBuildStart(ctx context.Context, root string)
	OnBuildComplete(ctx context.Context, root string, nodes, links, errs int, duration time.Duration)
}

// MutationHooks observes structural edits. op is the engine operation
// ("create", "delete", "add-element", ...) and target the path it addresses.
type MutationHooks interface {
	OnMutationStart(ctx context.Context, op, target string)
	// OnMutationComplete fires once per OnMutationStart; err is nil on success.
	OnMutationComplete(ctx context.Context, op, target string, duration time.Duration, err error)
}

// StoreHooks observes snapshot reads and writes, tagged with the backend name.
type StoreHooks interface {
	OnLoad(ctx context.Context, backend, root string, duration time.Duration, err error)
	OnSave(ctx context.Context, backend, root string, size int, duration time.Duration, err error)
}

// CacheHooks observes artifact cache traffic. keyType is the artifact format.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string) {}

func (NoopBuildHooks) OnBuildComplete(context.Context, string, int, int, int, time.Duration) {}

type NoopMutationHooks struct{}

func (NoopMutationHooks) OnMutationStart(context.Context, string, string) {}

func (NoopMutationHooks) OnMutationComplete(context.Context, string, string, time.Duration, error) {}

type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, time.Duration, error) {}

func (NoopStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string) {}

func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}

func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// slot holds the current implementation of one hook family.
type slot[T any] struct {
	mu  sync.RWMutex
	cur T
	def T
}

func newSlot[T any](def T) *slot[T] {
	return &slot[T]{cur: def, def: def}
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// set installs h; a nil h leaves the slot unchanged.
func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.def
	s.mu.Unlock()
}

var (
	buildSlot    = newSlot[BuildHooks](NoopBuildHooks{})
	mutationSlot = newSlot[MutationHooks](NoopMutationHooks{})
	storeSlot    = newSlot[StoreHooks](NoopStoreHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
)

func SetBuildHooks(h BuildHooks)       { buildSlot.set(h) }
func SetMutationHooks(h MutationHooks) { mutationSlot.set(h) }
func SetStoreHooks(h StoreHooks)       { storeSlot.set(h) }
func SetCacheHooks(h CacheHooks)       { cacheSlot.set(h) }

func Build() BuildHooks       { return buildSlot.get() }
func Mutation() MutationHooks { return mutationSlot.get() }
func Store() StoreHooks       { return storeSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }

// Reset puts every family back to its no-op implementation.
func Reset() {
	buildSlot.reset()
	mutationSlot.reset()
	storeSlot.reset()
	cacheSlot.reset()
}
