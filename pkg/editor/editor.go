package editor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/datamapper/pkg/diagram"
	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/mutation"
	"github.com/matzehuels/datamapper/pkg/observability"
	"github.com/matzehuels/datamapper/pkg/schema"
	"github.com/matzehuels/datamapper/pkg/store"
	"github.com/matzehuels/datamapper/pkg/visibility"
)

// Replacer is implemented by persisters that accept whole snapshots, such
// as [store.Persister].
type Replacer interface {
	Replace(ctx context.Context, snap *schema.Snapshot) (*schema.Snapshot, error)
}

// RebuildFunc observes every newly built graph.
type RebuildFunc func(g *diagram.Graph, revision string)

// Options configures an Editor.
type Options struct {
	Logger *log.Logger
	// Visibility seeds the view state. The editor keeps its own copy.
	Visibility *visibility.State
}

// Editor owns one mapping root.
type Editor struct {
	id     string
	root   string
	engine *mutation.Engine
	p      mutation.Persister
	logger *log.Logger

	mu        sync.Mutex
	snap      *schema.Snapshot
	vis       *visibility.State
	graph     *diagram.Graph
	busy      bool
	stale     bool
	observers []RebuildFunc
}

// New creates an editor for root starting from snap and builds its first graph.
func New(root string, snap *schema.Snapshot, p mutation.Persister, opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	vis := visibility.New()
	if opts.Visibility != nil {
		vis = opts.Visibility.Clone()
	}
	e := &Editor{
		id:     uuid.NewString(),
		root:   root,
		engine: mutation.New(p, logger),
		p:      p,
		logger: logger.With("root", root),
		snap:   snap,
		vis:    vis,
	}
	e.graph = e.build(context.Background())
	return e
}

// Open loads root from s and returns an editor persisting through it.
func Open(ctx context.Context, s store.Store, root string, opts Options) (*Editor, error) {
	p, err := store.NewPersister(s, root)
	if err != nil {
		return nil, err
	}
	snap, err := s.Load(ctx, root)
	if err != nil {
		return nil, err
	}
	return New(root, snap, p, opts), nil
}

// ID returns the session id.
func (e *Editor) ID() string { return e.id }

// Root returns the mapping root name.
func (e *Editor) Root() string { return e.root }

// Snapshot returns the current snapshot. Callers must not modify it.
func (e *Editor) Snapshot() *schema.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// Graph returns the last built graph. While a mutation is in flight this
// may lag behind the snapshot and visibility state.
func (e *Editor) Graph() *diagram.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// Visibility returns a copy of the view state.
func (e *Editor) Visibility() *visibility.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vis.Clone()
}

// Busy reports whether a mutation is in flight.
func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// OnRebuild registers fn to receive every new graph.
func (e *Editor) OnRebuild(fn RebuildFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Replace swaps in a snapshot that changed outside the editor.
func (e *Editor) Replace(ctx context.Context, snap *schema.Snapshot) {
	e.update(ctx, func() { e.snap = snap })
}

// Import stores snap as the root's new snapshot and applies it. Persisters
// that are not a [Replacer] only update the session.
func (e *Editor) Import(ctx context.Context, snap *schema.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	r, ok := e.p.(Replacer)
	if !ok {
		e.Replace(ctx, snap.Clone())
		return nil
	}
	return e.mutate(ctx, func(context.Context, *schema.Snapshot) (*schema.Snapshot, error) {
		return r.Replace(ctx, snap)
	})
}

// Toggle flips the collapsed state of the port at (path, dir) and returns
// the new state.
func (e *Editor) Toggle(ctx context.Context, path string, dir schema.Direction) (bool, error) {
	var (
		collapsed bool
		err       error
	)
	e.update(ctx, func() {
		p, ok := e.graph.Port(path, dir)
		if !ok {
			err = errors.New(errors.ErrCodeNotFound, "port %s not found", diagram.PortID(path, dir))
			return
		}
		collapsed = e.vis.Toggle(path, dir, p.Kind)
	})
	return collapsed, err
}

// Search sets both search terms.
func (e *Editor) Search(ctx context.Context, input, output string) {
	e.update(ctx, func() {
		e.vis.SetInputSearch(input)
		e.vis.SetOutputSearch(output)
	})
}

// ResetView clears collapsed fields and search terms.
func (e *Editor) ResetView(ctx context.Context) {
	e.update(ctx, func() { e.vis.Reset() })
}

// CreateMapping maps source onto target.
func (e *Editor) CreateMapping(ctx context.Context, source, target string) error {
	return e.mutate(ctx, func(ctx context.Context, snap *schema.Snapshot) (*schema.Snapshot, error) {
		return e.engine.CreateMapping(ctx, snap, source, target)
	})
}

// DeleteMapping removes the mapping at path and everything below it.
func (e *Editor) DeleteMapping(ctx context.Context, path string) error {
	return e.mutate(ctx, func(ctx context.Context, snap *schema.Snapshot) (*schema.Snapshot, error) {
		return e.engine.DeleteMapping(ctx, snap, path)
	})
}

// AddArrayElement appends an element to the output array at path.
func (e *Editor) AddArrayElement(ctx context.Context, path string) error {
	return e.mutate(ctx, func(ctx context.Context, snap *schema.Snapshot) (*schema.Snapshot, error) {
		return e.engine.AddArrayElement(ctx, snap, path)
	})
}

// UpdateExpression replaces the expression of the mapping at output.
func (e *Editor) UpdateExpression(ctx context.Context, output, expr string) error {
	return e.mutate(ctx, func(ctx context.Context, snap *schema.Snapshot) (*schema.Snapshot, error) {
		return e.engine.UpdateExpression(ctx, snap, output, expr)
	})
}

// Reset removes every mapping.
func (e *Editor) Reset(ctx context.Context) error {
	return e.mutate(ctx, func(ctx context.Context, snap *schema.Snapshot) (*schema.Snapshot, error) {
		return e.engine.Reset(ctx, snap)
	})
}

// update applies fn under the lock and rebuilds unless a mutation is in flight.
func (e *Editor) update(ctx context.Context, fn func()) {
	e.mu.Lock()
	fn()
	if e.busy {
		e.stale = true
		e.mu.Unlock()
		return
	}
	g, rev, obs := e.rebuildLocked(ctx)
	e.mu.Unlock()
	notify(obs, g, rev)
}

func (e *Editor) mutate(ctx context.Context, fn func(context.Context, *schema.Snapshot) (*schema.Snapshot, error)) error {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return errors.New(errors.ErrCodeMutationInFlight, "a mutation on %q is already in flight", e.root)
	}
	e.busy = true
	snap := e.snap
	e.mu.Unlock()

	next, err := fn(ctx, snap)

	e.mu.Lock()
	e.busy = false
	if err != nil {
		e.logger.Debug("mutation failed", "err", err)
		if !e.stale {
			e.mu.Unlock()
			return err
		}
	} else {
		e.snap = next
	}
	g, rev, obs := e.rebuildLocked(ctx)
	e.mu.Unlock()
	notify(obs, g, rev)
	return err
}

func (e *Editor) rebuildLocked(ctx context.Context) (*diagram.Graph, string, []RebuildFunc) {
	e.stale = false
	e.graph = e.build(ctx)
	return e.graph, e.revision(), append([]RebuildFunc(nil), e.observers...)
}

func (e *Editor) build(ctx context.Context) *diagram.Graph {
	start := time.Now()
	observability.Build().OnBuildStart(ctx, e.root)
	g := diagram.Build(e.snap, e.vis)
	elapsed := time.Since(start)
	observability.Build().OnBuildComplete(ctx, e.root, len(g.Nodes), len(g.Links), len(g.Errors), elapsed)
	e.logger.Debug("graph built", "revision", e.revision(), "nodes", len(g.Nodes), "links", len(g.Links), "errors", len(g.Errors), "elapsed", elapsed)
	return g
}

func (e *Editor) revision() string {
	if e.snap == nil {
		return ""
	}
	return e.snap.Revision
}

func notify(obs []RebuildFunc, g *diagram.Graph, rev string) {
	for _, fn := range obs {
		fn(g, rev)
	}
}
