package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/datamapper/pkg/fqn"
	"github.com/matzehuels/datamapper/pkg/mutation"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// Persister applies mapping edits to one root of a store.
type Persister struct {
	mu    sync.Mutex
	store Store
	root  string
}

// NewPersister binds s to root.
func NewPersister(s Store, root string) (*Persister, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}
	return &Persister{store: s, root: root}, nil
}

// Root returns the bound root name.
func (p *Persister) Root() string { return p.root }

// ApplyModifications replaces the root's mapping list with ms.
func (p *Persister) ApplyModifications(ctx context.Context, ms []schema.Mapping) (*schema.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, err := p.store.Load(ctx, p.root)
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, cur.WithMappings(ms))
}

// AddArrayElement appends an empty element to the array mapping at path.
func (p *Persister) AddArrayElement(ctx context.Context, path string) (*schema.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, err := p.store.Load(ctx, p.root)
	if err != nil {
		return nil, err
	}
	ms, err := mutation.AppendElement(cur, path)
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, cur.WithMappings(ms))
}

// Replace stores snap as the root's snapshot, as when a new schema is imported.
func (p *Persister) Replace(ctx context.Context, snap *schema.Snapshot) (*schema.Snapshot, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commit(ctx, snap.Clone())
}

func (p *Persister) commit(ctx context.Context, next *schema.Snapshot) (*schema.Snapshot, error) {
	Diagnose(next)
	next.Revision = uuid.NewString()
	if err := p.store.Save(ctx, p.root, next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

var _ mutation.Persister = (*Persister)(nil)

// Diagnostic messages owned by Diagnose. Other diagnostics are left alone.
const (
	unresolvedInput = "unresolved input "
	unknownOutput   = "unknown output "
)

// Diagnose recomputes the path diagnostics of every mapping in snap: inputs
// that no input schema provides and outputs that the output schema lacks.
func Diagnose(snap *schema.Snapshot) {
	schema.Walk(snap.Mappings, func(m *schema.Mapping) bool {
		kept := m.Diagnostics[:0:0]
		for _, d := range m.Diagnostics {
			if !strings.HasPrefix(d.Message, unresolvedInput) && !strings.HasPrefix(d.Message, unknownOutput) {
				kept = append(kept, d)
			}
		}
		if _, ok := fqn.LookupOutput(snap.Output, m.Output); !ok {
			kept = append(kept, schema.Diagnostic{Severity: schema.SeverityError, Message: unknownOutput + m.Output})
		}
		for _, in := range m.Inputs {
			if _, ok := fqn.LookupInput(snap.Inputs, in); !ok {
				kept = append(kept, schema.Diagnostic{Severity: schema.SeverityError, Message: unresolvedInput + in})
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		m.Diagnostics = kept
		return true
	})
}
