package mutation

import (
	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/fqn"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// pruner removes a mapping subtree and compacts the element buckets it empties.
type pruner struct {
	path      fqn.Path
	root      string
	arrayRoot bool
	removed   int
}

// prune returns a copy of snap's mappings without any mapping whose output has
// path as a segment-wise prefix.
func prune(snap *schema.Snapshot, path string) ([]schema.Mapping, error) {
	if snap == nil {
		return nil, errors.Conflict("no snapshot loaded")
	}
	p, err := fqn.Parse(path)
	if err != nil {
		return nil, err
	}
	pr := &pruner{
		path:      p,
		root:      fqn.OutputRoot(snap.Output),
		arrayRoot: snap.Output != nil && snap.Output.Kind == schema.KindArray,
	}
	ms := pr.prune(snap.Mappings)
	if pr.removed == 0 {
		return nil, errors.Conflict("no mapping at %s", path)
	}
	if ms == nil {
		ms = []schema.Mapping{}
	}
	return ms, nil
}

func (pr *pruner) matches(output string) bool {
	p, err := fqn.Parse(output)
	if err != nil {
		return false
	}
	return p.HasPrefix(pr.path)
}

func (pr *pruner) prune(ms []schema.Mapping) []schema.Mapping {
	var out []schema.Mapping
	for _, m := range ms {
		if pr.matches(m.Output) {
			pr.removed++
			continue
		}
		m = m.Clone()
		if len(m.Elements) > 0 {
			before := pr.removed
			m.Elements = pr.pruneElements(m)
			if pr.removed > before && len(m.Elements) == 0 && len(m.Inputs) == 0 {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// pruneElements rebuilds the buckets of array mapping m bottom-up. Buckets the
// deletion emptied are dropped and later buckets shift down.
func (pr *pruner) pruneElements(m schema.Mapping) []schema.Element {
	var out []schema.Element
	for i, e := range m.Elements {
		if pr.matches(pr.elementPath(m.Output, i)) {
			// The bucket itself is addressed, even when it is empty.
			pr.removed++
			continue
		}
		before := pr.removed
		kept := pr.prune(e.Mappings)
		if pr.removed > before && len(kept) == 0 {
			continue
		}
		if j := len(out); j != i {
			from, to := pr.elementPath(m.Output, i), pr.elementPath(m.Output, j)
			kept = renumber(kept, from, to)
		}
		if kept == nil {
			kept = []schema.Mapping{}
		}
		out = append(out, schema.Element{Mappings: kept})
	}
	return out
}

// elementPath addresses element i of the array mapped at output.
func (pr *pruner) elementPath(output string, i int) string {
	if pr.arrayRoot && fqn.Same(output, pr.root) {
		return fqn.Index(i).String()
	}
	return fqn.ChildPath(output, "", i)
}

// renumber rewrites outputs below from so they sit below to.
func renumber(ms []schema.Mapping, from, to string) []schema.Mapping {
	for i := range ms {
		if out, ok := fqn.Rebase(ms[i].Output, from, to); ok {
			ms[i].Output = out
		}
		for j := range ms[i].Elements {
			ms[i].Elements[j].Mappings = renumber(ms[i].Elements[j].Mappings, from, to)
		}
	}
	return ms
}
