package mutation

import (
	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/fqn"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// placer inserts one mapping into a cloned mapping tree.
type placer struct {
	target fqn.Path
	root   string
	fresh  schema.Mapping
	update func(m *schema.Mapping) error
}

// place returns a copy of snap's mappings with fresh placed at target, or
// with update applied to the mapping already there.
func place(snap *schema.Snapshot, target string, fresh schema.Mapping, update func(m *schema.Mapping) error) ([]schema.Mapping, error) {
	p := &placer{root: fqn.OutputRoot(snap.Output), fresh: fresh, update: update}
	if fqn.Same(target, p.root) {
		p.target = nil
	} else {
		t, err := fqn.Parse(target)
		if err != nil {
			return nil, err
		}
		p.target = t
	}
	return p.place(schema.CloneMappings(snap.Mappings), 0)
}

// output renders the first n target segments as a mapping output. Zero
// segments address the output root.
func (p *placer) output(n int) string {
	if n == 0 {
		return p.root
	}
	return p.target[:n].String()
}

// place works on the mapping list of one scope. depth is the number of target
// segments the scope already accounts for: zero at the top level, and the
// element path length inside an element bucket.
func (p *placer) place(list []schema.Mapping, depth int) ([]schema.Mapping, error) {
	for n := len(p.target); n >= depth; n-- {
		i, ok := indexOf(list, p.output(n))
		if !ok {
			continue
		}
		if n == len(p.target) {
			if err := p.update(&list[i]); err != nil {
				return nil, err
			}
			return list, nil
		}

		seg := p.target[n]
		if !seg.IsIndex() {
			return append(list, p.fresh), nil
		}
		m := &list[i]
		switch {
		case seg.Index < len(m.Elements):
		case seg.Index == len(m.Elements):
			m.Elements = append(m.Elements, schema.Element{})
		default:
			return nil, errors.Conflict("%s has %d elements, cannot create index %d", m.Output, len(m.Elements), seg.Index)
		}
		e := &m.Elements[seg.Index]
		ms, err := p.place(e.Mappings, n+1)
		if err != nil {
			return nil, err
		}
		e.Mappings = ms
		return list, nil
	}

	// Nothing in this scope covers the target. Create the array mapping that
	// encloses the next index segment, or assign directly if there is none.
	for n := depth; n < len(p.target); n++ {
		if p.target[n].IsIndex() {
			list = append(list, schema.Mapping{
				Output:     p.output(n),
				Expression: schema.DefaultValue(schema.KindArray),
			})
			return p.place(list, depth)
		}
	}
	return append(list, p.fresh), nil
}

func indexOf(list []schema.Mapping, output string) (int, bool) {
	for i := range list {
		if fqn.Same(list[i].Output, output) {
			return i, true
		}
	}
	return 0, false
}

// AppendElement returns a copy of snap's mappings with one empty element
// bucket appended to the array mapping at path. A missing array mapping is
// created with the default array expression.
func AppendElement(snap *schema.Snapshot, path string) ([]schema.Mapping, error) {
	if snap == nil {
		return nil, errors.Conflict("no snapshot loaded")
	}
	fresh := schema.Mapping{
		Output:     path,
		Expression: schema.DefaultValue(schema.KindArray),
		Elements:   []schema.Element{{Mappings: []schema.Mapping{}}},
	}
	return place(snap, path, fresh, func(m *schema.Mapping) error {
		m.Elements = append(m.Elements, schema.Element{Mappings: []schema.Mapping{}})
		return nil
	})
}
