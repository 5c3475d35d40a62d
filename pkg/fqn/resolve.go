package fqn

import (
	"github.com/matzehuels/datamapper/pkg/schema"
)

// Resolve returns the first top-level mapping whose output equals path after
// quote stripping.
func Resolve(mappings []schema.Mapping, path string) (*schema.Mapping, bool) {
	want := Unquote(path)
	for i := range mappings {
		if Unquote(mappings[i].Output) == want {
			return &mappings[i], true
		}
	}
	return nil, false
}

// Find is like Resolve but also descends into nested element mappings.
// Top-level matches win over nested ones at the same depth-first position.
func Find(mappings []schema.Mapping, path string) (*schema.Mapping, bool) {
	want := Unquote(path)
	var found *schema.Mapping
	schema.Walk(mappings, func(m *schema.Mapping) bool {
		if Unquote(m.Output) == want {
			found = m
			return false
		}
		return true
	})
	return found, found != nil
}

// Lookup walks the schema tree below root along path. Index segments step into
// an array's member type; name segments select record fields. An empty path
// returns root itself.
func Lookup(root *schema.IOType, path string) (*schema.IOType, bool) {
	if root == nil {
		return nil, false
	}
	if path == "" {
		return root, true
	}
	p, err := Parse(path)
	if err != nil {
		return nil, false
	}
	return lookupPath(root, p)
}

func lookupPath(t *schema.IOType, p Path) (*schema.IOType, bool) {
	for _, s := range p {
		switch {
		case s.IsIndex():
			if t.Kind != schema.KindArray || t.Member == nil {
				return nil, false
			}
			t = t.Member
		case t.Kind == schema.KindRecord:
			t = t.Field(s.Name)
			if t == nil {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return t, true
}

// LookupInput resolves a rooted input path such as "input.person.name"
// against the snapshot's input roots.
func LookupInput(inputs []*schema.IOType, path string) (*schema.IOType, bool) {
	p, err := Parse(path)
	if err != nil {
		return nil, false
	}
	for _, in := range inputs {
		if in.Name() == p[0].Name {
			return lookupPath(in, p[1:])
		}
	}
	return nil, false
}

// LookupOutput resolves an output path. Output paths are relative to the
// output root; the root itself is addressed by [OutputRoot].
func LookupOutput(root *schema.IOType, path string) (*schema.IOType, bool) {
	if root == nil {
		return nil, false
	}
	if Same(path, OutputRoot(root)) {
		return root, true
	}
	return Lookup(root, path)
}

// OutputRoot returns the path that addresses the output root itself. That is
// the root's name, unless a top-level field carries the same name: relative
// field paths take precedence and the root falls back to the empty path.
func OutputRoot(root *schema.IOType) string {
	if root == nil {
		return ""
	}
	name := root.Name()
	if root.Kind == schema.KindRecord && root.Field(name) != nil {
		return ""
	}
	return name
}
