package visibility

import (
	"strings"

	"github.com/matzehuels/datamapper/pkg/fqn"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// FilterInputs narrows input roots to the subtrees containing a case-insensitive
// match of term. Roots without any match are dropped. An empty term returns
// inputs unchanged.
func FilterInputs(inputs []*schema.IOType, term string) []*schema.IOType {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return inputs
	}
	out := make([]*schema.IOType, 0, len(inputs))
	for _, in := range inputs {
		if f := filterType(in, term); f != nil {
			out = append(out, f)
		}
	}
	return out
}

// FilterOutput narrows the output root like FilterInputs. The root itself is
// always retained so the output node stays on screen, possibly with no fields.
func FilterOutput(output *schema.IOType, term string) *schema.IOType {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || output == nil {
		return output
	}
	if f := filterType(output, term); f != nil {
		return f
	}
	empty := *output
	empty.Fields = nil
	if output.Member != nil {
		m := *output.Member
		m.Fields = nil
		empty.Member = &m
	}
	return &empty
}

// filterType returns t pruned to matching subtrees, or nil when nothing below
// t matches. A matching node keeps its whole subtree.
func filterType(t *schema.IOType, term string) *schema.IOType {
	if t == nil {
		return nil
	}
	if matches(t.Name(), term) {
		return t
	}
	switch t.Kind {
	case schema.KindRecord:
		var fields []*schema.IOType
		for _, f := range t.Fields {
			if ff := filterType(f, term); ff != nil {
				fields = append(fields, ff)
			}
		}
		if len(fields) == 0 {
			return nil
		}
		c := *t
		c.Fields = fields
		return &c
	case schema.KindArray:
		if t.Member == nil || t.Member.Kind != schema.KindRecord {
			return nil
		}
		m := filterType(&schema.IOType{ID: "", Kind: schema.KindRecord, Fields: t.Member.Fields}, term)
		if m == nil {
			return nil
		}
		member := *t.Member
		member.Fields = m.Fields
		c := *t
		c.Member = &member
		return &c
	}
	return nil
}

// FilterMappings keeps a mapping when the last segment of its output matches
// term, or when any nested element mapping matches. Element buckets are kept
// in place, possibly emptied, so positions stay meaningful. An empty term
// returns ms unchanged.
func FilterMappings(ms []schema.Mapping, term string) []schema.Mapping {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return ms
	}
	return filterMappings(ms, term)
}

func filterMappings(ms []schema.Mapping, term string) []schema.Mapping {
	var out []schema.Mapping
	for _, m := range ms {
		if matches(fqn.Last(m.Output), term) {
			out = append(out, m)
			continue
		}
		if len(m.Elements) == 0 {
			continue
		}
		elems := make([]schema.Element, len(m.Elements))
		kept := false
		for i, e := range m.Elements {
			elems[i].Mappings = filterMappings(e.Mappings, term)
			kept = kept || len(elems[i].Mappings) > 0
		}
		if kept {
			c := m
			c.Elements = elems
			out = append(out, c)
		}
	}
	return out
}

func matches(name, term string) bool {
	return strings.Contains(strings.ToLower(name), term)
}
