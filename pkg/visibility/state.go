// Package visibility holds the transient view state of a mapping editor:
// which fields are collapsed or expanded and the current search terms.
//
// The state is independent of schema and mapping snapshots. It lives as long
// as the editor session, is mutated by user interaction, and is never
// persisted. A State is not safe for concurrent use; the owning editor
// serializes access.
package visibility

import (
	"slices"
	"strings"

	"github.com/matzehuels/datamapper/pkg/schema"
)

// State tracks collapsed/expanded field paths and search terms.
//
// Records default to expanded and are collapsed by listing them in the
// collapsed set. Arrays default to collapsed on the source side and are
// expanded by listing them in the expanded set.
type State struct {
	collapsed map[string]struct{}
	expanded  map[string]struct{}

	inputSearch  string
	outputSearch string
}

// New returns an empty state: records expanded, source arrays collapsed, no search.
func New() *State {
	return &State{
		collapsed: make(map[string]struct{}),
		expanded:  make(map[string]struct{}),
	}
}

// IsCollapsed reports whether the port at path is collapsed. Target (IN)
// ports collapse when path is in the collapsed set; source and header (OUT)
// ports collapse unless path is in the expanded set.
func (s *State) IsCollapsed(path string, dir schema.Direction) bool {
	if dir == schema.In {
		_, ok := s.collapsed[path]
		return ok
	}
	_, ok := s.expanded[path]
	return !ok
}

// IsPortCollapsed is the shape-aware variant used by the graph builder.
// Source arrays follow the OUT rule of IsCollapsed and start collapsed; every
// other port follows the collapsed set and starts expanded.
func (s *State) IsPortCollapsed(path string, dir schema.Direction, kind schema.Kind) bool {
	if dir == schema.Out && kind == schema.KindArray {
		return s.IsCollapsed(path, schema.Out)
	}
	return s.IsCollapsed(path, schema.In)
}

// Collapse marks path collapsed in both sets.
func (s *State) Collapse(path string) {
	delete(s.expanded, path)
	s.collapsed[path] = struct{}{}
}

// Expand marks path expanded in both sets.
func (s *State) Expand(path string) {
	delete(s.collapsed, path)
	s.expanded[path] = struct{}{}
}

// Toggle flips the port at path and returns its new collapsed state.
func (s *State) Toggle(path string, dir schema.Direction, kind schema.Kind) bool {
	if s.IsPortCollapsed(path, dir, kind) {
		s.Expand(path)
		return false
	}
	s.Collapse(path)
	return true
}

// CollapsedFields returns the collapsed set, sorted.
func (s *State) CollapsedFields() []string { return sortedKeys(s.collapsed) }

// ExpandedFields returns the expanded set, sorted.
func (s *State) ExpandedFields() []string { return sortedKeys(s.expanded) }

// SetInputSearch sets the term used to filter input schema trees.
func (s *State) SetInputSearch(term string) { s.inputSearch = strings.TrimSpace(term) }

// SetOutputSearch sets the term used to filter the output schema tree and mappings.
func (s *State) SetOutputSearch(term string) { s.outputSearch = strings.TrimSpace(term) }

// InputSearch returns the input search term.
func (s *State) InputSearch() string { return s.inputSearch }

// OutputSearch returns the output search term.
func (s *State) OutputSearch() string { return s.outputSearch }

// Reset clears both sets and both search terms.
func (s *State) Reset() {
	clear(s.collapsed)
	clear(s.expanded)
	s.inputSearch, s.outputSearch = "", ""
}

// Clone returns an independent copy of s.
func (s *State) Clone() *State {
	c := New()
	for k := range s.collapsed {
		c.collapsed[k] = struct{}{}
	}
	for k := range s.expanded {
		c.expanded[k] = struct{}{}
	}
	c.inputSearch, c.outputSearch = s.inputSearch, s.outputSearch
	return c
}

// Key returns a canonical string for s, suitable as part of a cache key.
func (s *State) Key() string {
	var b strings.Builder
	b.WriteString("c=")
	b.WriteString(strings.Join(s.CollapsedFields(), ","))
	b.WriteString(";e=")
	b.WriteString(strings.Join(s.ExpandedFields(), ","))
	b.WriteString(";i=")
	b.WriteString(s.inputSearch)
	b.WriteString(";o=")
	b.WriteString(s.outputSearch)
	return b.String()
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
