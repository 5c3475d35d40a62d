package visibility

import (
	"reflect"
	"testing"

	"github.com/matzehuels/datamapper/pkg/schema"
)

func TestIsCollapsedDefaults(t *testing.T) {
	s := New()

	if s.IsCollapsed("person", schema.In) {
		t.Error("IN ports should default to expanded")
	}
	if !s.IsCollapsed("input.items", schema.Out) {
		t.Error("OUT ports should default to collapsed")
	}
	if s.IsPortCollapsed("input.person", schema.Out, schema.KindRecord) {
		t.Error("source records should default to expanded")
	}
	if !s.IsPortCollapsed("input.items", schema.Out, schema.KindArray) {
		t.Error("source arrays should default to collapsed")
	}
	if s.IsPortCollapsed("items", schema.In, schema.KindArray) {
		t.Error("target arrays should default to expanded")
	}
}

func TestCollapseExpand(t *testing.T) {
	s := New()

	s.Collapse("person")
	if !s.IsCollapsed("person", schema.In) {
		t.Error("Collapse should collapse the IN port")
	}
	if !s.IsCollapsed("person", schema.Out) {
		t.Error("Collapse should leave the OUT port collapsed")
	}

	s.Expand("person")
	if s.IsCollapsed("person", schema.In) || s.IsCollapsed("person", schema.Out) {
		t.Error("Expand should expand both directions")
	}
	if got := s.CollapsedFields(); len(got) != 0 {
		t.Errorf("CollapsedFields = %v, want empty", got)
	}
	if got := s.ExpandedFields(); !reflect.DeepEqual(got, []string{"person"}) {
		t.Errorf("ExpandedFields = %v, want [person]", got)
	}
}

func TestToggle(t *testing.T) {
	s := New()

	if collapsed := s.Toggle("input.items", schema.Out, schema.KindArray); collapsed {
		t.Error("toggling a collapsed source array should expand it")
	}
	if s.IsPortCollapsed("input.items", schema.Out, schema.KindArray) {
		t.Error("source array should now be expanded")
	}
	if collapsed := s.Toggle("input.items", schema.Out, schema.KindArray); !collapsed {
		t.Error("second toggle should collapse again")
	}
	if collapsed := s.Toggle("items", schema.In, schema.KindArray); !collapsed {
		t.Error("toggling an expanded target should collapse it")
	}
}

func TestCloneAndKey(t *testing.T) {
	s := New()
	s.Collapse("b")
	s.Collapse("a")
	s.Expand("input.items")
	s.SetInputSearch("  Name ")

	c := s.Clone()
	if c.Key() != s.Key() {
		t.Errorf("clone key = %q, want %q", c.Key(), s.Key())
	}
	c.Expand("a")
	if c.Key() == s.Key() {
		t.Error("clone should be independent")
	}
	if s.InputSearch() != "Name" {
		t.Errorf("InputSearch = %q, want trimmed", s.InputSearch())
	}
	if want := "c=a,b;e=input.items;i=Name;o="; s.Key() != want {
		t.Errorf("Key = %q, want %q", s.Key(), want)
	}

	s.Reset()
	if s.Key() != New().Key() {
		t.Error("Reset should restore the empty state")
	}
}
