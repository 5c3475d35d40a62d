package fqn

import (
	"testing"

	"github.com/matzehuels/datamapper/pkg/schema"
)

func testOutput() *schema.IOType {
	return &schema.IOType{
		ID: "output", Kind: schema.KindRecord,
		Fields: []*schema.IOType{
			{ID: "name", Kind: schema.KindString},
			{ID: "items", Kind: schema.KindArray, Member: &schema.IOType{
				ID: "item", Kind: schema.KindRecord,
				Fields: []*schema.IOType{{ID: "qty", Kind: schema.KindInt}},
			}},
			{ID: "first name", Kind: schema.KindString},
		},
	}
}

func TestResolve(t *testing.T) {
	ms := []schema.Mapping{
		{Output: "name", Expression: "a"},
		{Output: `"first name"`, Expression: "b"},
		{Output: "name", Expression: "shadowed"},
		{Output: "items", Elements: []schema.Element{{Mappings: []schema.Mapping{{Output: "items.0.qty", Expression: "c"}}}}},
	}

	m, ok := Resolve(ms, "name")
	if !ok || m.Expression != "a" {
		t.Errorf("Resolve(name) = %+v, %v; want first match", m, ok)
	}
	m, ok = Resolve(ms, "first name")
	if !ok || m.Expression != "b" {
		t.Errorf("Resolve should match quote-stripped outputs, got %+v, %v", m, ok)
	}
	if _, ok := Resolve(ms, "items.0.qty"); ok {
		t.Error("Resolve should not descend into elements")
	}
	m, ok = Find(ms, "items.0.qty")
	if !ok || m.Expression != "c" {
		t.Errorf("Find(items.0.qty) = %+v, %v", m, ok)
	}
	if _, ok := Resolve(ms, "missing"); ok {
		t.Error("Resolve(missing) should report none")
	}
}

func TestLookup(t *testing.T) {
	out := testOutput()
	tests := []struct {
		path string
		kind schema.Kind
		ok   bool
	}{
		{"name", schema.KindString, true},
		{"items", schema.KindArray, true},
		{"items.3", schema.KindRecord, true},
		{"items.3.qty", schema.KindInt, true},
		{`"first name"`, schema.KindString, true},
		{"output", schema.KindRecord, true},
		{"items.qty", "", false},
		{"name.x", "", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		got, ok := LookupOutput(out, tt.path)
		if ok != tt.ok {
			t.Errorf("LookupOutput(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			continue
		}
		if ok && got.Kind != tt.kind {
			t.Errorf("LookupOutput(%q) kind = %v, want %v", tt.path, got.Kind, tt.kind)
		}
	}

	inputs := []*schema.IOType{{ID: "input", Kind: schema.KindRecord, Fields: []*schema.IOType{{ID: "fullName", Kind: schema.KindString}}}}
	if _, ok := LookupInput(inputs, "input.fullName"); !ok {
		t.Error("LookupInput(input.fullName) should resolve")
	}
	if _, ok := LookupInput(inputs, "other.fullName"); ok {
		t.Error("LookupInput(other.fullName) should not resolve")
	}
}

func TestOutputRootShadowed(t *testing.T) {
	plain := testOutput()
	if got := OutputRoot(plain); got != "output" {
		t.Errorf("OutputRoot = %q, want output", got)
	}

	shadowed := &schema.IOType{ID: "name", Kind: schema.KindRecord, Fields: []*schema.IOType{
		{ID: "name", Kind: schema.KindString},
		{ID: "age", Kind: schema.KindInt},
	}}
	if got := OutputRoot(shadowed); got != "" {
		t.Errorf("OutputRoot = %q, want empty", got)
	}
	if got, ok := LookupOutput(shadowed, "name"); !ok || got.Kind != schema.KindString {
		t.Errorf("LookupOutput(name) = %v, %v, want the string field", got, ok)
	}
	if got, ok := LookupOutput(shadowed, ""); !ok || got != shadowed {
		t.Errorf("LookupOutput(\"\") = %v, %v, want the root", got, ok)
	}
}
