package store

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/schema"
)

func newTestPersister(t *testing.T) (*Persister, Store) {
	t.Helper()
	s := NewMemoryStore()
	if err := s.Save(context.Background(), "orders", testSnapshot()); err != nil {
		t.Fatal(err)
	}
	p, err := NewPersister(s, "orders")
	if err != nil {
		t.Fatal(err)
	}
	return p, s
}

func TestPersisterApplyModifications(t *testing.T) {
	p, s := newTestPersister(t)
	ctx := context.Background()

	ms := []schema.Mapping{
		{Output: "name", Inputs: []string{"input.age"}, Expression: "input.age"},
		{Output: "ghost", Inputs: []string{"input.nope"}, Expression: "input.nope"},
	}
	next, err := p.ApplyModifications(ctx, ms)
	if err != nil {
		t.Fatalf("ApplyModifications: %v", err)
	}
	if next.Revision == "" || next.Revision == "r0" {
		t.Errorf("revision = %q, want a fresh one", next.Revision)
	}
	if len(next.Mappings) != 2 {
		t.Fatalf("mappings = %d, want 2", len(next.Mappings))
	}
	if next.Mappings[0].HasErrors() {
		t.Errorf("valid mapping has diagnostics: %v", next.Mappings[0].Diagnostics)
	}
	if got := len(next.Mappings[1].Diagnostics); got != 2 {
		t.Errorf("ghost diagnostics = %d, want 2", got)
	}

	stored, err := s.Load(ctx, "orders")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Revision != next.Revision {
		t.Errorf("stored revision = %q, want %q", stored.Revision, next.Revision)
	}

	again, err := p.ApplyModifications(ctx, stored.Mappings)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(again.Mappings[1].Diagnostics); got != 2 {
		t.Errorf("diagnostics accumulated across saves: %d, want 2", got)
	}
	if again.Revision == next.Revision {
		t.Error("revision not renewed")
	}
}

func TestPersisterKeepsForeignDiagnostics(t *testing.T) {
	p, _ := newTestPersister(t)
	ms := []schema.Mapping{{
		Output:      "name",
		Inputs:      []string{"input.fullName"},
		Expression:  "input.fullName",
		Diagnostics: []schema.Diagnostic{{Severity: schema.SeverityWarning, Message: "type mismatch"}},
	}}
	next, err := p.ApplyModifications(context.Background(), ms)
	if err != nil {
		t.Fatal(err)
	}
	d := next.Mappings[0].Diagnostics
	if len(d) != 1 || d[0].Message != "type mismatch" {
		t.Errorf("diagnostics = %v, want the compiler warning only", d)
	}
}

func TestPersisterAddArrayElement(t *testing.T) {
	p, _ := newTestPersister(t)
	ctx := context.Background()

	next, err := p.AddArrayElement(ctx, "items")
	if err != nil {
		t.Fatalf("AddArrayElement: %v", err)
	}
	var arr *schema.Mapping
	for i := range next.Mappings {
		if next.Mappings[i].Output == "items" {
			arr = &next.Mappings[i]
		}
	}
	if arr == nil {
		t.Fatal("array mapping not created")
	}
	if arr.Expression != "[]" || len(arr.Elements) != 1 {
		t.Errorf("array mapping = %+v", arr)
	}

	next, err = p.AddArrayElement(ctx, "items")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range next.Mappings {
		if m.Output == "items" && len(m.Elements) != 2 {
			t.Errorf("elements = %d, want 2", len(m.Elements))
		}
	}
}

func TestPersisterMissingRoot(t *testing.T) {
	p, err := NewPersister(NewMemoryStore(), "orders")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ApplyModifications(context.Background(), nil); !IsNotFound(err) {
		t.Errorf("err = %v, want ROOT_NOT_FOUND", err)
	}
	if _, err := NewPersister(NewMemoryStore(), "../x"); errors.GetCode(err) != errors.ErrCodeInvalidRoot {
		t.Errorf("err = %v, want INVALID_ROOT", err)
	}
}

func TestPersisterReplace(t *testing.T) {
	p, err := NewPersister(NewMemoryStore(), "fresh")
	if err != nil {
		t.Fatal(err)
	}
	next, err := p.Replace(context.Background(), testSnapshot())
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if next.Revision == "r0" {
		t.Error("revision not renewed")
	}
	if _, err := p.Replace(context.Background(), &schema.Snapshot{}); errors.GetCode(err) != errors.ErrCodeInvalidSnapshot {
		t.Errorf("err = %v, want INVALID_SNAPSHOT", err)
	}
}

func TestDiagnose(t *testing.T) {
	snap := testSnapshot()
	snap.Mappings = []schema.Mapping{{
		Output:     "items",
		Expression: "[]",
		Elements: []schema.Element{{Mappings: []schema.Mapping{
			{Output: "items.0.qty", Inputs: []string{"input.age"}, Expression: "input.age"},
			{Output: "items.0.nope", Inputs: []string{"input.age"}, Expression: "input.age"},
		}}},
	}}

	Diagnose(snap)

	el := snap.Mappings[0].Elements[0].Mappings
	if len(el[0].Diagnostics) != 0 {
		t.Errorf("items.0.qty diagnostics = %v, want none", el[0].Diagnostics)
	}
	if len(el[1].Diagnostics) != 1 || !strings.HasPrefix(el[1].Diagnostics[0].Message, unknownOutput) {
		t.Errorf("items.0.nope diagnostics = %v, want unknown output", el[1].Diagnostics)
	}
}
