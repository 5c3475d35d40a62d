package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/datamapper/pkg/diagram"
	"github.com/matzehuels/datamapper/pkg/schema"
	"github.com/matzehuels/datamapper/pkg/visibility"
)

func field(name string, k schema.Kind, fields ...*schema.IOType) *schema.IOType {
	return &schema.IOType{ID: name, VariableName: name, Kind: k, Fields: fields}
}

func testSnapshot() *schema.Snapshot {
	return &schema.Snapshot{
		Revision: "r1",
		Inputs: []*schema.IOType{
			field("input", schema.KindRecord,
				field("fullName", schema.KindString),
				field("age", schema.KindInt),
			),
		},
		Output: field("Out", schema.KindRecord,
			field("name", schema.KindString),
			field("meta", schema.KindRecord, field("note", schema.KindString)),
		),
		Mappings: []schema.Mapping{
			{Output: "name", Inputs: []string{"input.fullName"}, Expression: "input.fullName"},
			{Output: "meta.note", Inputs: []string{"input.fullName", "input.age"}, Expression: "input.fullName + input.age"},
			{Output: "missing", Inputs: []string{"input.age"}, Expression: "input.age"},
		},
	}
}

func TestFromDiagram(t *testing.T) {
	g := FromDiagram(diagram.Build(testSnapshot(), nil), "r1")

	if g.Revision != "r1" {
		t.Errorf("revision = %q, want r1", g.Revision)
	}
	wantNodes := []string{"input:input", "output", "expr:meta.note"}
	if len(g.Nodes) != len(wantNodes) {
		t.Fatalf("nodes = %d, want %d", len(g.Nodes), len(wantNodes))
	}
	for i, id := range wantNodes {
		if g.Nodes[i].ID != id {
			t.Errorf("node[%d] = %s, want %s", i, g.Nodes[i].ID, id)
		}
	}
	if got := g.Nodes[1].Shape; got != "record" {
		t.Errorf("output shape = %q, want record", got)
	}

	var note *Port
	for i := range g.Nodes[1].Ports {
		if g.Nodes[1].Ports[i].Path == "meta.note" {
			note = &g.Nodes[1].Ports[i]
		}
	}
	if note == nil {
		t.Fatal("meta.note port missing")
	}
	if note.Parent != "meta.IN" {
		t.Errorf("parent = %q, want meta.IN", note.Parent)
	}
	if note.Depth != 2 {
		t.Errorf("depth = %d, want 2", note.Depth)
	}

	if got := len(g.Links); got != 4 {
		t.Errorf("links = %d, want 4", got)
	}
	if len(g.Errors) != 1 || g.Errors[0].Code != "SCHEMA_RESOLUTION" || g.Errors[0].Kind != "Output" {
		t.Errorf("errors = %+v, want one output resolution error", g.Errors)
	}
	if g.Stats.Links != len(g.Links) || g.Stats.Errors != 1 {
		t.Errorf("stats = %+v", g.Stats)
	}
}

func TestMarshalGraphDeterministic(t *testing.T) {
	vis := visibility.New()
	vis.Collapse("meta")

	first, err := MarshalGraph(diagram.Build(testSnapshot(), vis), "r1")
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	for range 5 {
		again, err := MarshalGraph(diagram.Build(testSnapshot(), vis.Clone()), "r1")
		if err != nil {
			t.Fatalf("MarshalGraph: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("identical inputs produced different output")
		}
	}

	var result Graph
	if err := json.Unmarshal(first, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(result.Nodes) == 0 {
		t.Error("no nodes in output")
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantLinks int
		wantErr   bool
	}{
		{
			name: "Valid",
			input: `{
				"nodes": [
					{"id": "input:input", "kind": "input", "ports": [{"id": "input.OUT", "path": "input", "direction": "OUT"}]},
					{"id": "output", "kind": "output", "ports": []}
				],
				"links": [
					{"id": "a->b", "source": "input.OUT", "target": "Out.IN"}
				]
			}`,
			wantNodes: 2,
			wantLinks: 1,
		},
		{
			name:      "Empty",
			input:     `{"nodes": [], "links": []}`,
			wantNodes: 0,
			wantLinks: 0,
		},
		{
			name:    "Invalid",
			input:   `{invalid json}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadGraph(strings.NewReader(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}
			if got := len(g.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(g.Links); got != tt.wantLinks {
				t.Errorf("links = %d, want %d", got, tt.wantLinks)
			}
		})
	}
}

func TestWriteGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := WriteGraphFile(diagram.Build(testSnapshot(), nil), "r1", path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not created: %v", err)
	}

	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.Revision != "r1" {
		t.Errorf("revision = %q, want r1", g.Revision)
	}
	if len(g.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(g.Nodes))
	}
}

func TestReadGraphFileMissing(t *testing.T) {
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestUnmarshalGraph(t *testing.T) {
	data, err := MarshalGraph(diagram.Build(testSnapshot(), nil), "")
	if err != nil {
		t.Fatal(err)
	}
	g, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}
	if g.Revision != "" {
		t.Errorf("revision = %q, want empty", g.Revision)
	}
	if _, err := UnmarshalGraph([]byte("nope")); err == nil {
		t.Error("expected error for invalid json")
	}
}
