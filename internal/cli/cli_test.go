package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/datamapper/pkg/schema"
)

func field(name string, k schema.Kind, fields ...*schema.IOType) *schema.IOType {
	return &schema.IOType{ID: name, VariableName: name, Kind: k, Fields: fields}
}

// setupEnv points config, store and cache at temp dirs and writes a snapshot file.
func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	snap := &schema.Snapshot{
		Inputs: []*schema.IOType{
			field("input", schema.KindRecord,
				field("fullName", schema.KindString),
				field("age", schema.KindInt),
			),
		},
		Output: field("Out", schema.KindRecord,
			field("name", schema.KindString),
			field("years", schema.KindInt),
		),
	}
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := schema.WriteSnapshotFile(snap, path); err != nil {
		t.Fatalf("WriteSnapshotFile: %v", err)
	}
	return path
}

// run executes the root command with args and returns what it wrote to out.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	var out bytes.Buffer
	c.SetOutput(&out)
	c.SetStatusOutput(io.Discard)

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestImportMapExport(t *testing.T) {
	path := setupEnv(t)

	mustRun(t, "import", path, "--root", "people")
	if out := mustRun(t, "roots"); strings.TrimSpace(out) != "people" {
		t.Errorf("roots = %q, want people", out)
	}

	mustRun(t, "map", "input.fullName", "name", "--root", "people")
	mustRun(t, "set-expr", "years", "input.age + 1", "--root", "people")

	out := mustRun(t, "export", "--root", "people")
	snap, err := schema.ReadSnapshot(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(snap.Mappings) != 2 {
		t.Fatalf("got %d mappings, want 2: %+v", len(snap.Mappings), snap.Mappings)
	}

	mustRun(t, "unmap", "name", "--root", "people")
	out = mustRun(t, "export", "--root", "people")
	snap, err = schema.ReadSnapshot(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(snap.Mappings) != 1 || snap.Mappings[0].Output != "years" {
		t.Errorf("after unmap: %+v", snap.Mappings)
	}
}

func TestRenderDOT(t *testing.T) {
	path := setupEnv(t)
	mustRun(t, "import", path, "--root", "people")
	mustRun(t, "map", "input.fullName", "name", "--root", "people")

	out := mustRun(t, "render", "--root", "people", "--format", "dot", "-o", "-")
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("render output does not start with digraph:\n%s", out)
	}
	if !strings.Contains(out, `"input:input"`) || !strings.Contains(out, `"output"`) {
		t.Errorf("render output missing nodes:\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	path := setupEnv(t)
	mustRun(t, "import", path, "--root", "people")

	out := mustRun(t, "render", "--root", "people", "--format", "json", "-o", "-", "--no-cache")
	if !strings.Contains(out, `"nodes"`) {
		t.Errorf("render json missing nodes:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	path := setupEnv(t)
	mustRun(t, "import", path, "--root", "people")

	tests := []struct {
		name string
		args []string
	}{
		{"missing root flag", []string{"export"}},
		{"unknown root", []string{"export", "--root", "ghost"}},
		{"unknown target", []string{"map", "input.fullName", "nope", "--root", "people"}},
		{"bad format", []string{"render", "--root", "people", "--format", "gif"}},
		{"missing file", []string{"import", filepath.Join(t.TempDir(), "none.json"), "--root", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRootsDelete(t *testing.T) {
	path := setupEnv(t)
	mustRun(t, "import", path, "--root", "a")
	mustRun(t, "import", path, "--root", "b")

	mustRun(t, "roots", "--delete", "a")
	if out := mustRun(t, "roots"); strings.TrimSpace(out) != "b" {
		t.Errorf("roots = %q, want b", out)
	}
}

func TestCachePath(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "cache", "path")
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join("datamapper")) {
		t.Errorf("cache path = %q", out)
	}
	mustRun(t, "cache", "clear")
}
