package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/datamapper/pkg/editor"
	"github.com/matzehuels/datamapper/pkg/schema"
	"github.com/matzehuels/datamapper/pkg/store"
)

func browseEditor(t *testing.T) *editor.Editor {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	snap := &schema.Snapshot{
		Inputs: []*schema.IOType{field("input", schema.KindRecord, field("fullName", schema.KindString))},
		Output: field("Out", schema.KindRecord,
			field("name", schema.KindString),
			field("meta", schema.KindRecord, field("note", schema.KindString)),
		),
		Mappings: []schema.Mapping{{Output: "name", Inputs: []string{"input.fullName"}, Expression: "input.fullName"}},
	}
	if err := s.Save(ctx, "people", snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ed, err := editor.Open(ctx, s, "people", editor.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return ed
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// moveTo places the cursor on the row whose port path is path.
func moveTo(t *testing.T, m browseModel, path string) browseModel {
	t.Helper()
	for i, r := range m.rows {
		if r.port.Path == path {
			m.cursor = i
			return m
		}
	}
	t.Fatalf("no row for %s", path)
	return m
}

func TestBrowseRows(t *testing.T) {
	m := newBrowseModel(context.Background(), browseEditor(t))

	// input, fullName, Out, name, meta, note
	if len(m.rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(m.rows))
	}
	view := m.View()
	for _, want := range []string{"Mapping people", "fullName", "▾ meta", "note"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowseNavigate(t *testing.T) {
	m := newBrowseModel(context.Background(), browseEditor(t))

	next, _ := m.Update(key("up"))
	m = next.(browseModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", m.cursor)
	}
	for range 10 {
		next, _ = m.Update(key("down"))
		m = next.(browseModel)
	}
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor = %d, want last row %d", m.cursor, len(m.rows)-1)
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestBrowseToggle(t *testing.T) {
	m := newBrowseModel(context.Background(), browseEditor(t))
	m = moveTo(t, m, "meta")

	next, _ := m.Update(key("enter"))
	m = next.(browseModel)
	if m.err != nil {
		t.Fatalf("toggle: %v", m.err)
	}
	if len(m.rows) != 5 {
		t.Errorf("got %d rows after collapse, want 5", len(m.rows))
	}
	if !strings.Contains(m.View(), "▸ meta") {
		t.Errorf("view should mark meta collapsed:\n%s", m.View())
	}

	// Primitive ports do not fold.
	m = moveTo(t, m, "name")
	next, _ = m.Update(key(" "))
	if got := next.(browseModel); len(got.rows) != 5 {
		t.Errorf("toggling a primitive changed rows to %d", len(got.rows))
	}
}

func TestBrowseDelete(t *testing.T) {
	ed := browseEditor(t)
	m := newBrowseModel(context.Background(), ed)
	m = moveTo(t, m, "name")

	next, cmd := m.Update(key("d"))
	if cmd == nil {
		t.Fatal("d on an output field should return a command")
	}
	next, _ = next.(browseModel).Update(cmd())
	m = next.(browseModel)
	if m.err != nil {
		t.Fatalf("delete: %v", m.err)
	}
	if n := len(ed.Snapshot().Mappings); n != 0 {
		t.Errorf("got %d mappings after delete, want 0", n)
	}
	if !strings.Contains(m.View(), "deleted name") {
		t.Errorf("view missing status:\n%s", m.View())
	}

	// Input fields are not deletable.
	m = moveTo(t, m, "input.fullName")
	if _, cmd := m.Update(key("d")); cmd != nil {
		t.Error("d on an input field should do nothing")
	}
}
