package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/datamapper/pkg/diagram"
	"github.com/matzehuels/datamapper/pkg/schema"
	"github.com/matzehuels/datamapper/pkg/visibility"
)

func field(name string, k schema.Kind, fields ...*schema.IOType) *schema.IOType {
	return &schema.IOType{ID: name, VariableName: name, Kind: k, Fields: fields}
}

func testSnapshot(mappings ...schema.Mapping) *schema.Snapshot {
	return &schema.Snapshot{
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
		Mappings: mappings,
	}
}

func TestToDOTStructure(t *testing.T) {
	g := diagram.Build(testSnapshot(
		schema.Mapping{Output: "name", Inputs: []string{"input.fullName"}, Expression: "input.fullName"},
	), nil)
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"input:input" [label=<`,
		`"output" [label=<`,
		"<B>Out</B>",
		"fullName",
		`label="input.fullName"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT should end with closing brace")
	}
}

func TestToDOTLinkEndpoints(t *testing.T) {
	g := diagram.Build(testSnapshot(
		schema.Mapping{Output: "name", Inputs: []string{"input.fullName"}, Expression: "input.fullName"},
	), nil)
	dot := ToDOT(g, Options{})

	in, _ := g.Node("input:input")
	src, _ := in.Port("input.fullName", schema.Out)
	dst, _ := g.Output().Port("name", schema.In)

	want := `"input:input":` + anchor(src) + `:e -> "output":` + anchor(dst) + `:w`
	if !strings.Contains(dot, want) {
		t.Errorf("DOT missing link %q\n%s", want, dot)
	}
	if !strings.Contains(dot, `PORT="`+anchor(dst)+`"`) {
		t.Errorf("output table missing anchor %s", anchor(dst))
	}
}

func TestToDOTIntermediate(t *testing.T) {
	g := diagram.Build(testSnapshot(
		schema.Mapping{Output: "name", Inputs: []string{"input.fullName", "input.age"}, Expression: "input.fullName + input.age"},
	), nil)
	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, `"expr:name" [label="input.fullName + input.age", shape=box`) {
		t.Errorf("DOT missing intermediate node\n%s", dot)
	}
	if !strings.Contains(dot, `-> "expr:name" [`) {
		t.Errorf("DOT missing link into intermediate node\n%s", dot)
	}
	if !strings.Contains(dot, `"expr:name" -> "output":`) {
		t.Errorf("DOT missing link out of intermediate node\n%s", dot)
	}
}

func TestToDOTPlaceholder(t *testing.T) {
	g := diagram.Build(testSnapshot(
		schema.Mapping{Output: "name", Inputs: []string{"missing.x"}, Expression: "missing.x"},
	), nil)
	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, `"placeholder:missing" [label="no match: missing"`) {
		t.Errorf("DOT missing placeholder\n%s", dot)
	}
	if !strings.Contains(dot, "style=\"dashed\"") {
		t.Error("placeholder should be dashed")
	}
}

func TestToDOTErrorLink(t *testing.T) {
	g := diagram.Build(testSnapshot(
		schema.Mapping{
			Output: "name", Inputs: []string{"input.fullName"}, Expression: "input.fullName",
			Diagnostics: []schema.Diagnostic{{Severity: schema.SeverityError, Message: "type mismatch"}},
		},
	), nil)
	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, `color="`+colorError+`"`) {
		t.Errorf("error link should be red\n%s", dot)
	}
}

func TestToDOTCollapsedRedirect(t *testing.T) {
	vis := visibility.New()
	vis.Collapse("meta")
	g := diagram.Build(testSnapshot(
		schema.Mapping{Output: "meta.note", Inputs: []string{"input.age"}, Expression: "input.age"},
	), vis)
	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, "style=dashed") {
		t.Errorf("redirected link should be dashed\n%s", dot)
	}
	if !strings.Contains(dot, "▸ meta") {
		t.Errorf("collapsed record should carry a closed marker\n%s", dot)
	}
	if strings.Contains(dot, "note</TD>") {
		t.Errorf("hidden port rendered\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	g := diagram.Build(testSnapshot(), nil)

	plain := ToDOT(g, Options{})
	detailed := ToDOT(g, Options{Detailed: true})
	if strings.Contains(plain, "<I>string</I>") {
		t.Error("plain DOT should not show kinds")
	}
	if !strings.Contains(detailed, "<I>string</I>") {
		t.Errorf("detailed DOT should show kinds\n%s", detailed)
	}
}

func TestToDOTEscapesLabels(t *testing.T) {
	snap := testSnapshot()
	snap.Inputs[0].Fields = append(snap.Inputs[0].Fields, field("a<b", schema.KindString))
	dot := ToDOT(diagram.Build(snap, nil), Options{})

	if !strings.Contains(dot, "a&lt;b") {
		t.Errorf("label not escaped\n%s", dot)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"abcdefghijkl", 5, "abcd…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestFrameSVG(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
		drop []string
	}{
		{
			name: "graphviz header",
			in:   `<?xml version="1.0"?><svg width="134pt" height="200pt" viewBox="0.00 0.00 100.50 200.25" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			want: []string{
				`<?xml version="1.0"?><svg viewBox="0 0 100.5 200.25" width="101" height="201" preserveAspectRatio="xMinYMin meet"`,
				`xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			},
			drop: []string{"134pt", "0.00 0.00"},
		},
		{
			name: "comma separated",
			in:   `<svg viewBox="4,4,50,20"><g/></svg>`,
			want: []string{`viewBox="0 0 50 20" width="50" height="20"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(frameSVG([]byte(tt.in)))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("frameSVG() = %s, missing %s", got, w)
				}
			}
			for _, d := range tt.drop {
				if strings.Contains(got, d) {
					t.Errorf("frameSVG() = %s, should drop %s", got, d)
				}
			}
		})
	}

	for _, in := range []string{`<svg><g/></svg>`, `<svg viewBox="0 0 0 10"/>`, `<g/>`} {
		if got := string(frameSVG([]byte(in))); got != in {
			t.Errorf("frameSVG(%s) = %s, want unchanged", in, got)
		}
	}
}
