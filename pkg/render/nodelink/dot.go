package nodelink

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/datamapper/pkg/diagram"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the schema kind to every row and marks arrays that
	// accept new elements.
	Detailed bool
}

// Colors used in the diagram.
const (
	colorError    = "#d62728"
	colorDisabled = "#9e9e9e"
	colorHeader   = "#eceff4"
	colorLink     = "#4c566a"
)

// ToDOT converts a built graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(g *diagram.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=plaintext, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10, color=\"" + colorLink + "\"];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID(), strings.Join(nodeAttrs(g, n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, l := range g.Links {
		src, ok := g.Port(portPath(l.Source))
		if !ok {
			continue
		}
		dst, ok := g.Port(portPath(l.Target))
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", endpoint(g, src, "e"), endpoint(g, dst, "w"), strings.Join(linkAttrs(l), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(g *diagram.Graph, n diagram.Node, opts Options) []string {
	switch n.Kind() {
	case diagram.KindIntermediate:
		return []string{
			fmt.Sprintf("label=%q", n.Label()),
			"shape=box", "style=\"rounded,filled\"", "fillcolor=white", "fontname=\"Courier\"",
		}
	case diagram.KindPlaceholder:
		return []string{
			fmt.Sprintf("label=%q", n.Label()),
			"shape=box", "style=\"dashed\"", "color=\"" + colorError + "\"", "fontcolor=\"" + colorError + "\"",
		}
	}
	return []string{"label=<" + table(g, n, opts) + ">"}
}

// table renders an input or output node as an HTML-like label with one
// anchored row per visible port.
func table(g *diagram.Graph, n diagram.Node, opts Options) string {
	var b strings.Builder
	b.WriteString(`<TABLE BORDER="1" CELLBORDER="0" CELLSPACING="0" CELLPADDING="4">`)
	fmt.Fprintf(&b, `<TR><TD BGCOLOR="%s"><B>%s</B></TD></TR>`, colorHeader, html.EscapeString(n.Label()))

	var add map[string]bool
	if o, ok := n.(*diagram.OutputNode); ok && opts.Detailed {
		add = make(map[string]bool, len(o.AddElement))
		for _, p := range o.AddElement {
			add[p] = true
		}
	}

	for _, i := range n.Ports() {
		p := g.PortAt(i)
		if p.Hidden {
			continue
		}
		text := strings.Repeat("&nbsp;&nbsp;", p.Depth) + marker(p) + html.EscapeString(p.Name)
		if opts.Detailed {
			text += fmt.Sprintf(` <I>%s</I>`, html.EscapeString(string(p.Kind)))
			if add[p.Path] {
				text += " [+]"
			}
		}
		if p.Disabled {
			text = fmt.Sprintf(`<FONT COLOR="%s">%s</FONT>`, colorDisabled, text)
		}
		fmt.Fprintf(&b, `<TR><TD PORT="%s" ALIGN="LEFT">%s</TD></TR>`, anchor(i), text)
	}
	b.WriteString(`</TABLE>`)
	return b.String()
}

func marker(p *diagram.Port) string {
	if p.Kind != schema.KindRecord && p.Kind != schema.KindArray {
		return ""
	}
	if p.Collapsed {
		return "▸ "
	}
	return "▾ "
}

func linkAttrs(l diagram.Link) []string {
	var attrs []string
	if l.Label.Expression != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", truncate(l.Label.Expression, 40)))
	}
	for _, d := range l.Label.Diagnostics {
		if d.Severity == schema.SeverityError {
			attrs = append(attrs, "color=\""+colorError+"\"", "fontcolor=\""+colorError+"\"")
			break
		}
	}
	if l.Redirected {
		attrs = append(attrs, "style=dashed")
	}
	if len(attrs) == 0 {
		attrs = append(attrs, "label=\"\"")
	}
	return attrs
}

// endpoint renders a link end. Junction and placeholder nodes have no table
// rows, so their links attach to the node itself.
func endpoint(g *diagram.Graph, p *diagram.Port, compass string) string {
	n, ok := g.Node(p.NodeID)
	if !ok {
		return fmt.Sprintf("%q", p.NodeID)
	}
	switch n.Kind() {
	case diagram.KindInput, diagram.KindOutput:
		i, _ := n.Port(p.Path, p.Dir)
		return fmt.Sprintf("%q:%s:%s", p.NodeID, anchor(i), compass)
	}
	return fmt.Sprintf("%q", p.NodeID)
}

func anchor(i int) string { return fmt.Sprintf("p%d", i) }

// portPath splits a port id into its path and direction.
func portPath(id string) (string, schema.Direction) {
	if path, ok := strings.CutSuffix(id, "."+string(schema.In)); ok {
		return path, schema.In
	}
	path, _ := strings.CutSuffix(id, "."+string(schema.Out))
	return path, schema.Out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
