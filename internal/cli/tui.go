package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/datamapper/pkg/diagram"
	"github.com/matzehuels/datamapper/pkg/editor"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// browseCommand creates the browse command, an interactive view of one root.
func (c *CLI) browseCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the fields and mappings of a root interactively",
		Long: `Browse the fields and mappings of a root interactively.

Keys:
  ↑/↓ or k/j   move
  space/enter  collapse or expand a record or array
  d            delete the mapping at an output field
  a            add an element to an output array
  q            quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, closeFn, err := c.openEditor(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer closeFn()

			_, err = tea.NewProgram(newBrowseModel(cmd.Context(), ed), tea.WithAltScreen()).Run()
			return err
		},
	}

	addRootFlag(cmd, &root)
	return cmd
}

// =============================================================================
// browseModel - Interactive port list
// =============================================================================

// browseRow is one visible port.
type browseRow struct {
	node diagram.NodeKind
	port diagram.Port
}

// editedMsg reports the outcome of a mutation run off the update loop.
type editedMsg struct {
	status string
	err    error
}

// browseModel is the bubbletea model for the browse command.
type browseModel struct {
	ctx    context.Context
	ed     *editor.Editor
	rows   []browseRow
	cursor int
	offset int
	height int
	status string
	err    error
}

func newBrowseModel(ctx context.Context, ed *editor.Editor) browseModel {
	m := browseModel{ctx: ctx, ed: ed, height: 20}
	m.reload()
	return m
}

// reload re-reads the visible ports from the editor's current graph.
func (m *browseModel) reload() {
	g := m.ed.Graph()
	m.rows = nil
	for _, n := range g.Nodes {
		if n.Kind() != diagram.KindInput && n.Kind() != diagram.KindOutput {
			continue
		}
		for _, i := range n.Ports() {
			p := g.PortAt(i)
			if p.Hidden {
				continue
			}
			m.rows = append(m.rows, browseRow{node: n.Kind(), port: *p})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browseModel) current() (browseRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return browseRow{}, false
	}
	return m.rows[m.cursor], true
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.scroll()
			}
		case " ", "enter":
			row, ok := m.current()
			if !ok || !foldable(row.port.Kind) {
				return m, nil
			}
			collapsed, err := m.ed.Toggle(m.ctx, row.port.Path, row.port.Dir)
			m.err = err
			if err == nil {
				m.status = fmt.Sprintf("%s %s", foldVerb(collapsed), row.port.Path)
			}
			m.reload()
		case "d":
			row, ok := m.current()
			if !ok || row.node != diagram.KindOutput {
				return m, nil
			}
			return m, m.edit("deleted "+row.port.Path, func(ctx context.Context) error {
				return m.ed.DeleteMapping(ctx, row.port.Path)
			})
		case "a":
			row, ok := m.current()
			if !ok || row.node != diagram.KindOutput || row.port.Kind != schema.KindArray {
				return m, nil
			}
			return m, m.edit("added element to "+row.port.Path, func(ctx context.Context) error {
				return m.ed.AddArrayElement(ctx, row.port.Path)
			})
		}
	case editedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		m.reload()
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

// edit runs fn as a command so persistence does not block rendering.
func (m browseModel) edit(status string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return editedMsg{status: status, err: fn(ctx)}
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Mapping " + m.ed.Root()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ fold  d delete  a add element  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, string(r.node), fieldCell(r.port), string(r.port.Kind), fmt.Sprint(len(r.port.Links))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Side", "Field", "Kind", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			if idx == m.cursor {
				return listSelectedStyle
			}
			if m.rows[idx].port.Disabled {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.cursor+1, len(m.rows)), len(m.rows))))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(listErrorStyle.Render(iconError + " " + m.err.Error()))
	case m.status != "":
		b.WriteString(StyleSuccess.Render(iconSuccess + " " + m.status))
	}
	if n := len(m.ed.Graph().Errors); n > 0 {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%s %d node error(s)", iconWarning, n)))
	}

	return b.String()
}

// fieldCell indents the port name by depth and marks foldable ports.
func fieldCell(p diagram.Port) string {
	marker := "  "
	if foldable(p.Kind) {
		marker = "▾ "
		if p.Collapsed {
			marker = "▸ "
		}
	}
	return strings.Repeat("  ", p.Depth) + marker + p.Name
}

func foldable(k schema.Kind) bool {
	return k == schema.KindRecord || k == schema.KindArray
}

func foldVerb(collapsed bool) string {
	if collapsed {
		return "collapsed"
	}
	return "expanded"
}
