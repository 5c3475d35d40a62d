package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/datamapper/pkg/diagram"
	"github.com/matzehuels/datamapper/pkg/errors"
)

// Palette shared by status lines, the spinner and the browse view.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// printer writes human-oriented status lines. Command payloads (exported
// snapshots, rendered artifacts on stdout) never go through it.
type printer struct {
	w io.Writer
}

func (p printer) line(icon lipgloss.Style, mark, format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", icon.Render(mark), fmt.Sprintf(format, args...))
}

func (p printer) success(format string, args ...any) {
	p.line(StyleSuccess, iconSuccess, format, args...)
}

func (p printer) failure(format string, args ...any) {
	p.line(lipgloss.NewStyle().Foreground(colorRed), iconError, format, args...)
}

func (p printer) warn(format string, args ...any) {
	p.line(StyleWarning, iconWarning, "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(lipgloss.NewStyle().Foreground(colorGray), iconInfo, format, args...)
}

// detail prints an indented, dimmed line under the previous status.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s\n", StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (p printer) file(path string) {
	fmt.Fprintf(p.w, "  %s %s\n", StyleDim.Render(iconArrow), StyleValue.Render(path))
}

func (p printer) field(label, value string) {
	fmt.Fprintf(p.w, "%s %s\n", styleLabel.Render(label), StyleValue.Render(value))
}

func (p printer) hint(what, command string) {
	fmt.Fprintf(p.w, "%s %s\n", StyleDim.Render(what+":"), styleCommand.Render(command))
}

// stats summarizes a graph on one line, e.g. "3 nodes · 9/12 ports · 2 links · fresh".
func (p printer) stats(st diagram.Stats, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", st.Nodes)),
		StyleDim.Render(fmt.Sprintf("%d/%d ports", st.VisiblePorts, st.Ports)),
		StyleDim.Render(fmt.Sprintf("%d links", st.Links)),
	}
	if st.Errors > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d errors", st.Errors)))
	}
	if cached {
		parts = append(parts, StyleSuccess.Render("cached"))
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGray).Render("fresh"))
	}
	fmt.Fprintln(p.w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func (p printer) nodeErrors(errs []diagram.NodeError) {
	for _, e := range errs {
		p.warn("%s: %s", e.NodeID, errors.UserMessage(e.Err))
	}
}
