package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-docnav/pkg/outline"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	mutedStyle     = lipgloss.NewStyle().Faint(true)
	folderStyle    = lipgloss.NewStyle().Bold(true)
	linkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Underline(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func (m Model) View() string {
	if m.help.ShowAll {
		return m.help.FullHelpView(m.keys.FullHelp())
	}

	header := headerStyle.Render(m.rootLabel)
	sections := []string{header, "", m.renderTreeView()}

	if m.outlineFor != "" {
		sections = append(sections, "", m.renderOutline())
	}
	if m.statusMessage != "" {
		sections = append(sections, "", mutedStyle.Render(m.statusMessage))
	}
	sections = append(sections, "", m.help.ShortHelpView(m.keys.ShortHelp()))

	return "\n" + lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTreeView() string {
	switch m.result.Status {
	case tree.StatusUnknown:
		return mutedStyle.Render("Loading...")
	case tree.StatusFailed:
		return errorStyle.Render(fmt.Sprintf("Error: %v (press r to retry)", m.result.Err))
	}
	if len(m.displayNodes) == 0 {
		return mutedStyle.Render("(empty)")
	}

	var b strings.Builder
	viewportHeight := m.getViewportHeight()
	start := m.scrollOffset
	end := start + viewportHeight
	if end > len(m.displayNodes) {
		end = len(m.displayNodes)
	}

	active := m.session.ActiveID()
	for i := start; i < end; i++ {
		dn := m.displayNodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = highlightStyle.Render("▶ ")
		}
		b.WriteString(cursor)
		b.WriteString(mutedStyle.Render(dn.prefix))
		b.WriteString(renderLabel(dn.node, dn.node.ID == active))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if len(m.displayNodes) > viewportHeight {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.displayNodes))))
	}
	return b.String()
}

func renderLabel(n *tree.ViewNode, active bool) string {
	var label string
	switch n.Item {
	case tree.TypeFolder, tree.TypeHiddenFolder:
		indicator := "▸ "
		if n.Expanded {
			indicator = "▾ "
		}
		if n.ChildState == tree.ChildrenEmpty {
			indicator = "  "
		}
		style := folderStyle
		if n.Item == tree.TypeHiddenFolder {
			style = style.Faint(true)
		}
		label = indicator + style.Render(n.Label)
	case tree.TypeLink:
		label = "  " + linkStyle.Render(n.Label)
	default:
		label = "  " + n.Label
	}

	if active {
		label = highlightStyle.Render(label)
	}

	switch {
	case n.ChildState == tree.ChildrenFailed:
		label += errorStyle.Render(" ✗ " + n.Err)
	case n.Expanded && n.ChildState == tree.ChildrenUnknown:
		label += mutedStyle.Render(" …")
	case n.HasHiddenFiles:
		label += mutedStyle.Render(" (f: files)")
	case n.HasFiles:
		label += mutedStyle.Render(" (f: hide files)")
	}
	return label
}

func (m Model) renderOutline() string {
	if m.outlineError != nil {
		return errorStyle.Render(fmt.Sprintf("Outline: %v", m.outlineError))
	}
	if m.outline == nil {
		return mutedStyle.Render("Outline: loading...")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Outline"))
	var walk func(nodes []*outline.Outline, depth int)
	walk = func(nodes []*outline.Outline, depth int) {
		for _, n := range nodes {
			b.WriteString("\n")
			b.WriteString(strings.Repeat("  ", depth+1))
			b.WriteString(n.Text)
			walk(n.Children, depth+1)
		}
	}
	walk(m.outline, 0)
	return b.String()
}
