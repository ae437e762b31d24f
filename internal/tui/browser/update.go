package browser

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-docnav/pkg/outline"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.clampScroll()
		return m, nil

	case sessionUpdatedMsg:
		if msg.update.Err != nil {
			m.statusMessage = fmt.Sprintf("Fetch failed: %v", msg.update.Err)
		}
		m.rebuild()
		return m, waitForUpdate(m.session)

	case headingsLoadedMsg:
		if msg.id != m.outlineFor {
			return m, nil
		}
		m.outline = msg.headings
		m.outlineError = msg.err
		m.statusMessage = ""
		if msg.err == nil && len(msg.headings) == 0 {
			m.outline = []*outline.Outline{}
			m.statusMessage = "No headings"
		}
		m.clampScroll()
		return m, nil

	case tea.KeyMsg:
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMessage = ""
	current := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true

	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.getViewportHeight() / 2
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.getViewportHeight() / 2
	case key.Matches(msg, m.keys.GoToTop):
		m.cursor = 0
	case key.Matches(msg, m.keys.GoToBottom):
		m.cursor = len(m.displayNodes) - 1

	case key.Matches(msg, m.keys.Expand):
		if isFolder(current) && !current.Expanded {
			m.session.ToggleExpand(current.ID, true)
			m.rebuild()
		}

	case key.Matches(msg, m.keys.Collapse):
		if isFolder(current) && current.Expanded {
			m.session.ToggleExpand(current.ID, false)
			m.rebuild()
		} else if dn := m.displayNodes; m.cursor < len(dn) && dn[m.cursor].parent != "" {
			m.moveTo(dn[m.cursor].parent)
		}

	case key.Matches(msg, m.keys.Select):
		if current == nil {
			break
		}
		if current.Item == tree.TypeLink {
			m.statusMessage = current.URL
			break
		}
		m.session.Select(current.ID)
		if isFolder(current) && !current.Expanded {
			m.session.ToggleExpand(current.ID, true)
		}
		m.rebuild()

	case key.Matches(msg, m.keys.ShowFiles):
		if isFolder(current) {
			m.session.ToggleShowFiles(current.ID)
			m.rebuild()
		}

	case key.Matches(msg, m.keys.Outline):
		if current == nil || isFolder(current) || current.Item == tree.TypeLink {
			break
		}
		if m.outlineFor == current.ID {
			m.outline, m.outlineFor, m.outlineError = nil, "", nil
			break
		}
		m.outlineFor = current.ID
		m.outline, m.outlineError = nil, nil
		m.statusMessage = "Loading outline..."
		return m, loadHeadingsCmd(m.session, current.ID)

	case key.Matches(msg, m.keys.Retry):
		if current != nil && current.ChildState == tree.ChildrenFailed {
			m.session.Retry(current.ID)
			m.statusMessage = "Retrying " + current.Label
		} else if m.result.Status == tree.StatusFailed {
			m.session.Retry(m.session.RootID())
			m.statusMessage = "Retrying root"
		}
	}

	m.clampScroll()
	return m, nil
}

func (m *Model) moveTo(id string) {
	for i, dn := range m.displayNodes {
		if dn.node.ID == id {
			m.cursor = i
			return
		}
	}
}

func isFolder(n *tree.ViewNode) bool {
	return n != nil && (n.Item == tree.TypeFolder || n.Item == tree.TypeHiddenFolder)
}
