package browser

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-docnav/pkg/outline"
	"github.com/mattsolo1/grove-docnav/pkg/service"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

// displayNode represents a single line in the tree view.
type displayNode struct {
	node   *tree.ViewNode
	parent string // Parent id, "" at the top level
	depth  int
	prefix string
}

// Model is the main model for the document tree browser
type Model struct {
	session      *service.Session
	rootLabel    string
	result       tree.Result
	displayNodes []*displayNode
	cursor       int
	scrollOffset int
	keys         KeyMap
	help         help.Model
	width        int
	height       int

	outline      []*outline.Outline
	outlineFor   string
	outlineError error

	statusMessage string
}

// New creates a browser over an opened session.
func New(session *service.Session, rootLabel string) Model {
	m := Model{
		session:   session,
		rootLabel: rootLabel,
		keys:      keys,
		help:      help.New(),
		height:    24,
	}
	m.rebuild()
	return m
}

func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.session)
}

// selected returns the node under the cursor.
func (m *Model) selected() *tree.ViewNode {
	if m.cursor < 0 || m.cursor >= len(m.displayNodes) {
		return nil
	}
	return m.displayNodes[m.cursor].node
}

// rebuild re-materializes the tree and keeps the cursor on the same id.
func (m *Model) rebuild() {
	var current string
	if n := m.selected(); n != nil {
		current = n.ID
	}

	m.result = m.session.Tree()
	m.displayNodes = m.displayNodes[:0]
	m.flatten(m.result.Nodes, "", 0)
	recomputePrefixes(m.displayNodes)

	m.cursor = 0
	target := current
	if target == "" {
		target = m.session.ActiveID()
	}
	for i, dn := range m.displayNodes {
		if dn.node.ID == target {
			m.cursor = i
			break
		}
	}
	m.clampScroll()
}

func (m *Model) flatten(nodes []*tree.ViewNode, parent string, depth int) {
	for _, n := range nodes {
		m.displayNodes = append(m.displayNodes, &displayNode{node: n, parent: parent, depth: depth})
		if n.Expanded && !n.IsLeaf() {
			m.flatten(n.Children, n.ID, depth+1)
		}
	}
}

// recomputePrefixes draws the tree connectors for each line.
func recomputePrefixes(nodes []*displayNode) {
	lastAtDepth := make(map[int]bool)
	for i, dn := range nodes {
		isLast := true
		for j := i + 1; j < len(nodes); j++ {
			if nodes[j].depth < dn.depth {
				break
			}
			if nodes[j].depth == dn.depth {
				isLast = false
				break
			}
		}

		prefix := make([]rune, 0, dn.depth*2+2)
		for d := 0; d < dn.depth; d++ {
			if lastAtDepth[d] {
				prefix = append(prefix, ' ', ' ')
			} else {
				prefix = append(prefix, '│', ' ')
			}
		}
		if isLast {
			prefix = append(prefix, '└', ' ')
		} else {
			prefix = append(prefix, '├', ' ')
		}
		dn.prefix = string(prefix)

		lastAtDepth[dn.depth] = isLast
		for d := range lastAtDepth {
			if d > dn.depth {
				delete(lastAtDepth, d)
			}
		}
	}
}

func (m *Model) getViewportHeight() int {
	// Header, spacing and footer take six lines.
	h := m.height - 6
	if m.outline != nil {
		h -= outline.Count(m.outline) + 2
	}
	if h < 3 {
		return 3
	}
	return h
}

func (m *Model) clampScroll() {
	if m.cursor >= len(m.displayNodes) {
		m.cursor = len(m.displayNodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	height := m.getViewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+height {
		m.scrollOffset = m.cursor - height + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
