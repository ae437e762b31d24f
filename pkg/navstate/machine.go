package navstate

import (
	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// Machine owns the expansion state of a navigation tree: which folders are
// expanded, which folders show their non-folder files, and the active node.
// The two sets are independent of each other.
//
// Machine is not safe for concurrent use; callers serialize access.
type Machine struct {
	rootID    string
	expanded  models.IDSet
	showFiles models.IDSet
	activeID  string
}

// New creates an empty machine for the tree rooted at rootID.
func New(rootID string) *Machine {
	return &Machine{
		rootID:    rootID,
		expanded:  models.IDSet{},
		showFiles: models.IDSet{},
	}
}

// Reset clears all state for a new root context.
func (m *Machine) Reset(rootID string) {
	m.rootID = rootID
	m.expanded = models.IDSet{}
	m.showFiles = models.IDSet{}
	m.activeID = ""
}

// RootID returns the root the machine was created or last reset for.
func (m *Machine) RootID() string {
	return m.rootID
}

// ToggleExpand records the new expansion state of id. Expanding a folder whose
// children are unknown requests them. Collapsing leaves showFiles untouched.
func (m *Machine) ToggleExpand(id string, nowExpanded bool, children models.AdjacencyMap) []Command {
	if !nowExpanded {
		m.expanded.Remove(id)
		return nil
	}

	m.expanded.Add(id)
	if !children.Known(id) {
		return []Command{{Kind: FetchChildren, ID: id}}
	}
	return nil
}

// ToggleShowFiles flips whether the non-folder children of id are shown.
func (m *Machine) ToggleShowFiles(id string) {
	if m.showFiles.Has(id) {
		m.showFiles.Remove(id)
	} else {
		m.showFiles.Add(id)
	}
}

// Activate makes id the active node and expands its ancestor chain so the
// node becomes reachable in the tree. Ancestors with unknown children are
// fetched; an ancestor referenced by a parent link but not yet fetched is
// requested as a node, and the walk stops there. Nothing happens when id
// itself has not been fetched.
func (m *Machine) Activate(id string, nodes models.NodeMap, children models.AdjacencyMap) []Command {
	if nodes.Get(id) == nil {
		return nil
	}

	chain, missing := Ancestors(id, m.rootID, nodes)

	var cmds []Command
	for _, ancestor := range chain {
		m.expanded.Add(ancestor)
		if !children.Known(ancestor) {
			cmds = append(cmds, Command{Kind: FetchChildren, ID: ancestor})
		}
	}
	if missing != "" {
		cmds = append(cmds, Command{Kind: FetchNode, ID: missing})
	}

	m.activeID = id
	return cmds
}

// Select handles a user choosing id in the tree. Selecting the folder that is
// already active toggles its files instead of navigating again.
func (m *Machine) Select(id string, nodes models.NodeMap, children models.AdjacencyMap) []Command {
	if id != "" && id == m.activeID && nodes.Get(id).ActsAsFolder() {
		m.ToggleShowFiles(id)
		return nil
	}
	return m.Activate(id, nodes, children)
}

// ActiveID returns the active node id, or "" when none is active.
func (m *Machine) ActiveID() string {
	return m.activeID
}

// IsExpanded reports whether id is expanded.
func (m *Machine) IsExpanded(id string) bool {
	return m.expanded.Has(id)
}

// IsShowingFiles reports whether id shows its non-folder children.
func (m *Machine) IsShowingFiles(id string) bool {
	return m.showFiles.Has(id)
}

// Expanded returns a copy of the expanded set.
func (m *Machine) Expanded() models.IDSet {
	return m.expanded.Clone()
}

// ShowFiles returns a copy of the show-files set.
func (m *Machine) ShowFiles() models.IDSet {
	return m.showFiles.Clone()
}

// Ancestors returns the ancestor chain of id ordered from the top down, ending
// with id's parent. The walk follows first-parent links and stops after
// rootID, at a node without parents, or on a repeated id. When a parent link
// points at a node that has not been fetched, that id is returned as missing
// and is included as the top of the chain.
func Ancestors(id, rootID string, nodes models.NodeMap) (chain []string, missing string) {
	if id == rootID {
		return nil, ""
	}
	node := nodes.Get(id)
	if node == nil {
		return nil, ""
	}

	seen := models.NewIDSet(id)
	for parentID := node.ParentID(); parentID != "" && !seen.Has(parentID); {
		seen.Add(parentID)
		chain = append(chain, parentID)
		if parentID == rootID {
			break
		}
		parent := nodes.Get(parentID)
		if parent == nil {
			missing = parentID
			break
		}
		parentID = parent.ParentID()
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, missing
}
