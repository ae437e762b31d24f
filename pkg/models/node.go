package models

import "time"

// Kind represents the kind of a file in the remote store
type Kind string

const (
	KindFolder         Kind = "folder"
	KindFolderShortcut Kind = "folder_shortcut" // A reference to another file, shown with folder semantics when it targets a folder
	KindLink           Kind = "link"
	KindPlain          Kind = "plain"
)

// RootID is the id of the store's top-level folder when no other root is configured.
const RootID = "root"

// Capabilities describes what the current user may do with a node.
type Capabilities struct {
	CanEdit bool `json:"can_edit,omitempty"`
}

// Node represents a single file or folder fetched from the remote store.
// Nodes are immutable once fetched: a later fetch of the same id replaces the
// map entry instead of mutating it.
type Node struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	MimeType    string    `json:"mime_type,omitempty"`
	Parents     []string  `json:"parents,omitempty"`
	Description string    `json:"description,omitempty"` // Raw display settings, see DisplaySettings
	ModifiedAt  time.Time `json:"modified_at,omitempty"`

	// Shortcut resolution
	ShortcutTarget     string `json:"shortcut_target,omitempty"`
	ShortcutTargetKind Kind   `json:"shortcut_target_kind,omitempty"`

	Capabilities Capabilities `json:"capabilities"`
}

// ActsAsFolder reports whether the node is displayed with folder semantics.
// Folder shortcuts count when their target is a folder.
func (n *Node) ActsAsFolder() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindFolder:
		return true
	case KindFolderShortcut:
		return n.ShortcutTargetKind == "" || n.ShortcutTargetKind == KindFolder
	}
	return false
}

// ParentID returns the first parent of the node, or "" for a top-level node.
func (n *Node) ParentID() string {
	if n == nil || len(n.Parents) == 0 {
		return ""
	}
	return n.Parents[0]
}

// DisplaySettings parses the node's description into children display settings.
func (n *Node) DisplaySettings() ChildrenDisplaySettings {
	if n == nil {
		return DefaultDisplaySettings()
	}
	return ParseDisplaySettings(n.Description)
}

// NodeMap maps node ids to fetched nodes.
type NodeMap map[string]*Node

// Get returns the node for id, or nil when it has not been fetched.
func (m NodeMap) Get(id string) *Node {
	if m == nil {
		return nil
	}
	return m[id]
}

// Clone returns a shallow copy of the map. Nodes are shared since they are immutable.
func (m NodeMap) Clone() NodeMap {
	out := make(NodeMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AdjacencyMap maps folder ids to their ordered child ids.
//
// A missing key means the children are unknown (not fetched yet). A present key
// with an empty slice means the folder is confirmed empty.
type AdjacencyMap map[string][]string

// Lookup returns the children of id and whether they are known.
func (m AdjacencyMap) Lookup(id string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	children, ok := m[id]
	return children, ok
}

// Known reports whether the children of id have been fetched.
func (m AdjacencyMap) Known(id string) bool {
	_, ok := m.Lookup(id)
	return ok
}

// Set records the children of id in store order, dropping duplicate ids.
// A nil or empty children slice marks the folder as confirmed empty.
func (m AdjacencyMap) Set(id string, children []string) {
	seen := make(map[string]struct{}, len(children))
	out := make([]string, 0, len(children))
	for _, c := range children {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	m[id] = out
}

// Clone returns a copy of the map sharing the child slices.
func (m AdjacencyMap) Clone() AdjacencyMap {
	out := make(AdjacencyMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
