package tree

// ItemType categorizes how a node is labelled in the navigation tree.
type ItemType string

const (
	TypeFolder       ItemType = "folder"
	TypeHiddenFolder ItemType = "hidden_folder" // A folder whose children are hidden from the sidebar
	TypeLink         ItemType = "link"          // A file named as a markdown link
	TypeFile         ItemType = "file"
)

// ChildState records why a folder has or lacks children in the view tree.
type ChildState string

const (
	ChildrenNone     ChildState = ""         // Not a folder
	ChildrenUnknown  ChildState = "unknown"  // Not fetched yet
	ChildrenFailed   ChildState = "failed"   // The fetch failed
	ChildrenEmpty    ChildState = "empty"    // Known, but nothing visible
	ChildrenExpanded ChildState = "children" // Has visible descendants
)

// ViewNode represents a single displayable node in the materialized tree.
// A nil Children slice means the node renders as a leaf.
type ViewNode struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Item       ItemType   `json:"type"`
	URL        string     `json:"url,omitempty"`
	Expanded   bool       `json:"expanded,omitempty"`
	ChildState ChildState `json:"child_state,omitempty"`
	Err        string     `json:"error,omitempty"`

	// HasFiles is set on an expanded folder with known non-folder children,
	// shown or not. HasHiddenFiles narrows it to the ones not shown.
	HasFiles       bool `json:"has_files,omitempty"`
	HasHiddenFiles bool `json:"has_hidden_files,omitempty"`

	Children []*ViewNode `json:"children,omitempty"`
}

// IsLeaf reports whether the node has no expand affordance.
func (n *ViewNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Find returns the first node with id in depth-first order, or nil.
func Find(nodes []*ViewNode, id string) *ViewNode {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := Find(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Contains reports whether id is present anywhere in nodes.
func Contains(nodes []*ViewNode, id string) bool {
	return Find(nodes, id) != nil
}

// Count returns the total number of nodes in the forest.
func Count(nodes []*ViewNode) int {
	total := 0
	for _, n := range nodes {
		total += 1 + Count(n.Children)
	}
	return total
}
