package tree

import "github.com/mattsolo1/grove-docnav/pkg/models"

// Visible holds the children of a folder that are eligible for display.
type Visible struct {
	Folders    []*models.Node
	NonFolders []*models.Node
}

// VisibleChildren decides which children of parent are shown in the tree.
//
// A parent whose settings hide sidebar children yields nothing. Otherwise
// folders (including folder shortcuts) are returned in store order, and the
// remaining children only when showFiles is set for the parent. A nil parent
// uses the default settings.
func VisibleChildren(parent *models.Node, children []*models.Node, showFiles bool) Visible {
	var v Visible
	if !parent.DisplaySettings().DisplayInSidebar {
		return v
	}

	for _, child := range children {
		if child == nil {
			continue
		}
		if child.ActsAsFolder() {
			v.Folders = append(v.Folders, child)
		} else if showFiles {
			v.NonFolders = append(v.NonFolders, child)
		}
	}
	return v
}

// resolve maps child ids onto fetched nodes, skipping ids without node data.
func resolve(nodes models.NodeMap, ids []string) []*models.Node {
	out := make([]*models.Node, 0, len(ids))
	for _, id := range ids {
		if n := nodes.Get(id); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// countNonFolders returns how many resolved children are not folders.
func countNonFolders(children []*models.Node) int {
	count := 0
	for _, c := range children {
		if !c.ActsAsFolder() {
			count++
		}
	}
	return count
}
