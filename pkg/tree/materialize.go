package tree

import "github.com/mattsolo1/grove-docnav/pkg/models"

// Status tags the outcome of materializing a folder's children.
type Status int

const (
	// StatusUnknown means the children have not been fetched yet. Callers show
	// a loading affordance rather than an empty tree.
	StatusUnknown Status = iota
	// StatusLoaded means the children are known; Nodes may still be empty.
	StatusLoaded
	// StatusFailed means the fetch for the children failed; Err holds why.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Input is the state a view tree is computed from.
type Input struct {
	Nodes     models.NodeMap
	Children  models.AdjacencyMap
	ShowFiles models.IDSet
	Expanded  models.IDSet
	Failures  map[string]error // Folder id -> error of its last failed children fetch
}

// Result is the materialized tree below a root.
type Result struct {
	Status Status
	Nodes  []*ViewNode
	Err    error
}

// Materialize computes the displayable tree below rootID.
//
// Folders recurse; a folder whose own result is unknown, failed or empty is
// rendered as a leaf. Folders precede files and both keep store order. A
// folder id already on the current recursion path is dropped, so cyclic
// adjacency data yields a finite tree.
func Materialize(rootID string, in Input) Result {
	return materialize(rootID, in, models.NewIDSet(rootID))
}

func materialize(id string, in Input, path models.IDSet) Result {
	ids, known := in.Children.Lookup(id)
	if !known {
		if err := in.Failures[id]; err != nil {
			return Result{Status: StatusFailed, Err: err}
		}
		return Result{Status: StatusUnknown}
	}

	children := resolve(in.Nodes, ids)
	visible := VisibleChildren(in.Nodes.Get(id), children, in.ShowFiles.Has(id))

	nodes := make([]*ViewNode, 0, len(visible.Folders)+len(visible.NonFolders))
	for _, folder := range visible.Folders {
		if path.Has(folder.ID) {
			continue
		}
		path.Add(folder.ID)
		sub := materialize(folder.ID, in, path)
		path.Remove(folder.ID)

		nodes = append(nodes, folderNode(folder, sub, in))
	}
	for _, file := range visible.NonFolders {
		nodes = append(nodes, fileNode(file))
	}

	return Result{Status: StatusLoaded, Nodes: nodes}
}

func folderNode(folder *models.Node, sub Result, in Input) *ViewNode {
	settings := folder.DisplaySettings()
	node := &ViewNode{
		ID:       folder.ID,
		Label:    folder.Name,
		Item:     TypeFolder,
		Expanded: in.Expanded.Has(folder.ID),
	}
	if folder.Kind == models.KindFolder && !settings.DisplayInSidebar {
		node.Item = TypeHiddenFolder
	}

	switch sub.Status {
	case StatusUnknown:
		node.ChildState = ChildrenUnknown
	case StatusFailed:
		node.ChildState = ChildrenFailed
		node.Err = sub.Err.Error()
	default:
		if len(sub.Nodes) == 0 {
			node.ChildState = ChildrenEmpty
		} else {
			node.ChildState = ChildrenExpanded
			node.Children = sub.Nodes
		}
	}

	if node.Expanded && settings.DisplayInSidebar {
		if ids, known := in.Children.Lookup(folder.ID); known {
			node.HasFiles = countNonFolders(resolve(in.Nodes, ids)) > 0
			node.HasHiddenFiles = node.HasFiles && !in.ShowFiles.Has(folder.ID)
		}
	}
	return node
}

func fileNode(file *models.Node) *ViewNode {
	node := &ViewNode{
		ID:    file.ID,
		Label: file.Name,
		Item:  TypeFile,
	}
	if link := models.ParseMarkdownLink(file.Name); link != nil {
		node.Item = TypeLink
		node.Label = link.Title
		node.URL = link.URL
	}
	return node
}
