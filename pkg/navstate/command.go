package navstate

import "fmt"

// CommandKind identifies a side effect requested from the store collaborator.
type CommandKind string

const (
	// FetchChildren asks for the children of a folder
	FetchChildren CommandKind = "fetch_children"
	// FetchNode asks for a node's metadata
	FetchNode CommandKind = "fetch_node"
)

// Command is a side effect emitted by the state machine. The machine never
// performs fetches itself and does not track whether one is in flight; the
// caller deduplicates.
type Command struct {
	Kind CommandKind
	ID   string
}

func (c Command) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.ID)
}
