package navstate

import (
	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// Reveal describes the progress of revealing a target node.
type Reveal int

const (
	// RevealIdle means there is no target
	RevealIdle Reveal = iota
	// RevealPending means part of the ancestor chain is still unknown
	RevealPending
	// RevealSatisfied means the target is reachable from the root
	RevealSatisfied
	// RevealUnreachable means the target's ancestry is known but never reaches the root
	RevealUnreachable
)

func (r Reveal) String() string {
	switch r {
	case RevealPending:
		return "pending"
	case RevealSatisfied:
		return "satisfied"
	case RevealUnreachable:
		return "unreachable"
	}
	return "idle"
}

// Revealer drives a Machine until a target node is reachable in the tree.
//
// It is level-triggered: Check is called after every node or adjacency
// update and re-activates the target until its whole ancestor chain is
// resolved or the target changes. Once the machine's active id moves away
// from what the revealer last set, the reveal is abandoned.
type Revealer struct {
	machine   *Machine
	target    string
	active    string // Active id the revealer expects the machine to hold
	activated bool
	done      bool
}

// NewRevealer creates a revealer driving machine.
func NewRevealer(machine *Machine) *Revealer {
	return &Revealer{machine: machine}
}

// Target sets the node to reveal. Setting the current target again is a
// no-op while it is still the active node.
func (r *Revealer) Target(id string) {
	if id == r.target && (id == "" || r.machine.ActiveID() == id) {
		return
	}
	r.target = id
	r.active = r.machine.ActiveID()
	r.activated = false
	r.done = false
}

// Current returns the target id, or "".
func (r *Revealer) Current() string {
	return r.target
}

// Clear drops the target.
func (r *Revealer) Clear() {
	r.Target("")
}

// Check re-evaluates the target against the current maps and returns the
// commands needed to make progress.
func (r *Revealer) Check(nodes models.NodeMap, children models.AdjacencyMap) (Reveal, []Command) {
	if r.target == "" {
		return RevealIdle, nil
	}
	if r.machine.ActiveID() != r.active {
		r.Clear()
		return RevealIdle, nil
	}
	if r.done {
		return RevealSatisfied, nil
	}
	if nodes.Get(r.target) == nil {
		if r.target == r.machine.RootID() {
			return RevealPending, []Command{{Kind: FetchNode, ID: r.target}, {Kind: FetchChildren, ID: r.target}}
		}
		return RevealPending, []Command{{Kind: FetchNode, ID: r.target}}
	}

	state := r.resolve(nodes, children)
	if state == RevealSatisfied && r.activated {
		r.done = true
		return state, nil
	}

	cmds := r.machine.Activate(r.target, nodes, children)
	r.activated = true
	r.active = r.machine.ActiveID()

	state = r.resolve(nodes, children)
	if state == RevealSatisfied {
		r.done = true
	}
	return state, cmds
}

// resolve reports whether every link of the target's ancestor chain is
// present in its parent's known child list.
func (r *Revealer) resolve(nodes models.NodeMap, children models.AdjacencyMap) Reveal {
	rootID := r.machine.RootID()
	if r.target == rootID {
		return RevealSatisfied
	}

	chain, missing := Ancestors(r.target, rootID, nodes)
	if missing != "" {
		return RevealPending
	}
	if len(chain) == 0 || chain[0] != rootID {
		return RevealUnreachable
	}

	path := append(chain, r.target)
	for i := 0; i < len(path)-1; i++ {
		kids, known := children.Lookup(path[i])
		if !known || !containsID(kids, path[i+1]) {
			return RevealPending
		}
	}
	return RevealSatisfied
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
