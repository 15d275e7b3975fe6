// Package timestats builds a hierarchical timing tree for a single
// execution: callers mark the start and end of named work units (and
// standalone checkpoints) with Profile, and the library renders a
// color-coded report of elapsed time and percentage share per node.
//
// A Profiler is not safe for concurrent use. It assumes a single
// logical thread of control; callers that share one instance across
// goroutines must synchronize externally.
package timestats

import (
	"time"
)

// Node is a single timing record in the tree. Nodes are created by
// Profile calls and by the merge helpers; they are never removed from
// the tree, only popped from the scope stack when a scope closes.
type Node struct {
	startTime time.Time
	elapsed   time.Duration
	finalized bool
	action    string
	comment   string
	uid       string

	// parent is a plain back-reference. The tree is owned root-down by
	// the Profiler; the garbage collector handles the cycle, so no
	// arena or weak-pointer scheme is needed.
	parent   *Node
	children []*Node
}

// UID returns the node's identifier, either caller-assigned or the
// auto-assigned decimal counter value.
func (n *Node) UID() string { return n.uid }

// Action returns the scope label, empty for point events.
func (n *Node) Action() string { return n.action }

// Comment returns the free-text annotation.
func (n *Node) Comment() string { return n.comment }

// Start returns the wall-clock instant the node was created.
func (n *Node) Start() time.Time { return n.startTime }

// Elapsed returns the node's duration and whether it has been
// finalized. An open scope reports false until its matching end call.
func (n *Node) Elapsed() (time.Duration, bool) { return n.elapsed, n.finalized }

// Parent returns the owning node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in chronological creation
// order. The returned slice is the live backing slice; callers must
// not modify it.
func (n *Node) Children() []*Node { return n.children }

// IsScope reports whether the node opened a named scope.
func (n *Node) IsScope() bool { return n.action != "" }

func (n *Node) appendChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
}

// walk visits n and its descendants pre-order, children in insertion
// order. The visit stops when fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// findByUID returns the first node (pre-order) whose uid matches, or
// nil. Pre-order makes the result deterministic when uids collide.
func (n *Node) findByUID(uid string) *Node {
	var found *Node
	n.walk(func(node *Node) bool {
		if node.uid == uid {
			found = node
			return false
		}
		return true
	})
	return found
}

// label joins action and comment for display: both present → joined
// with " - ", otherwise whichever is non-empty.
func (n *Node) label() string {
	switch {
	case n.action != "" && n.comment != "":
		return n.action + " - " + n.comment
	case n.action != "":
		return n.action
	default:
		return n.comment
	}
}
