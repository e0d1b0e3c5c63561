// Package navtree models the documentation navigation index: the NAVTREE
// hierarchy, its NAVTREEINDEX shard list and the panel synchronisation strings.
package navtree

const (
	// DefaultSyncOnMessage is shown while panel synchronisation is enabled.
	DefaultSyncOnMessage = "click to disable panel synchronisation"
	// DefaultSyncOffMessage is shown while panel synchronisation is disabled.
	DefaultSyncOffMessage = "click to enable panel synchronisation"

	// DefaultShardSize is the number of links stored per navtreeindex script.
	DefaultShardSize = 250
)

// Node is one entry of the navigation tree.
//
// Children is nil for a leaf. When non-nil it must hold at least one node.
// Script names a deferred child script; the children are then written to
// "<Script>.js" instead of inline. A node read back from disk may carry a
// Script with nil Children when the script file was not loaded.
type Node struct {
	Label    string
	Link     string
	Children []*Node
	Script   string
}

// Leaf returns a node without children.
func Leaf(label, link string) *Node {
	return &Node{Label: label, Link: link}
}

// Group returns a node holding children inline.
func Group(label, link string, children ...*Node) *Node {
	return &Node{Label: label, Link: link, Children: children}
}

// Deferred returns a node whose children live in a separate script.
func Deferred(label, link, script string, children ...*Node) *Node {
	return &Node{Label: label, Link: link, Script: script, Children: children}
}

// IsLeaf reports whether the node has neither inline children nor a script.
func (n *Node) IsLeaf() bool {
	return n.Children == nil && n.Script == ""
}

// Unresolved reports whether the node references a script that was not loaded.
func (n *Node) Unresolved() bool {
	return n.Script != "" && n.Children == nil
}

// Append adds children, turning a leaf into a parent.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Messages holds the two labels of the panel synchronisation toggle.
type Messages struct {
	SyncOn  string
	SyncOff string
}

// DefaultMessages returns the stock toggle labels.
func DefaultMessages() Messages {
	return Messages{SyncOn: DefaultSyncOnMessage, SyncOff: DefaultSyncOffMessage}
}

// Tree is the complete navigation index.
type Tree struct {
	Root     *Node
	Index    []string
	Messages Messages
}

// Scripts returns every node carrying a deferred script, in pre-order.
func (t *Tree) Scripts() []*Node {
	var out []*Node
	_ = Walk(t.Root, func(n *Node, _ []int) error {
		if n.Script != "" {
			out = append(out, n)
		}
		return nil
	})
	return out
}

// Resolved reports whether every referenced script has been loaded.
func (t *Tree) Resolved() bool {
	for _, n := range t.Scripts() {
		if n.Unresolved() {
			return false
		}
	}
	return true
}
