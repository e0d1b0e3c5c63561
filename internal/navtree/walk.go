package navtree

import "errors"

// SkipChildren can be returned by a WalkFunc to skip a node's descendants.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node. path holds the child positions from the
// root, so the root itself has an empty path.
type WalkFunc func(n *Node, path []int) error

// Walk visits the tree depth-first in pre-order, descending into loaded
// script children as if they were inline.
func Walk(root *Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	err := walk(root, nil, fn)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func walk(n *Node, path []int, fn WalkFunc) error {
	if err := fn(n, path); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	for i, child := range n.Children {
		childPath := make([]int, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = i
		if err := walk(child, childPath, fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes reachable from root, root included.
func Count(root *Node) int {
	count := 0
	_ = Walk(root, func(*Node, []int) error {
		count++
		return nil
	})
	return count
}
