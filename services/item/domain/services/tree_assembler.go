package services

import (
	"github.com/google/uuid"

	"github.com/ghuser/itemtree/services/item/domain/models"
)

// TreeNode is one item with its children attached.
type TreeNode struct {
	Item     *models.Item
	Children []*TreeNode
}

// Assemble links a flat, tenant-scoped item list into a forest in O(n).
//
// An item whose parent is in the list becomes that parent's child. Otherwise it
// is a root, unless rootID is set, in which case only the item with that id is
// returned as a root and orphans are dropped. Child order follows input order,
// so callers sort beforehand when display order matters.
func Assemble(items []*models.Item, rootID *uuid.UUID) []*TreeNode {
	nodes := make(map[uuid.UUID]*TreeNode, len(items))
	for _, it := range items {
		nodes[it.ID] = &TreeNode{Item: it, Children: []*TreeNode{}}
	}

	roots := make([]*TreeNode, 0)
	for _, it := range items {
		node := nodes[it.ID]
		if it.ParentID != nil {
			if parent, ok := nodes[*it.ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		if rootID == nil || it.ID == *rootID {
			roots = append(roots, node)
		}
	}
	return roots
}

// CountNodes returns the number of nodes reachable from roots. It walks with an
// explicit stack so very deep trees cannot exhaust the goroutine stack.
func CountNodes(roots []*TreeNode) int {
	stack := append([]*TreeNode(nil), roots...)
	n := 0
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, node.Children...)
	}
	return n
}
