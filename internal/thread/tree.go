// Package thread builds the parent/child forest for a topic from the flat
// message mapping owned by the sync engine.
package thread

import (
	"sort"

	"github.com/adamavenir/branch/internal/types"
)

// Node decorates a message with its ordered children. Nodes are rebuilt on
// every update; nothing outside a single render holds onto them.
type Node struct {
	types.Message
	Children []*Node
}

// Build converts the id → message mapping into a forest of roots. A message
// whose parent id is absent or unresolvable becomes a root — a child that
// arrives before its parent renders at top level rather than disappearing.
// Children and roots are ordered ascending by id, which matches creation
// order since ids are server-assigned monotonically.
func Build(messages map[int64]types.Message) []*Node {
	nodes := make(map[int64]*Node, len(messages))
	ids := make([]int64, 0, len(messages))
	for id, msg := range messages {
		nodes[id] = &Node{Message: msg}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var roots []*Node
	for _, id := range ids {
		node := nodes[id]
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// Count returns the total number of nodes in the forest.
func Count(roots []*Node) int {
	total := 0
	for _, root := range roots {
		total += 1 + Count(root.Children)
	}
	return total
}

// Walk visits every node depth-first, parents before children, with the
// nesting depth of each node.
func Walk(roots []*Node, visit func(node *Node, depth int)) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, node := range nodes {
			visit(node, depth)
			walk(node.Children, depth+1)
		}
	}
	walk(roots, 0)
}
