package mcts

import "github.com/IlikeChooros/go-hdagger/pkg/grid"

type childKey struct {
	action int
	obs    uint64
}

type Node struct {
	NodeStats
	// Index of the parent node, -1 for the root
	Parent   int
	Terminal bool
	children map[childKey]int
}

// Tree is an append-only arena of nodes addressed by index, the root is node 0.
// Built fresh for every decision.
type Tree struct {
	Nodes      []Node
	numActions int
	policy     ChildPolicy
}

func NewTree(numActions int, policy ChildPolicy) *Tree {
	tree := &Tree{
		Nodes:      make([]Node, 0, 256),
		numActions: numActions,
		policy:     policy,
	}
	tree.add(-1, false)
	return tree
}

func (t *Tree) add(parent int, terminal bool) int {
	t.Nodes = append(t.Nodes, Node{
		NodeStats: newNodeStats(t.numActions),
		Parent:    parent,
		Terminal:  terminal,
	})
	return len(t.Nodes) - 1
}

func (t *Tree) key(action int, obs grid.Observation) childKey {
	if t.policy == ChildrenByAction {
		return childKey{action: action}
	}
	return childKey{action: action, obs: obs.Hash()}
}

func (t *Tree) Root() *Node {
	return &t.Nodes[0]
}

func (t *Tree) Size() int {
	return len(t.Nodes)
}

// Index of the child reached from 'node' by 'action' and 'obs'
func (t *Tree) Child(node, action int, obs grid.Observation) (int, bool) {
	idx, ok := t.Nodes[node].children[t.key(action, obs)]
	return idx, ok
}

// Returns the child for (action, obs), creating it if needed
func (t *Tree) Descend(node, action int, obs grid.Observation, terminal bool) int {
	if idx, ok := t.Child(node, action, obs); ok {
		return idx
	}
	idx := t.add(node, terminal)
	// t.add may have moved the arena
	if t.Nodes[node].children == nil {
		t.Nodes[node].children = make(map[childKey]int, t.numActions)
	}
	t.Nodes[node].children[t.key(action, obs)] = idx
	return idx
}
