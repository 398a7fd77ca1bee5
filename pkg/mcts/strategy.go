package mcts

// Visit is one in-tree step of a rollout: the node it left, the action it
// took and the reward it got for it
type Visit struct {
	Node   int
	Action int
	Reward float64
}

type StrategyLike interface {
	// Propagate the return of a rollout along its in-tree path, 'tail' is the
	// discounted return collected after leaving the tree
	Backpropagate(tree *Tree, path []Visit, tail float64)
}

// Discounted backup, a node gets its own reward plus the discounted return of the rest
type DiscountedBackup struct {
	Discount float64
}

func (b DiscountedBackup) Backpropagate(tree *Tree, path []Visit, tail float64) {
	ret := tail
	for i := len(path) - 1; i >= 0; i-- {
		v := path[i]
		ret = v.Reward + b.Discount*ret
		tree.Nodes[v.Node].Add(v.Action, ret)
	}
}
