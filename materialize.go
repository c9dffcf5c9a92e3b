package sapling

import (
	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/tree"
)

/*
Materialize walks the hypothesis tree, without mutating it, and emits
the best tree currently known: a root leaf scored with the running
majority label, extended through the highest-gain branchable child at
each level.

Non-root nodes emit a true-branch leaf and a false-branch leaf carrying
the split's predicate and its complement, each scored by majority vote
under that outcome. A side is extended into a subtree only while both
sides of the node have at least one branchable child; when only one
side does, both stay terminal.

Calling Materialize twice with no Update in between yields identical
trees.
*/
func (d *Driver) Materialize() *tree.Tree {
	var weight float64
	for _, c := range d.labelCounts {
		weight += c
	}
	root := &tree.Node{
		Criterion: feature.NewTrue(),
		Score:     d.MajorityLabel(),
		Weight:    weight,
	}
	if cw := bestChild(&d.root.branches[branchIndex(true)]); cw != nil {
		root.Children = materializeWorld(cw.world)
	}
	return tree.New(root, d.label)
}

// bestChild returns the branch's child with the highest cached gain,
// by a single max scan, or nil when the branch has no children.
func bestChild(br *branch) *childWorld {
	var best *childWorld
	for i := range br.children {
		cw := &br.children[i]
		if best == nil || cw.split.gain > best.split.gain {
			best = cw
		}
	}
	return best
}

func materializeWorld(w *World) []*tree.Node {
	sp := w.split
	trueNode := &tree.Node{
		Criterion: sp.Criterion(true),
		Score:     sp.Score(OutcomeTrue),
		Weight:    sp.all.pass,
	}
	falseNode := &tree.Node{
		Criterion: sp.Criterion(false),
		Score:     sp.Score(OutcomeFalse),
		Weight:    sp.all.fail,
	}
	trueChild := bestChild(&w.branches[branchIndex(true)])
	falseChild := bestChild(&w.branches[branchIndex(false)])
	if trueChild != nil && falseChild != nil {
		trueNode.Children = materializeWorld(trueChild.world)
		falseNode.Children = materializeWorld(falseChild.world)
	}
	return []*tree.Node{trueNode, falseNode}
}
