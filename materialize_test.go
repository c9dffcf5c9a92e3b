package sapling

import (
	"testing"

	"github.com/modelop/sapling/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countedSplit builds a mature split over the given per-label outcome
// counts and refreshes its cached gain, bypassing the sampling path.
func countedSplit(f *feature.Field, threshold float64, counts map[string][2]float64) *Split {
	sp := newGreaterThanSplit(f, threshold, 1)
	sp.mature = true
	for label, c := range counts {
		sp.labels = append(sp.labels, label)
		sp.counts[label] = &outcomeCounts{total: c[0] + c[1], pass: c[0], fail: c[1]}
		sp.all.total += c[0] + c[1]
		sp.all.pass += c[0]
		sp.all.fail += c[1]
	}
	sp.refreshGain()
	return sp
}

// TestMaterializeOneSidedChildStaysTerminal pins the extension rule: a
// node's leaves grow subtrees only when both its true and false
// branches have a child to extend into. With a child on one side only,
// both leaves stay terminal.
func TestMaterializeOneSidedChildStaysTerminal(t *testing.T) {
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	label := feature.NewCategoricalField("label", feature.Predicted)

	rootSplit := countedSplit(x, 5, map[string][2]float64{
		"high": {6, 0},
		"low":  {0, 6},
	})
	deepSplit := countedSplit(x, 8, map[string][2]float64{
		"high": {3, 3},
	})

	child := newWorld(1, rootSplit)
	// a grandchild on the true branch only
	child.branches[branchIndex(true)].children = []childWorld{
		{split: deepSplit, world: newWorld(2, deepSplit)},
	}

	d := &Driver{
		label:       label,
		labelCounts: map[string]float64{"high": 6, "low": 6},
		labelOrder:  []string{"high", "low"},
		root:        newWorld(0, nil),
	}
	d.root.branches[branchIndex(true)].children = []childWorld{
		{split: rootSplit, world: child},
	}

	tr := d.Materialize()
	require.Len(t, tr.Root.Children, 2)
	trueNode, falseNode := tr.Root.Children[0], tr.Root.Children[1]
	assert.Equal(t, "high", trueNode.Score)
	assert.Equal(t, "low", falseNode.Score)
	assert.Empty(t, trueNode.Children, "a one-sided child must not extend the true leaf")
	assert.Empty(t, falseNode.Children, "a one-sided child must not extend the false leaf")
}

// TestMaterializeExtendsThroughBothSides is the counterpart: children
// on both branches extend both leaves.
func TestMaterializeExtendsThroughBothSides(t *testing.T) {
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	label := feature.NewCategoricalField("label", feature.Predicted)

	rootSplit := countedSplit(x, 5, map[string][2]float64{
		"high": {6, 0},
		"low":  {0, 6},
	})
	trueSideSplit := countedSplit(x, 8, map[string][2]float64{"high": {3, 3}})
	falseSideSplit := countedSplit(x, 2, map[string][2]float64{"low": {3, 3}})

	child := newWorld(1, rootSplit)
	child.branches[branchIndex(true)].children = []childWorld{
		{split: trueSideSplit, world: newWorld(2, trueSideSplit)},
	}
	child.branches[branchIndex(false)].children = []childWorld{
		{split: falseSideSplit, world: newWorld(2, falseSideSplit)},
	}

	d := &Driver{
		label:       label,
		labelCounts: map[string]float64{"high": 6, "low": 6},
		labelOrder:  []string{"high", "low"},
		root:        newWorld(0, nil),
	}
	d.root.branches[branchIndex(true)].children = []childWorld{
		{split: rootSplit, world: child},
	}

	tr := d.Materialize()
	require.Len(t, tr.Root.Children, 2)
	assert.Len(t, tr.Root.Children[0].Children, 2, "both-sided children must extend the true leaf")
	assert.Len(t, tr.Root.Children[1].Children, 2, "both-sided children must extend the false leaf")
}

// TestMaterializeBestChildByGain verifies the highest-gain child is
// the one the emitted tree extends through.
func TestMaterializeBestChildByGain(t *testing.T) {
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	label := feature.NewCategoricalField("label", feature.Predicted)

	weak := countedSplit(x, 3, map[string][2]float64{
		"high": {3, 3},
		"low":  {3, 3},
	})
	strong := countedSplit(x, 5, map[string][2]float64{
		"high": {6, 0},
		"low":  {0, 6},
	})
	require.Greater(t, strong.gain, weak.gain)

	d := &Driver{
		label:       label,
		labelCounts: map[string]float64{"high": 6, "low": 6},
		labelOrder:  []string{"high", "low"},
		root:        newWorld(0, nil),
	}
	d.root.branches[branchIndex(true)].children = []childWorld{
		{split: weak, world: newWorld(1, weak)},
		{split: strong, world: newWorld(1, strong)},
	}

	tr := d.Materialize()
	require.Len(t, tr.Root.Children, 2)
	gt, ok := tr.Root.Children[0].Criterion.(*feature.GreaterThan)
	require.True(t, ok)
	assert.Equal(t, 5.0, gt.Threshold(), "the emitted tree must extend through the highest-gain child")
}
