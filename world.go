package sapling

import (
	"math/rand"

	"github.com/modelop/sapling/feature"
)

/*
World is a node of the hypothesis tree: a bounded ensemble of competing
candidate splits for the events that reach it. The root conditions on
nothing; every other world conditions on the split that created it.

Each branch (true/false) of a world owns a pool of mature splits,
truncated by cached gain to the configured trial budget, a pool of
immature splits still accumulating events, and an ordered list of child
worlds keyed by the branch's currently most-promising mature splits.
Child worlds are dropped, by reference, as soon as their governing
split falls out of that set.
*/
type World struct {
	level    int
	split    *Split
	branches [2]branch
}

type childWorld struct {
	split *Split
	world *World
}

type branch struct {
	mature   []*Split
	immature []*Split
	children []childWorld
}

func newWorld(level int, split *Split) *World {
	return &World{level: level, split: split}
}

// Level returns the depth of the world on the hypothesis tree, 0 for
// the root.
func (w *World) Level() int {
	return w.level
}

// Split returns the split the world is conditioned on, nil at the
// root.
func (w *World) Split() *Split {
	return w.split
}

func branchIndex(decision bool) int {
	if decision {
		return 0
	}
	return 1
}

/*
Increment folds one event into the world and, recursively, into its
current child worlds. The event is routed to the branch selected by the
world's split (the true branch at the root), where:

 1. the split pools are topped up with fresh candidates sampled from
    uniformly-chosen mature features, so new candidates also receive
    this event;
 2. every split on the branch, mature or not, counts the event;
 3. newly-mature splits are promoted to the mature pool;
 4. every mature split's gain is recomputed and cached;
 5. the mature pool is truncated to the trial budget by cached gain,
    residents winning ties;
 6. below the depth limit, the branch's child worlds are reconciled
    against the top mature splits by maturity counter, and every
    remaining child receives the event.
*/
func (w *World) Increment(s feature.Sample, label string, matureFeatures []*Feature, cfg *Config, rng *rand.Rand) error {
	decision := true
	if w.split != nil {
		var err error
		decision, err = w.split.Decision(s)
		if err != nil {
			return err
		}
	}
	br := &w.branches[branchIndex(decision)]
	for len(br.mature)+len(br.immature) <= cfg.TrialsToKeep {
		ft := matureFeatures[rng.Intn(len(matureFeatures))]
		br.immature = append(br.immature, ft.RandomSplit(rng, cfg.SplitMaturityThreshold))
	}
	for _, sp := range br.mature {
		if err := sp.Increment(s, label); err != nil {
			return err
		}
	}
	for _, sp := range br.immature {
		if err := sp.Increment(s, label); err != nil {
			return err
		}
	}
	still := br.immature[:0]
	for _, sp := range br.immature {
		if sp.mature {
			br.mature = append(br.mature, sp)
		} else {
			still = append(still, sp)
		}
	}
	br.immature = still
	for _, sp := range br.mature {
		sp.refreshGain()
	}
	if len(br.mature) > cfg.TrialsToKeep {
		br.mature = topSplits(br.mature, cfg.TrialsToKeep, func(sp *Split) float64 { return sp.gain })
	}
	if w.level < cfg.TreeDepth {
		branchable := topSplits(br.mature, cfg.WorldsToSplit, func(sp *Split) float64 { return float64(sp.maturity) })
		br.reconcileChildren(branchable, w.level+1)
		for _, cw := range br.children {
			if err := cw.world.Increment(s, label, matureFeatures, cfg, rng); err != nil {
				return err
			}
		}
	}
	return nil
}

// reconcileChildren drops children whose split is no longer branchable
// and creates a child for every branchable split lacking one.
func (b *branch) reconcileChildren(branchable []*Split, level int) {
	kept := b.children[:0]
	for _, cw := range b.children {
		if containsSplit(branchable, cw.split) {
			kept = append(kept, cw)
		}
	}
	b.children = kept
	for _, sp := range branchable {
		if !b.hasChildFor(sp) {
			b.children = append(b.children, childWorld{split: sp, world: newWorld(level, sp)})
		}
	}
}

func (b *branch) hasChildFor(sp *Split) bool {
	for _, cw := range b.children {
		if cw.split == sp {
			return true
		}
	}
	return false
}

func containsSplit(splits []*Split, sp *Split) bool {
	for _, c := range splits {
		if c == sp {
			return true
		}
	}
	return false
}

/*
topSplits selects the k splits with the largest keys, in descending key
order, by bounded insertion rather than a full sort. Comparison is
strictly greater, so on ties the split already resident in the
selection keeps its place against a later challenger.
*/
func topSplits(splits []*Split, k int, key func(*Split) float64) []*Split {
	if len(splits) <= k {
		return splits
	}
	top := make([]*Split, 0, k)
	for _, sp := range splits {
		pos := len(top)
		for pos > 0 && key(sp) > key(top[pos-1]) {
			pos--
		}
		if pos == k {
			continue
		}
		if len(top) < k {
			top = append(top, nil)
		}
		copy(top[pos+1:], top[pos:len(top)-1])
		top[pos] = sp
	}
	return top
}
