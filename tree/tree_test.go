package tree_test

import (
	"context"
	"testing"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/stream"
	"github.com/modelop/sapling/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testColor = feature.NewCategoricalField("color", feature.Active)
	testX     = feature.NewContinuousField("x", feature.Active, feature.Double)
	testLabel = feature.NewCategoricalField("label", feature.Predicted)
)

// testTree builds a small two-level tree by hand:
//
//	root (score cool)
//	├── color = red          -> warm
//	│   ├── x > 5            -> hot
//	│   └── x <= 5           -> warm
//	└── color != red         -> cool
func testTree() *tree.Tree {
	root := &tree.Node{
		Criterion: feature.NewTrue(),
		Score:     "cool",
		Weight:    10,
		Children: []*tree.Node{
			{
				Criterion: feature.NewEqual(testColor, "red"),
				Score:     "warm",
				Weight:    4,
				Children: []*tree.Node{
					{Criterion: feature.NewGreaterThan(testX, 5), Score: "hot", Weight: 1},
					{Criterion: feature.NewLessOrEqual(testX, 5), Score: "warm", Weight: 3},
				},
			},
			{Criterion: feature.NewNotEqual(testColor, "red"), Score: "cool", Weight: 6},
		},
	}
	return tree.New(root, testLabel)
}

func TestTreeClassify(t *testing.T) {
	tr := testTree()

	cases := []struct {
		name   string
		values map[string]interface{}
		score  string
	}{
		{"deep true branch", map[string]interface{}{"color": "red", "x": 7.0}, "hot"},
		{"deep false branch", map[string]interface{}{"color": "red", "x": 3.0}, "warm"},
		{"shallow false branch", map[string]interface{}{"color": "blue", "x": 7.0}, "cool"},
		{"missing x stops at the parent", map[string]interface{}{"color": "red"}, "warm"},
		{"missing color stops at the root", map[string]interface{}{"x": 7.0}, "cool"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			score, err := tr.Classify(feature.NewSample(c.values))
			require.NoError(t, err)
			assert.Equal(t, c.score, score)
		})
	}
}

func TestTreeClassifyNoScore(t *testing.T) {
	tr := tree.New(&tree.Node{Criterion: feature.NewTrue()}, testLabel)
	_, err := tr.Classify(feature.NewSample(nil))
	assert.Equal(t, tree.ErrNoScore, err)

	var nilTree *tree.Tree
	_, err = nilTree.Classify(feature.NewSample(nil))
	assert.Error(t, err, "a nil tree cannot classify")
}

// TestRuleSetMatchesTree verifies the flattened rule set classifies
// exactly like the tree it came from.
func TestRuleSetMatchesTree(t *testing.T) {
	tr := testTree()
	rs := tr.RuleSet()

	require.Len(t, rs.Rules, 5, "one rule per node")
	assert.Same(t, testLabel, rs.Label)
	last := rs.Rules[len(rs.Rules)-1]
	assert.Empty(t, last.Criteria, "the root contributes the last, unconditional rule")
	assert.Equal(t, "cool", last.Score)

	samples := []map[string]interface{}{
		{"color": "red", "x": 7.0},
		{"color": "red", "x": 3.0},
		{"color": "blue", "x": 7.0},
		{"color": "red"},
		{"x": 2.0},
		{},
	}
	for _, values := range samples {
		s := feature.NewSample(values)
		want, err := tr.Classify(s)
		require.NoError(t, err)
		got, err := rs.Classify(s)
		require.NoError(t, err)
		assert.Equal(t, want, got, "rule set diverges from tree on %v", values)
	}
}

func TestTreeTest(t *testing.T) {
	tr := testTree()
	s := stream.NewSlice([]feature.Sample{
		feature.NewSample(map[string]interface{}{"color": "red", "x": 7.0, "label": "hot"}),
		feature.NewSample(map[string]interface{}{"color": "red", "x": 3.0, "label": "warm"}),
		feature.NewSample(map[string]interface{}{"color": "blue", "x": 1.0, "label": "warm"}),
		feature.NewSample(map[string]interface{}{"color": "green", "x": 2.0, "label": "cool"}),
	})
	rate, unscored, err := tr.Test(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0.75, rate, "three of four samples score correctly")
	assert.Zero(t, unscored)
}

func TestTreeTestUnscoredSamples(t *testing.T) {
	tr := tree.New(&tree.Node{Criterion: feature.NewTrue()}, testLabel)
	s := stream.NewSlice([]feature.Sample{
		feature.NewSample(map[string]interface{}{"label": "warm"}),
		feature.NewSample(map[string]interface{}{"label": "cool"}),
	})
	rate, unscored, err := tr.Test(context.Background(), s)
	require.NoError(t, err)
	assert.Zero(t, rate)
	assert.Equal(t, 2, unscored, "a scoreless tree scores nothing")
}

func TestTreeTraverse(t *testing.T) {
	tr := testTree()

	var topdown []string
	require.NoError(t, tr.Traverse(false, func(n *tree.Node) error {
		topdown = append(topdown, n.Score)
		return nil
	}))
	assert.Equal(t, []string{"cool", "warm", "hot", "warm", "cool"}, topdown)

	var bottomup []string
	require.NoError(t, tr.Traverse(true, func(n *tree.Node) error {
		bottomup = append(bottomup, n.Score)
		return nil
	}))
	assert.Equal(t, []string{"hot", "warm", "warm", "cool", "cool"}, bottomup)
}

func TestTreeString(t *testing.T) {
	out := testTree().String()
	assert.Contains(t, out, "color is red")
	assert.Contains(t, out, "score hot")
}
