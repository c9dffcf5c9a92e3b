package json_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/tree"
	"github.com/modelop/sapling/tree/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadTree(t *testing.T) {
	color := feature.NewCategoricalField("color", feature.Active)
	size := feature.NewOrdinalField("size", feature.Active, []string{"small", "large"})
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	label := feature.NewCategoricalField("label", feature.Predicted)
	fields := []*feature.Field{color, size, x, label}

	original := tree.New(&tree.Node{
		Criterion: feature.NewTrue(),
		Score:     "cool",
		Weight:    8,
		Children: []*tree.Node{
			{
				Criterion: feature.NewEqual(color, "red"),
				Score:     "warm",
				Weight:    3,
				Children: []*tree.Node{
					{Criterion: feature.NewGreaterThan(x, 5), Score: "hot", Weight: 1},
					{Criterion: feature.NewLessOrEqual(x, 5), Score: "warm", Weight: 2},
				},
			},
			{Criterion: feature.NewOrdinalGreaterThan(size, "small"), Score: "cool", Weight: 5},
		},
	}, label)

	var buf bytes.Buffer
	require.NoError(t, json.WriteTree(original, &buf))

	parsed, err := json.ReadTree(&buf, fields)
	require.NoError(t, err)
	assert.Same(t, label, parsed.Label)
	assert.Equal(t, original.String(), parsed.String(), "the parsed tree must match the original")

	for _, values := range []map[string]interface{}{
		{"color": "red", "x": 7.0},
		{"color": "red", "x": 2.0},
		{"color": "blue", "size": "large"},
		{},
	} {
		s := feature.NewSample(values)
		want, err := original.Classify(s)
		require.NoError(t, err)
		got, err := parsed.Classify(s)
		require.NoError(t, err)
		assert.Equal(t, want, got, "parsed tree diverges on %v", values)
	}
}

func TestReadTreeUnknownField(t *testing.T) {
	in := `{"label":"label","root":{"c":{"op":"true"},"nodes":[{"c":{"op":"equal","field":"ghost","value":"boo"}}]}}`
	label := feature.NewCategoricalField("label", feature.Predicted)
	_, err := json.ReadTree(strings.NewReader(in), []*feature.Field{label})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}
