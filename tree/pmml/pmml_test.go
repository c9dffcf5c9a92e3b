package pmml_test

import (
	"bytes"
	"encoding/xml"
	"testing"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/tree"
	"github.com/modelop/sapling/tree/pmml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pmmlTestTree() (*tree.Tree, []*feature.Field) {
	color := feature.NewCategoricalField("color", feature.Active, "red", "green", "blue")
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	note := feature.NewCategoricalField("note", feature.Ignored)
	label := feature.NewCategoricalField("label", feature.Predicted)

	t := tree.New(&tree.Node{
		Criterion: feature.NewTrue(),
		Score:     "cool",
		Weight:    9,
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
			{Criterion: feature.NewNotEqual(color, "red"), Score: "cool", Weight: 6},
		},
	}, label)
	return t, []*feature.Field{color, x, note, label}
}

func TestWriteTreeModel(t *testing.T) {
	tr, fields := pmmlTestTree()
	var buf bytes.Buffer
	require.NoError(t, pmml.WriteTreeModel(tr, fields, &buf))
	out := buf.String()

	require.NoError(t, xml.Unmarshal(buf.Bytes(), &struct{}{}),
		"the document must be well-formed XML")
	assert.Contains(t, out, `xmlns="http://www.dmg.org/PMML-4_3"`)
	assert.Contains(t, out, `version="4.3"`)
	assert.Contains(t, out, `numberOfFields="4"`)
	assert.Contains(t, out, `<DataField name="color" optype="categorical" dataType="string">`)
	assert.Contains(t, out, `<Value value="red">`)
	assert.Contains(t, out, `<MiningField name="label" usageType="predicted">`)
	assert.Contains(t, out, `<MiningField name="x" usageType="active">`)
	assert.NotContains(t, out, `name="note"`, "ignored fields stay off the mining schema")
	assert.Contains(t, out, `<TreeModel functionName="classification">`)
	assert.Contains(t, out, `<Node score="cool" recordCount="9">`)
	assert.Contains(t, out, `<SimplePredicate field="color" operator="equal" value="red">`)
	assert.Contains(t, out, `<SimplePredicate field="x" operator="greaterThan" value="5">`)
	assert.Contains(t, out, `<True>`)
}

func TestWriteRuleSetModel(t *testing.T) {
	tr, fields := pmmlTestTree()
	var buf bytes.Buffer
	require.NoError(t, pmml.WriteRuleSetModel(tr.RuleSet(), fields, &buf))
	out := buf.String()

	require.NoError(t, xml.Unmarshal(buf.Bytes(), &struct{}{}),
		"the document must be well-formed XML")
	assert.Contains(t, out, `<RuleSetModel functionName="classification">`)
	assert.Contains(t, out, `<RuleSet defaultScore="cool">`, "the unconditional root rule sets the default score")
	assert.Contains(t, out, `<RuleSelectionMethod criterion="firstHit">`)
	assert.Contains(t, out, `<CompoundPredicate booleanOperator="and">`)
	assert.Contains(t, out, `<SimpleRule score="hot" recordCount="1">`)
}
