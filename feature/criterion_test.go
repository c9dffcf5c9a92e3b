package feature_test

import (
	"testing"

	"github.com/modelop/sapling/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func satisfied(t *testing.T, c feature.Criterion, values map[string]interface{}) bool {
	t.Helper()
	ok, err := c.SatisfiedBy(feature.NewSample(values))
	require.NoError(t, err)
	return ok
}

func TestTrueCriterion(t *testing.T) {
	c := feature.NewTrue()
	assert.Nil(t, c.Field(), "the always-true criterion constrains no field")
	assert.True(t, satisfied(t, c, nil))
}

func TestEqualCriteria(t *testing.T) {
	color := feature.NewCategoricalField("color", feature.Active)
	eq := feature.NewEqual(color, "red")
	ne := feature.NewNotEqual(color, "red")

	assert.True(t, satisfied(t, eq, map[string]interface{}{"color": "red"}))
	assert.False(t, satisfied(t, eq, map[string]interface{}{"color": "blue"}))
	assert.False(t, satisfied(t, ne, map[string]interface{}{"color": "red"}))
	assert.True(t, satisfied(t, ne, map[string]interface{}{"color": "blue"}))

	assert.False(t, satisfied(t, eq, nil), "a missing value satisfies no equality criterion")
	assert.False(t, satisfied(t, ne, nil), "a missing value satisfies no equality criterion")
	assert.False(t, satisfied(t, eq, map[string]interface{}{"color": 1.0}), "a wrong-typed value satisfies no criterion")
}

func TestNumericCriteria(t *testing.T) {
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	gt := feature.NewGreaterThan(x, 5)
	le := feature.NewLessOrEqual(x, 5)

	assert.True(t, satisfied(t, gt, map[string]interface{}{"x": 5.5}))
	assert.False(t, satisfied(t, gt, map[string]interface{}{"x": 5.0}), "the boundary belongs to the false branch")
	assert.False(t, satisfied(t, le, map[string]interface{}{"x": 5.5}))
	assert.True(t, satisfied(t, le, map[string]interface{}{"x": 5.0}), "the boundary belongs to the true branch")

	assert.False(t, satisfied(t, gt, nil), "a missing value satisfies no numeric criterion")
	assert.False(t, satisfied(t, le, nil), "a missing value satisfies no numeric criterion")
}

func TestOrdinalCriteria(t *testing.T) {
	size := feature.NewOrdinalField("size", feature.Active, []string{"small", "medium", "large"})
	gt := feature.NewOrdinalGreaterThan(size, "medium")
	le := feature.NewOrdinalLessOrEqual(size, "medium")

	assert.True(t, satisfied(t, gt, map[string]interface{}{"size": "large"}))
	assert.False(t, satisfied(t, gt, map[string]interface{}{"size": "medium"}))
	assert.False(t, satisfied(t, gt, map[string]interface{}{"size": "small"}))
	assert.True(t, satisfied(t, le, map[string]interface{}{"size": "medium"}))
	assert.True(t, satisfied(t, le, map[string]interface{}{"size": "small"}))
	assert.False(t, satisfied(t, le, map[string]interface{}{"size": "large"}))

	assert.False(t, satisfied(t, gt, map[string]interface{}{"size": "huge"}), "values off the domain satisfy no ordinal criterion")
}

func TestCriterionStrings(t *testing.T) {
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	color := feature.NewCategoricalField("color", feature.Active)

	assert.Equal(t, "color is red", feature.NewEqual(color, "red").String())
	assert.Equal(t, "color is not red", feature.NewNotEqual(color, "red").String())
	assert.Contains(t, feature.NewGreaterThan(x, 5).String(), "x")
	assert.Contains(t, feature.NewLessOrEqual(x, 5).String(), "x")
}
