package sapling

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/modelop/sapling/feature"
)

/*
Feature accumulates online statistics for one active field of the
mining schema: the set of values observed so far for categorical
fields, a running count/sum/sum-of-squares for continuous fields, and
nothing for ordinal fields, whose domain is fixed up front.

A feature matures once it has observed a configured number of valid
values; maturity is sticky and never reverts. Only mature features may
be sampled for candidate splits.
*/
type Feature struct {
	field     *feature.Field
	threshold int
	maturity  int
	mature    bool

	values   []string
	valueSet map[string]bool

	count      float64
	sum        float64
	sumSquares float64
}

func newFeature(f *feature.Field, maturityThreshold int) *Feature {
	ft := &Feature{field: f, threshold: maturityThreshold}
	switch f.OpType() {
	case feature.Categorical:
		ft.valueSet = make(map[string]bool)
	case feature.Ordinal:
		// the domain is declared, not learned
		ft.mature = true
	}
	return ft
}

// Field returns the mining-schema field the statistics describe.
func (ft *Feature) Field() *feature.Field {
	return ft.field
}

// Mature reports whether the feature has observed enough valid values
// to be sampled for candidate splits.
func (ft *Feature) Mature() bool {
	return ft.mature
}

/*
Increment reads the sample's value for the feature's field and, when a
valid value is present, folds it into the running statistics and
advances the feature towards maturity. Missing and invalid values leave
the feature untouched. The returned boolean reports whether a valid
value was observed.
*/
func (ft *Feature) Increment(s feature.Sample) (bool, error) {
	v, err := s.ValueFor(ft.field)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	if ok, _ := ft.field.Valid(v); !ok {
		return false, nil
	}
	switch ft.field.OpType() {
	case feature.Categorical:
		vs := v.(string)
		if !ft.valueSet[vs] {
			ft.valueSet[vs] = true
			ft.values = append(ft.values, vs)
		}
	case feature.Continuous:
		vf := v.(float64)
		ft.count++
		ft.sum += vf
		ft.sumSquares += vf * vf
	}
	ft.maturity++
	if !ft.mature && ft.maturity >= ft.threshold {
		ft.mature = true
	}
	return true, nil
}

/*
RandomSplit samples a new candidate split from the feature's current
statistics: an equality test on a uniformly-chosen observed value for
categorical fields, a greater-than test on a draw from a Normal
distribution parameterized by the running mean and variance for
continuous fields (rounded for integer-typed fields), or a greater-than
test on a uniformly-chosen domain value for ordinal fields.

Sampling an immature feature is a caller bug and panics.
*/
func (ft *Feature) RandomSplit(rng *rand.Rand, maturityThreshold int) *Split {
	if !ft.mature {
		panic(fmt.Sprintf("sapling: sampled a split from immature feature %s", ft.field.Name()))
	}
	switch ft.field.OpType() {
	case feature.Categorical:
		v := ft.values[rng.Intn(len(ft.values))]
		return newEqualSplit(ft.field, v, maturityThreshold)
	case feature.Ordinal:
		domain := ft.field.Values()
		v := domain[rng.Intn(len(domain))]
		return newOrdinalGreaterThanSplit(ft.field, v, maturityThreshold)
	}
	mean := ft.sum / ft.count
	variance := ft.sumSquares/ft.count - mean*mean
	if variance < 0 {
		variance = 0
	}
	t := rng.NormFloat64()*math.Sqrt(variance) + mean
	if ft.field.DataType() == feature.Integer {
		t = math.Round(t)
	}
	return newGreaterThanSplit(ft.field, t, maturityThreshold)
}
