package sapling

import (
	"fmt"
	"math"

	"github.com/modelop/sapling/feature"
)

// Outcome selects which slice of a split's counters an entropy,
// fraction or score computation conditions on.
type Outcome int

const (
	// OutcomeNone conditions on nothing: all events the split has seen.
	OutcomeNone Outcome = iota
	// OutcomeTrue conditions on events that passed the split's test.
	OutcomeTrue
	// OutcomeFalse conditions on events that failed the split's test.
	OutcomeFalse
)

type splitOp int

const (
	opEqual splitOp = iota
	opGreaterThan
)

type outcomeCounts struct {
	total float64
	pass  float64
	fail  float64
}

func (c *outcomeCounts) of(o Outcome) float64 {
	switch o {
	case OutcomeTrue:
		return c.pass
	case OutcomeFalse:
		return c.fail
	}
	return c.total
}

/*
Split is a candidate binary test on one field: an equality test on a
categorical value, or a greater-than test on a continuous threshold or
ordinal domain value. It counts, per classification label and per
outcome, the events it has been fed, and derives Shannon entropy,
conditional fractions and information gain from those counters.

Splits are identity-keyed: two structurally identical splits sampled
independently are distinct candidates and are never deduplicated. Like
features, splits mature stickily after a configured number of events.
*/
type Split struct {
	field     *feature.Field
	op        splitOp
	value     string
	threshold float64

	labels []string
	counts map[string]*outcomeCounts
	all    outcomeCounts

	maturityThreshold int
	maturity          int
	mature            bool

	gain float64
}

func newEqualSplit(f *feature.Field, value string, maturityThreshold int) *Split {
	return newSplit(f, opEqual, value, 0, maturityThreshold)
}

func newGreaterThanSplit(f *feature.Field, threshold float64, maturityThreshold int) *Split {
	return newSplit(f, opGreaterThan, "", threshold, maturityThreshold)
}

func newOrdinalGreaterThanSplit(f *feature.Field, value string, maturityThreshold int) *Split {
	return newSplit(f, opGreaterThan, value, 0, maturityThreshold)
}

func newSplit(f *feature.Field, op splitOp, value string, threshold float64, maturityThreshold int) *Split {
	return &Split{
		field:             f,
		op:                op,
		value:             value,
		threshold:         threshold,
		counts:            make(map[string]*outcomeCounts),
		maturityThreshold: maturityThreshold,
	}
}

// Field returns the field the split tests.
func (sp *Split) Field() *feature.Field {
	return sp.field
}

// Mature reports whether the split has counted enough events for its
// statistics to be trusted.
func (sp *Split) Mature() bool {
	return sp.mature
}

/*
Decision evaluates the split's test against the given sample: equality
with the split value for equality splits, numeric comparison against
the threshold for continuous greater-than splits, and domain-rank
comparison for ordinal greater-than splits. A sample without a usable
value for the field yields an error: callers are expected to have
screened the event for completeness.
*/
func (sp *Split) Decision(s feature.Sample) (bool, error) {
	v, err := s.ValueFor(sp.field)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, fmt.Errorf("deciding split on %s: sample carries no value", sp.field.Name())
	}
	if sp.op == opEqual {
		vs, ok := v.(string)
		if !ok {
			return false, fmt.Errorf("deciding split on %s: expected string value, got %T", sp.field.Name(), v)
		}
		return vs == sp.value, nil
	}
	if sp.field.OpType() == feature.Ordinal {
		vs, ok := v.(string)
		if !ok {
			return false, fmt.Errorf("deciding split on %s: expected string value, got %T", sp.field.Name(), v)
		}
		r, ok := sp.field.Rank(vs)
		if !ok {
			return false, fmt.Errorf("deciding split on %s: value %s not on domain", sp.field.Name(), vs)
		}
		cr, _ := sp.field.Rank(sp.value)
		return r > cr, nil
	}
	vf, ok := v.(float64)
	if !ok {
		return false, fmt.Errorf("deciding split on %s: expected float64 value, got %T", sp.field.Name(), v)
	}
	return vf > sp.threshold, nil
}

/*
Increment evaluates the split against the sample and counts the event
under the given classification label. Counters for a label are
initialized lazily the first time the label is seen. Each event bumps
the unconditional total, the outcome total, and the same pair for the
label's row. The maturity counter advances on every event, so it keeps
recording the split's age past the threshold; the mature flag never
reverts.
*/
func (sp *Split) Increment(s feature.Sample, label string) error {
	d, err := sp.Decision(s)
	if err != nil {
		return err
	}
	c := sp.counts[label]
	if c == nil {
		c = &outcomeCounts{}
		sp.counts[label] = c
		sp.labels = append(sp.labels, label)
	}
	sp.all.total++
	c.total++
	if d {
		sp.all.pass++
		c.pass++
	} else {
		sp.all.fail++
		c.fail++
	}
	sp.maturity++
	if !sp.mature && sp.maturity >= sp.maturityThreshold {
		sp.mature = true
	}
	return nil
}

/*
Entropy returns the base-2 Shannon entropy of the label distribution
conditioned on the given outcome. Labels with a zero count under the
outcome contribute zero, and an outcome no event has reached has
entropy zero.
*/
func (sp *Split) Entropy(o Outcome) float64 {
	total := sp.all.of(o)
	if total == 0 {
		return 0
	}
	var h float64
	for _, label := range sp.labels {
		c := sp.counts[label].of(o)
		if c > 0 {
			p := c / total
			h -= p * math.Log2(p)
		}
	}
	return h
}

// Fraction returns the share of the split's events that reached the
// given outcome, or 0 before any event has been counted.
func (sp *Split) Fraction(o Outcome) float64 {
	if sp.all.total == 0 {
		return 0
	}
	return sp.all.of(o) / sp.all.total
}

// Gain returns the information gain of the split: the reduction in
// label entropy its test achieves over the events it has seen.
func (sp *Split) Gain() float64 {
	return sp.Entropy(OutcomeNone) -
		sp.Fraction(OutcomeTrue)*sp.Entropy(OutcomeTrue) -
		sp.Fraction(OutcomeFalse)*sp.Entropy(OutcomeFalse)
}

// refreshGain recomputes and caches the split's gain. The cached value
// is what pool pruning and materialization rank by.
func (sp *Split) refreshGain() {
	sp.gain = sp.Gain()
}

/*
Score returns the majority label among the events that reached the
given outcome: the leaf prediction for the corresponding branch. Ties
go to the label observed first; before any event it is the empty
string.
*/
func (sp *Split) Score(o Outcome) string {
	var best string
	var bestCount float64
	for _, label := range sp.labels {
		if c := sp.counts[label].of(o); c > bestCount {
			bestCount = c
			best = label
		}
	}
	return best
}

// Criterion returns the predicate form of the split for the given
// branch: the test itself for the true branch, its complement for the
// false branch.
func (sp *Split) Criterion(branch bool) feature.Criterion {
	if sp.op == opEqual {
		if branch {
			return feature.NewEqual(sp.field, sp.value)
		}
		return feature.NewNotEqual(sp.field, sp.value)
	}
	if sp.field.OpType() == feature.Ordinal {
		if branch {
			return feature.NewOrdinalGreaterThan(sp.field, sp.value)
		}
		return feature.NewOrdinalLessOrEqual(sp.field, sp.value)
	}
	if branch {
		return feature.NewGreaterThan(sp.field, sp.threshold)
	}
	return feature.NewLessOrEqual(sp.field, sp.threshold)
}

func (sp *Split) String() string {
	return fmt.Sprintf("{%v}", sp.Criterion(true))
}
