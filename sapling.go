/*
Package sapling grows classification trees online: a single pass over a
possibly-infinite event stream, one event at a time, without storing
history and without ever revisiting a record.

Every event updates per-field statistics and a bounded ensemble of
competing candidate splits kept at every node of a hypothesis tree.
Candidates mature statistically, are pruned by information gain, and
the most promising ones spawn deeper hypothesis nodes up to a depth
limit. The best tree known so far can be materialized on demand at any
point of the stream.
*/
package sapling

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/tree"
)

// ErrNoPredictedField is returned by New when the mining schema
// declares no predicted field to learn.
var ErrNoPredictedField = errors.New("mining schema has no predicted field")

// ErrResumeUnsupported is returned by New when asked to resume an
// existing model. Growing always starts from scratch.
var ErrResumeUnsupported = errors.New("resuming an existing model is not supported")

/*
Config holds the knobs of the induction engine. The bounds cap both the
memory held per driver and the work done per event: each branch of each
hypothesis node keeps TrialsToKeep+1 candidate splits, and at most
WorldsToSplit children, down to TreeDepth levels.
*/
type Config struct {
	// FeatureMaturityThreshold is the number of valid values a field
	// must observe before it can be sampled for candidate splits.
	FeatureMaturityThreshold int
	// SplitMaturityThreshold is the number of events a candidate split
	// must count before its statistics are trusted.
	SplitMaturityThreshold int
	// TrialsToKeep bounds the mature-split pool kept per branch.
	TrialsToKeep int
	// WorldsToSplit bounds the child worlds kept per branch.
	WorldsToSplit int
	// TreeDepth bounds the depth of the hypothesis tree.
	TreeDepth int
	// Classification names the field to predict. Empty selects the
	// first predicted field on the mining schema.
	Classification string
	// Resume requests continuing from an existing model, which is not
	// supported: New fails fast when it is set.
	Resume bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		FeatureMaturityThreshold: 10,
		SplitMaturityThreshold:   30,
		TrialsToKeep:             50,
		WorldsToSplit:            3,
		TreeDepth:                3,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.FeatureMaturityThreshold <= 0 {
		c.FeatureMaturityThreshold = d.FeatureMaturityThreshold
	}
	if c.SplitMaturityThreshold <= 0 {
		c.SplitMaturityThreshold = d.SplitMaturityThreshold
	}
	if c.TrialsToKeep <= 0 {
		c.TrialsToKeep = d.TrialsToKeep
	}
	if c.WorldsToSplit <= 0 {
		c.WorldsToSplit = d.WorldsToSplit
	}
	if c.TreeDepth <= 0 {
		c.TreeDepth = d.TreeDepth
	}
}

/*
Driver owns the induction state for one segment of the event stream:
the online statistics of every active field, the classification target
and its running label counts, and the root of the hypothesis tree.

A driver is strictly sequential: one event is fully processed before
the next begins. Materialize is a pure read and may be called at any
point between updates, never concurrently with one.
*/
type Driver struct {
	cfg Config
	rng *rand.Rand

	features []*Feature
	label    *feature.Field

	labelCounts map[string]float64
	labelOrder  []string

	root    *World
	current *tree.Tree
}

/*
New takes the mining schema, a configuration (nil for defaults) and a
random source (nil to seed one from the clock) and returns a driver
ready to consume events.

The schema is partitioned into active features and the classification
target: the field named by the configuration, or the first predicted
field. New returns ErrNoPredictedField when no target can be found and
ErrResumeUnsupported when the configuration requests resuming an
existing model.

The random source drives candidate sampling; pass a seeded one for
reproducible growing.
*/
func New(fields []*feature.Field, cfg *Config, rng *rand.Rand) (*Driver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.normalize()
	if c.Resume {
		return nil, ErrResumeUnsupported
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d := &Driver{
		cfg:         c,
		rng:         rng,
		labelCounts: make(map[string]float64),
		root:        newWorld(0, nil),
	}
	for _, f := range fields {
		if c.Classification != "" && f.Name() == c.Classification {
			d.label = f
			continue
		}
		switch f.Role() {
		case feature.Predicted:
			if c.Classification == "" && d.label == nil {
				d.label = f
			}
		case feature.Active:
			d.features = append(d.features, newFeature(f, c.FeatureMaturityThreshold))
		}
	}
	if d.label == nil {
		if c.Classification != "" {
			return nil, fmt.Errorf("classification field %q not on mining schema: %w", c.Classification, ErrNoPredictedField)
		}
		return nil, ErrNoPredictedField
	}
	d.current = d.Materialize()
	return d, nil
}

// Label returns the classification field the driver learns to score.
func (d *Driver) Label() *feature.Field {
	return d.label
}

// Features returns the per-field online statistics of the active
// fields.
func (d *Driver) Features() []*Feature {
	return d.features
}

/*
Update folds one event into the driver. Every active feature reads its
own value from the event, each gated on presence and validity. The
label count and majority label are refreshed when the event carries a
label. The hypothesis tree only grows on complete events (label plus
every active feature value present and valid) and only once at least
one feature is mature. The driver's materialized tree is refreshed
regardless, so it always reflects the latest majority label.
*/
func (d *Driver) Update(s feature.Sample) error {
	complete := true
	for _, ft := range d.features {
		counted, err := ft.Increment(s)
		if err != nil {
			return err
		}
		if !counted {
			complete = false
		}
	}
	label, ok, err := d.labelFor(s)
	if err != nil {
		return err
	}
	if ok {
		if _, seen := d.labelCounts[label]; !seen {
			d.labelOrder = append(d.labelOrder, label)
		}
		d.labelCounts[label]++
	} else {
		complete = false
	}
	if complete {
		var mature []*Feature
		for _, ft := range d.features {
			if ft.mature {
				mature = append(mature, ft)
			}
		}
		if len(mature) > 0 {
			if err := d.root.Increment(s, label, mature, &d.cfg, d.rng); err != nil {
				return err
			}
		}
	}
	d.current = d.Materialize()
	return nil
}

// Tree returns the tree materialized by the last Update, or the bare
// majority-label leaf before any event.
func (d *Driver) Tree() *tree.Tree {
	return d.current
}

// MajorityLabel returns the most frequent label observed so far, ties
// going to the label observed first. It is empty before any labeled
// event.
func (d *Driver) MajorityLabel() string {
	var best string
	var bestCount float64
	for _, label := range d.labelOrder {
		if c := d.labelCounts[label]; c > bestCount {
			bestCount = c
			best = label
		}
	}
	return best
}

func (d *Driver) labelFor(s feature.Sample) (string, bool, error) {
	v, err := s.ValueFor(d.label)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	if ok, _ := d.label.Valid(v); !ok {
		return "", false, nil
	}
	vs, ok := v.(string)
	if !ok {
		return "", false, nil
	}
	return vs, true, nil
}
