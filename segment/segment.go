/*
Package segment routes an event stream across independent model
segments: predicate-selected partitions of the stream, each grown by
its own induction driver.
*/
package segment

import (
	"fmt"

	"github.com/modelop/sapling"
	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/tree"
)

/*
Segment is one partition of the event stream: the criterion selecting
its events and the driver growing its model. Segments share no mutable
state, so distinct segments may be driven from distinct goroutines as
long as each segment stays sequential.
*/
type Segment struct {
	ID        string
	Criterion feature.Criterion
	Driver    *sapling.Driver
}

/*
Segmenter routes events to segments. An event goes to the first
segment, in order, whose criterion it satisfies; events matching no
segment are counted and skipped.
*/
type Segmenter struct {
	segments  []*Segment
	unmatched int
}

// New takes the segments, in selection order, and returns a segmenter
// routing events across them. It returns an error if a segment has no
// driver or no criterion.
func New(segments ...*Segment) (*Segmenter, error) {
	for _, s := range segments {
		if s.Driver == nil {
			return nil, fmt.Errorf("segment %q has no driver", s.ID)
		}
		if s.Criterion == nil {
			return nil, fmt.Errorf("segment %q has no criterion", s.ID)
		}
	}
	return &Segmenter{segments: segments}, nil
}

// Update routes one event to the first matching segment's driver.
func (sg *Segmenter) Update(s feature.Sample) error {
	for _, seg := range sg.segments {
		ok, err := seg.Criterion.SatisfiedBy(s)
		if err != nil {
			return fmt.Errorf("routing event to segment %q: %v", seg.ID, err)
		}
		if ok {
			return seg.Driver.Update(s)
		}
	}
	sg.unmatched++
	return nil
}

// Segments returns the segments in selection order.
func (sg *Segmenter) Segments() []*Segment {
	return sg.segments
}

// Unmatched returns the number of events no segment selected.
func (sg *Segmenter) Unmatched() int {
	return sg.unmatched
}

// Trees returns the latest materialized tree of every segment, keyed
// by segment id.
func (sg *Segmenter) Trees() map[string]*tree.Tree {
	trees := make(map[string]*tree.Tree, len(sg.segments))
	for _, seg := range sg.segments {
		trees[seg.ID] = seg.Driver.Tree()
	}
	return trees
}
