/*
Package stream defines the event sources an induction driver consumes:
sequences of samples read one at a time, in order, exactly once.
*/
package stream

import (
	"context"
	"io"

	"github.com/modelop/sapling/feature"
)

/*
Stream is a source of events. Its Next method returns the next sample
on the stream, io.EOF once the stream is exhausted, or another error if
the sample cannot be read. Streams are not safe for concurrent use.
*/
type Stream interface {
	Next(ctx context.Context) (feature.Sample, error)
}

type sliceStream struct {
	samples []feature.Sample
}

// NewSlice takes a slice of samples and returns a stream serving them
// in order.
func NewSlice(samples []feature.Sample) Stream {
	return &sliceStream{samples}
}

func (s *sliceStream) Next(ctx context.Context) (feature.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.samples) == 0 {
		return nil, io.EOF
	}
	sample := s.samples[0]
	s.samples = s.samples[1:]
	return sample, nil
}

/*
ForEach takes a context, a stream and a function and runs the function
with every sample on the stream until it is exhausted. It returns a
non-nil error if the given context times out or is cancelled, if the
stream fails, or if a call to the function returns an error.
*/
func ForEach(ctx context.Context, s Stream, f func(feature.Sample) error) error {
	for {
		sample, err := s.Next(ctx)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := f(sample); err != nil {
			return err
		}
	}
}
