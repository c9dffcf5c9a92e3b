package csv_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/stream/csv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVStream(t *testing.T) {
	color := feature.NewCategoricalField("color", feature.Active)
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	label := feature.NewCategoricalField("label", feature.Predicted)
	fields := []*feature.Field{color, x, label}

	in := strings.Join([]string{
		"color,x,extra,label",
		"red,1.5,junk,warm",
		"blue,?,junk,cool",
		"green,,junk,",
		"red,oops,junk,warm",
	}, "\n")

	s, err := csv.New(strings.NewReader(in), fields)
	require.NoError(t, err)
	ctx := context.Background()

	sample, err := s.Next(ctx)
	require.NoError(t, err)
	v, _ := sample.ValueFor(color)
	assert.Equal(t, "red", v)
	v, _ = sample.ValueFor(x)
	assert.Equal(t, 1.5, v, "continuous cells parse as numbers")
	v, _ = sample.ValueFor(label)
	assert.Equal(t, "warm", v)

	sample, err = s.Next(ctx)
	require.NoError(t, err)
	v, _ = sample.ValueFor(x)
	assert.Nil(t, v, "a ? cell reads as missing")

	sample, err = s.Next(ctx)
	require.NoError(t, err)
	v, _ = sample.ValueFor(x)
	assert.Nil(t, v, "an empty cell reads as missing")
	v, _ = sample.ValueFor(label)
	assert.Nil(t, v)

	sample, err = s.Next(ctx)
	require.NoError(t, err)
	v, _ = sample.ValueFor(x)
	assert.Equal(t, "oops", v, "an unparseable cell keeps its raw string for validity gating")

	_, err = s.Next(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestCSVStreamMissingColumn(t *testing.T) {
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	_, err := csv.New(strings.NewReader("y\n1\n"), []*feature.Field{x})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x")
}

func TestCSVStreamCanceledContext(t *testing.T) {
	x := feature.NewContinuousField("x", feature.Active, feature.Double)
	s, err := csv.New(strings.NewReader("x\n1\n"), []*feature.Field{x})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
