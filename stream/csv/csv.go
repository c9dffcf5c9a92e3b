/*
Package csv provides a stream.Stream that reads events from CSV
content.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/stream"
)

type csvStream struct {
	r       *csv.Reader
	fields  []*feature.Field
	columns map[string]int
	row     int
}

/*
New takes an io.Reader for CSV content and a slice of fields and
returns a stream of the samples parsed from it, or an error.

The header or first row of the CSV content must contain the name of
every given field; extra columns are ignored. On the remaining rows the
'?' string or an empty cell indicate a missing value. Cells of
continuous fields are parsed as numbers; a cell that cannot be parsed
is kept as its raw string, so the engine's per-field validity gating
treats it as invalid rather than aborting the stream.
*/
func New(r io.Reader, fields []*feature.Field) (stream.Stream, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %v", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, f := range fields {
		if _, ok := columns[f.Name()]; !ok {
			return nil, fmt.Errorf("csv header has no column for field %s", f.Name())
		}
	}
	return &csvStream{r: cr, fields: fields, columns: columns, row: 1}, nil
}

func (cs *csvStream) Next(ctx context.Context) (feature.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record, err := cs.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading csv row %d: %v", cs.row+1, err)
	}
	cs.row++
	values := make(map[string]interface{}, len(cs.fields))
	for _, f := range cs.fields {
		i := cs.columns[f.Name()]
		if i >= len(record) {
			continue
		}
		cell := record[i]
		if cell == "" || cell == "?" {
			continue
		}
		values[f.Name()] = parseCell(f, cell)
	}
	return feature.NewSample(values), nil
}

func parseCell(f *feature.Field, cell string) interface{} {
	if f.OpType() != feature.Continuous {
		return cell
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	return v
}
