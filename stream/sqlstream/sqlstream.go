/*
Package sqlstream provides a stream.Stream that reads events from a
table on a SQL database. Engine-specific quirks are isolated behind the
Adapter interface; see the pgadapter and sqlite3adapter subpackages.
*/
package sqlstream

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/stream"
)

/*
Adapter isolates the quirks of a specific SQL engine.

Its Quote method returns the given identifier quoted for the engine.
*/
type Adapter interface {
	Quote(identifier string) string
}

type sqlStream struct {
	db      *sql.DB
	adapter Adapter
	table   string
	fields  []*feature.Field
	rows    *sql.Rows
}

/*
New takes an open database, an adapter, a table name and a slice of
fields and returns a stream of the samples on the table's rows. Each
field is read from the column with its name; NULL columns are missing
values. The query is issued lazily on the first Next call.
*/
func New(db *sql.DB, adapter Adapter, table string, fields []*feature.Field) stream.Stream {
	return &sqlStream{db: db, adapter: adapter, table: table, fields: fields}
}

func (ss *sqlStream) Next(ctx context.Context) (feature.Sample, error) {
	if ss.rows == nil {
		columns := make([]string, 0, len(ss.fields))
		for _, f := range ss.fields {
			columns = append(columns, ss.adapter.Quote(f.Name()))
		}
		query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), ss.adapter.Quote(ss.table))
		rows, err := ss.db.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("querying samples from %s: %v", ss.table, err)
		}
		ss.rows = rows
	}
	if !ss.rows.Next() {
		if err := ss.rows.Err(); err != nil {
			return nil, fmt.Errorf("reading samples from %s: %v", ss.table, err)
		}
		return nil, io.EOF
	}
	dest := make([]interface{}, len(ss.fields))
	for i, f := range ss.fields {
		if f.OpType() == feature.Continuous {
			dest[i] = &sql.NullFloat64{}
		} else {
			dest[i] = &sql.NullString{}
		}
	}
	if err := ss.rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scanning sample from %s: %v", ss.table, err)
	}
	values := make(map[string]interface{}, len(ss.fields))
	for i, f := range ss.fields {
		switch v := dest[i].(type) {
		case *sql.NullFloat64:
			if v.Valid {
				values[f.Name()] = v.Float64
			}
		case *sql.NullString:
			if v.Valid {
				values[f.Name()] = v.String
			}
		}
	}
	return feature.NewSample(values), nil
}
