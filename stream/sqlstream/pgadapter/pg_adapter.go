/*
Package pgadapter provides a sqlstream.Adapter for PostgreSQL
databases.
*/
package pgadapter

import (
	"database/sql"
	"fmt"
	"strings"

	// registers the postgres driver
	_ "github.com/lib/pq"

	"github.com/modelop/sapling/stream/sqlstream"
)

type pgAdapter struct{}

/*
New returns a sqlstream.Adapter for PostgreSQL.
*/
func New() sqlstream.Adapter {
	return &pgAdapter{}
}

/*
Open takes a PostgreSQL connection string, opens a database with the
postgres driver and returns it or an error.
*/
func Open(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres database: %v", err)
	}
	return db, nil
}

func (a *pgAdapter) Quote(identifier string) string {
	return `"` + strings.Replace(identifier, `"`, `""`, -1) + `"`
}
