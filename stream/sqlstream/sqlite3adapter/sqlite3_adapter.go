/*
Package sqlite3adapter provides a sqlstream.Adapter for SQLite3
databases.
*/
package sqlite3adapter

import (
	"database/sql"
	"fmt"
	"strings"

	// registers the sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/modelop/sapling/stream/sqlstream"
)

type sqlite3Adapter struct{}

/*
New returns a sqlstream.Adapter for SQLite3.
*/
func New() sqlstream.Adapter {
	return &sqlite3Adapter{}
}

/*
Open takes the path to a SQLite3 database file, opens it with the
sqlite3 driver and returns it or an error.
*/
func Open(filepath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", filepath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite3 database %s: %v", filepath, err)
	}
	return db, nil
}

func (a *sqlite3Adapter) Quote(identifier string) string {
	return `"` + strings.Replace(identifier, `"`, `""`, -1) + `"`
}
