/*
Package mongostream provides a stream.Stream that reads events from a
MongoDB collection.
*/
package mongostream

import (
	"context"
	"fmt"
	"io"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/stream"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

type mongoStream struct {
	iter   *mgo.Iter
	fields []*feature.Field
}

/*
New takes a MongoDB session, a collection name and a slice of fields
and returns a stream of the samples on the collection's documents, read
from the session's default database. Each field is read from the
document property with its name; absent properties are missing values.
*/
func New(session *mgo.Session, collection string, fields []*feature.Field) stream.Stream {
	iter := session.DB("").C(collection).Find(nil).Iter()
	return &mongoStream{iter: iter, fields: fields}
}

func (ms *mongoStream) Next(ctx context.Context) (feature.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc bson.M
	if !ms.iter.Next(&doc) {
		if err := ms.iter.Close(); err != nil {
			return nil, fmt.Errorf("reading samples from mongodb: %v", err)
		}
		return nil, io.EOF
	}
	values := make(map[string]interface{}, len(ms.fields))
	for _, f := range ms.fields {
		v, ok := doc[f.Name()]
		if !ok || v == nil {
			continue
		}
		values[f.Name()] = convertValue(f, v)
	}
	return feature.NewSample(values), nil
}

// convertValue widens the numeric types bson decodes into to the
// float64 convention continuous fields expect.
func convertValue(f *feature.Field, v interface{}) interface{} {
	if f.OpType() != feature.Continuous {
		return v
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}
