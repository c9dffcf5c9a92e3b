/*
Package redisstore persists the latest materialized tree of each model
segment on a redis database, so consumers can score against the most
recent snapshot while growing continues elsewhere.
*/
package redisstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/tree"
	"github.com/modelop/sapling/tree/json"
	"gopkg.in/redis.v5"
)

// Store saves and loads materialized trees on a redis database, one
// key per segment, serialized with the tree/json codec.
type Store struct {
	rc     *redis.Client
	prefix string
	fields []*feature.Field
}

/*
New takes a redis client, a key prefix and the mining-schema fields
trees are grown on and returns a snapshot store.
*/
func New(rc *redis.Client, prefix string, fields []*feature.Field) *Store {
	return &Store{rc: rc, prefix: prefix, fields: fields}
}

// Save serializes the given tree and stores it under the given segment
// id, replacing any previous snapshot for the segment.
func (s *Store) Save(ctx context.Context, id string, t *tree.Tree) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.WriteTree(t, &buf); err != nil {
		return fmt.Errorf("saving tree %q: %v", id, err)
	}
	if _, err := s.rc.Set(s.keyFor(id), buf.Bytes(), 0).Result(); err != nil {
		return fmt.Errorf("saving tree %q in redis: %v", id, err)
	}
	return nil
}

// Load returns the latest snapshot stored for the given segment id, or
// nil when the segment has none.
func (s *Store) Load(ctx context.Context, id string) (*tree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.rc.Get(s.keyFor(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("retrieving tree %q: %v", id, err)
	}
	t, err := json.ReadTree(bytes.NewReader([]byte(data)), s.fields)
	if err != nil {
		return nil, fmt.Errorf("retrieving tree %q: decoding: %v", id, err)
	}
	return t, nil
}

// Delete drops the snapshot stored for the given segment id, if any.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.rc.Del(s.keyFor(id)).Result(); err != nil {
		return fmt.Errorf("deleting tree %q from redis: %v", id, err)
	}
	return nil
}

// Close closes the underlying redis client.
func (s *Store) Close() error {
	return s.rc.Close()
}

func (s *Store) keyFor(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}
