/*
Package json provides methods to serialize materialized trees as JSON
and parse them back.
*/
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/tree"
)

type jsonTree struct {
	Label string    `json:"label"`
	Root  *jsonNode `json:"root"`
}

type jsonNode struct {
	Criterion *jsonCriterion `json:"c,omitempty"`
	Score     string         `json:"score,omitempty"`
	Weight    float64        `json:"w,omitempty"`
	Children  []*jsonNode    `json:"nodes,omitempty"`
}

type jsonCriterion struct {
	Op        string   `json:"op"`
	Field     string   `json:"field,omitempty"`
	Value     string   `json:"value,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

/*
WriteTree takes a pointer to a tree.Tree and an io.Writer and
serializes the given tree as JSON onto the io.Writer. A tree is
serialized as a JSON object with a "label" field naming the scored
field and a "root" field with its nodes; each node carries its
criterion, score, weight and children. An error is returned if the tree
cannot be serialized or written onto the io.Writer.
*/
func WriteTree(t *tree.Tree, w io.Writer) error {
	jt := &jsonTree{Root: encodeNode(t.Root)}
	if t.Label != nil {
		jt.Label = t.Label.Name()
	}
	if err := json.NewEncoder(w).Encode(jt); err != nil {
		return fmt.Errorf("encoding tree as JSON: %v", err)
	}
	return nil
}

/*
ReadTree takes an io.Reader with a tree serialized by WriteTree and the
slice of fields the tree was grown on, and returns the parsed tree or
an error. Criteria are bound to the given fields by name; a criterion
on an unknown field is an error.
*/
func ReadTree(r io.Reader, fields []*feature.Field) (*tree.Tree, error) {
	jt := &jsonTree{}
	if err := json.NewDecoder(r).Decode(jt); err != nil {
		return nil, fmt.Errorf("parsing tree from JSON: %v", err)
	}
	byName := make(map[string]*feature.Field, len(fields))
	for _, f := range fields {
		byName[f.Name()] = f
	}
	root, err := decodeNode(jt.Root, byName)
	if err != nil {
		return nil, fmt.Errorf("parsing tree from JSON: %v", err)
	}
	var label *feature.Field
	if jt.Label != "" {
		label = byName[jt.Label]
		if label == nil {
			return nil, fmt.Errorf("parsing tree from JSON: unknown label field %q", jt.Label)
		}
	}
	return tree.New(root, label), nil
}

func encodeNode(n *tree.Node) *jsonNode {
	if n == nil {
		return nil
	}
	jn := &jsonNode{
		Criterion: encodeCriterion(n.Criterion),
		Score:     n.Score,
		Weight:    n.Weight,
	}
	for _, child := range n.Children {
		jn.Children = append(jn.Children, encodeNode(child))
	}
	return jn
}

func encodeCriterion(c feature.Criterion) *jsonCriterion {
	switch c := c.(type) {
	case *feature.True:
		return &jsonCriterion{Op: "true"}
	case *feature.Equal:
		return &jsonCriterion{Op: "equal", Field: c.Field().Name(), Value: c.Value()}
	case *feature.NotEqual:
		return &jsonCriterion{Op: "notEqual", Field: c.Field().Name(), Value: c.Value()}
	case *feature.GreaterThan:
		return encodeOrderedCriterion("greaterThan", c.Field(), c.Threshold(), c.Value())
	case *feature.LessOrEqual:
		return encodeOrderedCriterion("lessOrEqual", c.Field(), c.Threshold(), c.Value())
	}
	return nil
}

func encodeOrderedCriterion(op string, f *feature.Field, threshold float64, value string) *jsonCriterion {
	jc := &jsonCriterion{Op: op, Field: f.Name()}
	if f.OpType() == feature.Ordinal {
		jc.Value = value
	} else {
		t := threshold
		jc.Threshold = &t
	}
	return jc
}

func decodeNode(jn *jsonNode, fields map[string]*feature.Field) (*tree.Node, error) {
	if jn == nil {
		return nil, nil
	}
	c, err := decodeCriterion(jn.Criterion, fields)
	if err != nil {
		return nil, err
	}
	n := &tree.Node{Criterion: c, Score: jn.Score, Weight: jn.Weight}
	for _, jc := range jn.Children {
		child, err := decodeNode(jc, fields)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func decodeCriterion(jc *jsonCriterion, fields map[string]*feature.Field) (feature.Criterion, error) {
	if jc == nil {
		return nil, fmt.Errorf("node has no criterion")
	}
	if jc.Op == "true" {
		return feature.NewTrue(), nil
	}
	f := fields[jc.Field]
	if f == nil {
		return nil, fmt.Errorf("criterion on unknown field %q", jc.Field)
	}
	switch jc.Op {
	case "equal":
		return feature.NewEqual(f, jc.Value), nil
	case "notEqual":
		return feature.NewNotEqual(f, jc.Value), nil
	case "greaterThan":
		if jc.Threshold != nil {
			return feature.NewGreaterThan(f, *jc.Threshold), nil
		}
		return feature.NewOrdinalGreaterThan(f, jc.Value), nil
	case "lessOrEqual":
		if jc.Threshold != nil {
			return feature.NewLessOrEqual(f, *jc.Threshold), nil
		}
		return feature.NewOrdinalLessOrEqual(f, jc.Value), nil
	}
	return nil, fmt.Errorf("criterion has invalid op %q", jc.Op)
}
