/*
Package tree holds the artifact an induction driver materializes: a
classification tree of predicate-plus-score nodes, and its ordered
rule-set form. Both map to the PMML TreeModel and RuleSetModel schemas.
*/
package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/stream"
)

// ClassificationError represents an error related with classification
type ClassificationError string

func (ce ClassificationError) Error() string {
	return string(ce)
}

/*
ErrNoScore is the error returned by the Classify method of a tree when
the reached node carries no score: the tree has not yet observed a
labeled event for that kind of sample.
*/
const ErrNoScore = ClassificationError("no score available for this kind of sample")

/*
Node is a node of a materialized tree: the criterion a sample must
satisfy to select it, the majority-label score of the events it
represents, their weight, and its children, true-branch first.
*/
type Node struct {
	Criterion feature.Criterion
	Score     string
	Weight    float64
	Children  []*Node
}

/*
Tree represents a materialized classification tree: a root node, whose
criterion is always true, and the label field it scores.
*/
type Tree struct {
	Root  *Node
	Label *feature.Field
}

// New takes a root node and a label field and returns a tree scoring
// the given field.
func New(root *Node, label *feature.Field) *Tree {
	return &Tree{Root: root, Label: label}
}

/*
Classify takes a sample and returns a score for it according to the
tree: a depth-first descent into the first child whose criterion the
sample satisfies, stopping at the deepest node reached. It returns
ErrNoScore if that node carries no score, and an error if the tree is
nil or a criterion cannot be evaluated.
*/
func (t *Tree) Classify(s feature.Sample) (string, error) {
	if t == nil || t.Root == nil {
		return "", fmt.Errorf("nil tree cannot classify samples")
	}
	n := t.Root
	for {
		var selected *Node
		for _, child := range n.Children {
			ok, err := child.Criterion.SatisfiedBy(s)
			if err != nil {
				return "", err
			}
			if ok {
				selected = child
				break
			}
		}
		if selected == nil {
			break
		}
		n = selected
	}
	if n.Score == "" {
		return "", ErrNoScore
	}
	return n.Score, nil
}

/*
Test takes a context.Context and a stream of labeled samples and
returns three values:
  - the classification success rate of the tree over the stream
  - the number of samples the tree could not score because of
    ErrNoScore errors
  - an error if a sample could not be classified for other reasons, or
    the stream failed. If this is not nil, the other values will be 0.0
    and 0 respectively.
*/
func (t *Tree) Test(ctx context.Context, s stream.Stream) (float64, int, error) {
	if t == nil {
		return 0.0, 0, nil
	}
	var hits float64
	var count int
	var errCount int
	err := stream.ForEach(ctx, s, func(sample feature.Sample) error {
		count++
		score, err := t.Classify(sample)
		if err != nil {
			if err != ErrNoScore {
				return err
			}
			errCount++
			return nil
		}
		v, err := sample.ValueFor(t.Label)
		if err != nil {
			return err
		}
		if v == score {
			hits++
		}
		return nil
	})
	if err != nil {
		return 0.0, 0, err
	}
	if count == 0 {
		return 0.0, 0, nil
	}
	return hits / float64(count), errCount, nil
}

/*
Traverse takes a bottomup boolean and an error-returning function and
goes through the tree running the function with every traversed node.
Traverse will call the function with a parent node before its children
if bottomup is false, and after them if bottomup is true. If a call
returns an error the traversing is aborted and the error returned.
*/
func (t *Tree) Traverse(bottomup bool, f func(*Node) error) error {
	return traverse(t.Root, bottomup, f)
}

func traverse(n *Node, bottomup bool, f func(*Node) error) error {
	if n == nil {
		return nil
	}
	if !bottomup {
		if err := f(n); err != nil {
			return err
		}
	}
	for _, child := range n.Children {
		if err := traverse(child, bottomup, f); err != nil {
			return err
		}
	}
	if bottomup {
		if err := f(n); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) String() string {
	return nodeString(t.Root)
}

func nodeString(n *Node) string {
	if n == nil {
		return ""
	}
	result := fmt.Sprintf("{ %v }\n", n.Criterion)
	if n.Score != "" {
		result = fmt.Sprintf("%s{ score %s }\n", result, n.Score)
	}
	if len(n.Children) > 0 {
		result = fmt.Sprintf("%s|\n", result)
	} else {
		result = fmt.Sprintf("%s \n", result)
	}
	for i, child := range n.Children {
		for j, line := range strings.Split(nodeString(child), "\n") {
			if len(line) > 0 {
				if j == 0 {
					result = fmt.Sprintf("%s|__%s\n", result, line)
				} else {
					if i == len(n.Children)-1 {
						result = fmt.Sprintf("%s   %s\n", result, line)
					} else {
						result = fmt.Sprintf("%s|  %s\n", result, line)
					}
				}
			}
		}
	}
	return result
}
