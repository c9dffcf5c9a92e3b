package tree

import (
	"fmt"
	"strings"

	"github.com/modelop/sapling/feature"
)

/*
Rule is one entry of a rule set: the conjunction of criteria a sample
must satisfy, the score it then receives, and the weight of the events
the rule represents.
*/
type Rule struct {
	Criteria []feature.Criterion
	Score    string
	Weight   float64
}

/*
RuleSet is the ordered-rule form of a classification tree: rules are
tried in order and the first whose criteria are all satisfied scores
the sample. Deeper rules come before the fallbacks of their ancestors,
so a rule set classifies exactly like the tree it was flattened from.
*/
type RuleSet struct {
	Rules []Rule
	Label *feature.Field
}

/*
RuleSet flattens the tree into its ordered-rule form. Every node
contributes one rule carrying the criteria on its path from the root;
a node's own rule follows the rules of its subtrees, so it acts as
their fallback. The root contributes the last, unconditional rule.
*/
func (t *Tree) RuleSet() *RuleSet {
	rs := &RuleSet{Label: t.Label}
	if t.Root != nil {
		rs.Rules = flattenNode(t.Root, nil, rs.Rules)
	}
	return rs
}

func flattenNode(n *Node, path []feature.Criterion, rules []Rule) []Rule {
	for _, child := range n.Children {
		childPath := append(append([]feature.Criterion{}, path...), child.Criterion)
		rules = flattenNode(child, childPath, rules)
	}
	return append(rules, Rule{Criteria: path, Score: n.Score, Weight: n.Weight})
}

/*
Classify takes a sample and returns the score of the first rule whose
criteria the sample all satisfies. It returns ErrNoScore when the
matched rule carries no score and an error if a criterion cannot be
evaluated. The last rule is unconditional, so some rule always matches.
*/
func (rs *RuleSet) Classify(s feature.Sample) (string, error) {
	if rs == nil {
		return "", fmt.Errorf("nil rule set cannot classify samples")
	}
	for _, r := range rs.Rules {
		matched := true
		for _, c := range r.Criteria {
			ok, err := c.SatisfiedBy(s)
			if err != nil {
				return "", err
			}
			if !ok {
				matched = false
				break
			}
		}
		if matched {
			if r.Score == "" {
				return "", ErrNoScore
			}
			return r.Score, nil
		}
	}
	return "", ErrNoScore
}

func (r Rule) String() string {
	if len(r.Criteria) == 0 {
		return fmt.Sprintf("if true then %s", r.Score)
	}
	parts := make([]string, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		parts = append(parts, fmt.Sprintf("%v", c))
	}
	return fmt.Sprintf("if %s then %s", strings.Join(parts, " and "), r.Score)
}
