/*
Package pmml exports materialized trees as PMML v4 TreeModel and
RuleSetModel documents.
*/
package pmml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/tree"
)

const xmlns = "http://www.dmg.org/PMML-4_3"

type pmmlDoc struct {
	XMLName        xml.Name       `xml:"PMML"`
	Xmlns          string         `xml:"xmlns,attr"`
	Version        string         `xml:"version,attr"`
	Header         pmmlHeader     `xml:"Header"`
	DataDictionary dataDictionary `xml:"DataDictionary"`
	TreeModel      *treeModel     `xml:"TreeModel,omitempty"`
	RuleSetModel   *ruleSetModel  `xml:"RuleSetModel,omitempty"`
}

type pmmlHeader struct {
	Application appElement `xml:"Application"`
}

type appElement struct {
	Name string `xml:"name,attr"`
}

type dataDictionary struct {
	NumberOfFields int         `xml:"numberOfFields,attr"`
	DataFields     []dataField `xml:"DataField"`
}

type dataField struct {
	Name     string       `xml:"name,attr"`
	OpType   string       `xml:"optype,attr"`
	DataType string       `xml:"dataType,attr"`
	Values   []valueField `xml:"Value,omitempty"`
}

type valueField struct {
	Value string `xml:"value,attr"`
}

type miningSchema struct {
	MiningFields []miningField `xml:"MiningField"`
}

type miningField struct {
	Name      string `xml:"name,attr"`
	UsageType string `xml:"usageType,attr,omitempty"`
}

type treeModel struct {
	FunctionName string       `xml:"functionName,attr"`
	MiningSchema miningSchema `xml:"MiningSchema"`
	Node         *xmlNode     `xml:"Node"`
}

type xmlNode struct {
	Score           string           `xml:"score,attr,omitempty"`
	RecordCount     string           `xml:"recordCount,attr,omitempty"`
	True            *struct{}        `xml:"True,omitempty"`
	SimplePredicate *simplePredicate `xml:"SimplePredicate,omitempty"`
	Nodes           []*xmlNode       `xml:"Node,omitempty"`
}

type simplePredicate struct {
	Field    string `xml:"field,attr"`
	Operator string `xml:"operator,attr"`
	Value    string `xml:"value,attr"`
}

type ruleSetModel struct {
	FunctionName string       `xml:"functionName,attr"`
	MiningSchema miningSchema `xml:"MiningSchema"`
	RuleSet      ruleSet      `xml:"RuleSet"`
}

type ruleSet struct {
	DefaultScore        string              `xml:"defaultScore,attr,omitempty"`
	RuleSelectionMethod ruleSelectionMethod `xml:"RuleSelectionMethod"`
	Rules               []*simpleRule       `xml:"SimpleRule"`
}

type ruleSelectionMethod struct {
	Criterion string `xml:"criterion,attr"`
}

type simpleRule struct {
	Score             string             `xml:"score,attr"`
	RecordCount       string             `xml:"recordCount,attr,omitempty"`
	True              *struct{}          `xml:"True,omitempty"`
	SimplePredicate   *simplePredicate   `xml:"SimplePredicate,omitempty"`
	CompoundPredicate *compoundPredicate `xml:"CompoundPredicate,omitempty"`
}

type compoundPredicate struct {
	BooleanOperator string             `xml:"booleanOperator,attr"`
	Predicates      []*simplePredicate `xml:"SimplePredicate"`
}

/*
WriteTreeModel takes a tree, the mining-schema fields it was grown on
and an io.Writer and writes the tree as a PMML TreeModel document onto
the writer, or returns an error.
*/
func WriteTreeModel(t *tree.Tree, fields []*feature.Field, w io.Writer) error {
	doc := newDoc(fields)
	doc.TreeModel = &treeModel{
		FunctionName: "classification",
		MiningSchema: newMiningSchema(t.Label, fields),
		Node:         encodeNode(t.Root),
	}
	return writeDoc(doc, w)
}

/*
WriteRuleSetModel takes a rule set, the mining-schema fields it was
grown on and an io.Writer and writes the rule set as a PMML
RuleSetModel document with firstHit rule selection onto the writer, or
returns an error.
*/
func WriteRuleSetModel(rs *tree.RuleSet, fields []*feature.Field, w io.Writer) error {
	doc := newDoc(fields)
	m := &ruleSetModel{
		FunctionName: "classification",
		MiningSchema: newMiningSchema(rs.Label, fields),
		RuleSet: ruleSet{
			RuleSelectionMethod: ruleSelectionMethod{Criterion: "firstHit"},
		},
	}
	for _, r := range rs.Rules {
		sr, err := encodeRule(r)
		if err != nil {
			return err
		}
		m.RuleSet.Rules = append(m.RuleSet.Rules, sr)
	}
	if n := len(rs.Rules); n > 0 {
		m.RuleSet.DefaultScore = rs.Rules[n-1].Score
	}
	doc.RuleSetModel = m
	return writeDoc(doc, w)
}

func newDoc(fields []*feature.Field) *pmmlDoc {
	doc := &pmmlDoc{
		Xmlns:   xmlns,
		Version: "4.3",
		Header:  pmmlHeader{Application: appElement{Name: "sapling"}},
	}
	doc.DataDictionary.NumberOfFields = len(fields)
	for _, f := range fields {
		doc.DataDictionary.DataFields = append(doc.DataDictionary.DataFields, newDataField(f))
	}
	return doc
}

func newDataField(f *feature.Field) dataField {
	df := dataField{Name: f.Name()}
	switch f.OpType() {
	case feature.Categorical:
		df.OpType = "categorical"
	case feature.Continuous:
		df.OpType = "continuous"
	case feature.Ordinal:
		df.OpType = "ordinal"
	}
	switch f.DataType() {
	case feature.String:
		df.DataType = "string"
	case feature.Integer:
		df.DataType = "integer"
	case feature.Double:
		df.DataType = "double"
	}
	for _, v := range f.Values() {
		df.Values = append(df.Values, valueField{Value: v})
	}
	return df
}

func newMiningSchema(label *feature.Field, fields []*feature.Field) miningSchema {
	var ms miningSchema
	for _, f := range fields {
		mf := miningField{Name: f.Name()}
		switch {
		case label != nil && f.Name() == label.Name():
			mf.UsageType = "predicted"
		case f.Role() == feature.Active:
			mf.UsageType = "active"
		default:
			continue
		}
		ms.MiningFields = append(ms.MiningFields, mf)
	}
	return ms
}

func encodeNode(n *tree.Node) *xmlNode {
	if n == nil {
		return nil
	}
	xn := &xmlNode{Score: n.Score}
	if n.Weight > 0 {
		xn.RecordCount = formatNumber(n.Weight)
	}
	p, sp := encodePredicate(n.Criterion)
	xn.True = p
	xn.SimplePredicate = sp
	for _, child := range n.Children {
		xn.Nodes = append(xn.Nodes, encodeNode(child))
	}
	return xn
}

func encodeRule(r tree.Rule) (*simpleRule, error) {
	sr := &simpleRule{Score: r.Score}
	if r.Weight > 0 {
		sr.RecordCount = formatNumber(r.Weight)
	}
	switch len(r.Criteria) {
	case 0:
		sr.True = &struct{}{}
	case 1:
		p, sp := encodePredicate(r.Criteria[0])
		sr.True = p
		sr.SimplePredicate = sp
	default:
		cp := &compoundPredicate{BooleanOperator: "and"}
		for _, c := range r.Criteria {
			_, sp := encodePredicate(c)
			if sp == nil {
				return nil, fmt.Errorf("compound predicate cannot hold criterion %v", c)
			}
			cp.Predicates = append(cp.Predicates, sp)
		}
		sr.CompoundPredicate = cp
	}
	return sr, nil
}

func encodePredicate(c feature.Criterion) (*struct{}, *simplePredicate) {
	switch c := c.(type) {
	case *feature.True:
		return &struct{}{}, nil
	case *feature.Equal:
		return nil, &simplePredicate{Field: c.Field().Name(), Operator: "equal", Value: c.Value()}
	case *feature.NotEqual:
		return nil, &simplePredicate{Field: c.Field().Name(), Operator: "notEqual", Value: c.Value()}
	case *feature.GreaterThan:
		return nil, &simplePredicate{Field: c.Field().Name(), Operator: "greaterThan", Value: boundary(c.Field(), c.Threshold(), c.Value())}
	case *feature.LessOrEqual:
		return nil, &simplePredicate{Field: c.Field().Name(), Operator: "lessOrEqual", Value: boundary(c.Field(), c.Threshold(), c.Value())}
	}
	return nil, nil
}

func boundary(f *feature.Field, threshold float64, value string) string {
	if f.OpType() == feature.Ordinal {
		return value
	}
	return formatNumber(threshold)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeDoc(doc *pmmlDoc, w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing PMML: %v", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing PMML: %v", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("writing PMML: %v", err)
	}
	return nil
}
