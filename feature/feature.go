/*
Package feature describes the mining schema of an event stream: the
fields a model observes, their roles and operational types, and the
predicates a grown tree imposes on them.
*/
package feature

import "fmt"

// Role indicates how a field participates in model growing.
type Role int

const (
	// Active fields are model inputs.
	Active Role = iota
	// Predicted marks the field the model learns to score.
	Predicted
	// Ignored fields are carried by events but never consulted.
	Ignored
)

// OpType is the operational type of a field: how its values compare.
type OpType int

const (
	// Categorical values form an unordered set.
	Categorical OpType = iota
	// Continuous values are numeric.
	Continuous
	// Ordinal values form a fixed, ordered domain.
	Ordinal
)

// DataType is the primitive type of a field's values.
type DataType int

const (
	// String values.
	String DataType = iota
	// Integer values, carried as float64 without a fractional part.
	Integer
	// Double values.
	Double
)

/*
Field represents one property of the events on a stream: its name, its
role on the mining schema, its operational type and its primitive data
type. Ordinal fields also carry their ordered value domain; categorical
fields may carry a set of valid values.
*/
type Field struct {
	name     string
	role     Role
	opType   OpType
	dataType DataType
	values   []string
	ranks    map[string]int
}

/*
NewCategoricalField takes a name, a role and an optional set of valid
values and returns a categorical string field. With no values given,
any string value is valid.
*/
func NewCategoricalField(name string, role Role, values ...string) *Field {
	f := &Field{name: name, role: role, opType: Categorical, dataType: String}
	f.setValues(values)
	return f
}

/*
NewContinuousField takes a name, a role and a data type (Integer or
Double) and returns a continuous numeric field.
*/
func NewContinuousField(name string, role Role, dataType DataType) *Field {
	return &Field{name: name, role: role, opType: Continuous, dataType: dataType}
}

/*
NewOrdinalField takes a name, a role and the ordered domain of values
the field can take and returns an ordinal field. Values earlier in the
slice order below values later in it.
*/
func NewOrdinalField(name string, role Role, values []string) *Field {
	f := &Field{name: name, role: role, opType: Ordinal, dataType: String}
	f.setValues(values)
	return f
}

// Name returns the name of the field
func (f *Field) Name() string {
	return f.name
}

// Role returns the role of the field on the mining schema
func (f *Field) Role() Role {
	return f.role
}

// OpType returns the operational type of the field
func (f *Field) OpType() OpType {
	return f.opType
}

// DataType returns the primitive data type of the field
func (f *Field) DataType() DataType {
	return f.dataType
}

// Values returns the declared value domain of the field, ordered for
// ordinal fields. It is nil for continuous fields and for categorical
// fields declared without a value set.
func (f *Field) Values() []string {
	return f.values
}

// Rank returns the position of the given value on the field's ordered
// domain and whether the value belongs to it.
func (f *Field) Rank(value string) (int, bool) {
	r, ok := f.ranks[value]
	return r, ok
}

/*
Valid receives a value and returns a boolean and an error. A nil value
is valid on any field: it represents a missing observation, not an
invalid one. Otherwise the value must match the field's primitive type
and, when the field declares a value domain, belong to it. When the
value is invalid the error describes the reason.
*/
func (f *Field) Valid(value interface{}) (bool, error) {
	if value == nil {
		return true, nil
	}
	switch f.opType {
	case Continuous:
		if _, ok := value.(float64); !ok {
			return false, fmt.Errorf("continuous field %s expects float64 value, got %T value", f.name, value)
		}
	default:
		vs, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("%s field %s expects string value, got %T value", f.opTypeName(), f.name, value)
		}
		if f.ranks != nil {
			if _, ok := f.ranks[vs]; !ok {
				return false, fmt.Errorf("%s field %s got unknown value %s", f.opTypeName(), f.name, vs)
			}
		}
	}
	return true, nil
}

func (f *Field) String() string {
	return f.name
}

func (f *Field) setValues(values []string) {
	if len(values) == 0 {
		return
	}
	f.values = values
	f.ranks = make(map[string]int, len(values))
	for i, v := range values {
		f.ranks[v] = i
	}
}

func (f *Field) opTypeName() string {
	switch f.opType {
	case Categorical:
		return "categorical"
	case Continuous:
		return "continuous"
	}
	return "ordinal"
}
