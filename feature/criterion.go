package feature

import (
	"fmt"
	"strconv"
)

/*
Criterion represents a constraint on a field.

Its SatisfiedBy method takes a sample and returns a boolean indicating
if the sample's value for the field satisfies the criterion. A sample
carrying no value, or a value of the wrong kind, satisfies no criterion
other than True.

Its Field method returns the field on which the criterion is applied,
or nil for the always-true criterion.
*/
type Criterion interface {
	Field() *Field
	SatisfiedBy(sample Sample) (bool, error)
}

// True is the criterion every sample satisfies. It constrains no field
// and labels the unconditional root of a grown tree.
type True struct{}

// Equal constrains a field to exactly one string value.
type Equal struct {
	field *Field
	value string
}

// NotEqual constrains a field to any string value but one.
type NotEqual struct {
	field *Field
	value string
}

/*
GreaterThan constrains a field to values above a boundary: a numeric
threshold for continuous fields, or a domain value (compared by rank)
for ordinal fields.
*/
type GreaterThan struct {
	field     *Field
	threshold float64
	value     string
}

// LessOrEqual is the complement of GreaterThan: values at or below the
// boundary.
type LessOrEqual struct {
	field     *Field
	threshold float64
	value     string
}

// NewTrue returns the always-true criterion.
func NewTrue() *True {
	return &True{}
}

// NewEqual takes a field and a value and returns a criterion satisfied
// by samples whose value for the field equals it.
func NewEqual(f *Field, value string) *Equal {
	return &Equal{f, value}
}

// NewNotEqual takes a field and a value and returns a criterion
// satisfied by samples carrying any other value for the field.
func NewNotEqual(f *Field, value string) *NotEqual {
	return &NotEqual{f, value}
}

// NewGreaterThan takes a continuous field and a numeric threshold and
// returns a criterion satisfied by samples whose value exceeds it.
func NewGreaterThan(f *Field, threshold float64) *GreaterThan {
	return &GreaterThan{field: f, threshold: threshold}
}

// NewLessOrEqual takes a continuous field and a numeric threshold and
// returns a criterion satisfied by samples whose value does not exceed
// it.
func NewLessOrEqual(f *Field, threshold float64) *LessOrEqual {
	return &LessOrEqual{field: f, threshold: threshold}
}

// NewOrdinalGreaterThan takes an ordinal field and a domain value and
// returns a criterion satisfied by samples whose value ranks above it
// on the field's domain.
func NewOrdinalGreaterThan(f *Field, value string) *GreaterThan {
	return &GreaterThan{field: f, value: value}
}

// NewOrdinalLessOrEqual takes an ordinal field and a domain value and
// returns a criterion satisfied by samples whose value ranks at or
// below it on the field's domain.
func NewOrdinalLessOrEqual(f *Field, value string) *LessOrEqual {
	return &LessOrEqual{field: f, value: value}
}

// Field returns nil: the always-true criterion constrains no field.
func (t *True) Field() *Field {
	return nil
}

// SatisfiedBy returns true for every sample.
func (t *True) SatisfiedBy(Sample) (bool, error) {
	return true, nil
}

func (t *True) String() string {
	return "true"
}

// Field returns the field to which the constraint applies.
func (e *Equal) Field() *Field {
	return e.field
}

/*
SatisfiedBy receives a sample and returns a boolean indicating if the
sample satisfies the criterion: true when the sample's value for the
field is a string equal to the criterion's value, false otherwise or
when the sample carries no usable value.
*/
func (e *Equal) SatisfiedBy(sample Sample) (bool, error) {
	v, ok, err := stringValueFor(sample, e.field)
	if err != nil || !ok {
		return false, err
	}
	return v == e.value, nil
}

// Value returns the value to which the field is constrained.
func (e *Equal) Value() string {
	return e.value
}

func (e *Equal) String() string {
	return fmt.Sprintf("%s is %s", e.field.Name(), e.value)
}

// Field returns the field to which the constraint applies.
func (ne *NotEqual) Field() *Field {
	return ne.field
}

/*
SatisfiedBy receives a sample and returns a boolean indicating if the
sample satisfies the criterion: true when the sample's value for the
field is a string different from the criterion's value, false otherwise
or when the sample carries no usable value.
*/
func (ne *NotEqual) SatisfiedBy(sample Sample) (bool, error) {
	v, ok, err := stringValueFor(sample, ne.field)
	if err != nil || !ok {
		return false, err
	}
	return v != ne.value, nil
}

// Value returns the value the field is constrained away from.
func (ne *NotEqual) Value() string {
	return ne.value
}

func (ne *NotEqual) String() string {
	return fmt.Sprintf("%s is not %s", ne.field.Name(), ne.value)
}

// Field returns the field to which the constraint applies.
func (gt *GreaterThan) Field() *Field {
	return gt.field
}

/*
SatisfiedBy receives a sample and returns a boolean indicating if the
sample satisfies the criterion. On continuous fields the sample's
float64 value must exceed the threshold; on ordinal fields the sample's
value must rank above the criterion's value on the field's domain.
Samples without a usable value never satisfy the criterion.
*/
func (gt *GreaterThan) SatisfiedBy(sample Sample) (bool, error) {
	if gt.field.OpType() == Ordinal {
		r, cr, ok, err := ordinalRanksFor(sample, gt.field, gt.value)
		if err != nil || !ok {
			return false, err
		}
		return r > cr, nil
	}
	v, ok, err := floatValueFor(sample, gt.field)
	if err != nil || !ok {
		return false, err
	}
	return v > gt.threshold, nil
}

// Threshold returns the numeric boundary for continuous fields.
func (gt *GreaterThan) Threshold() float64 {
	return gt.threshold
}

// Value returns the domain-value boundary for ordinal fields.
func (gt *GreaterThan) Value() string {
	return gt.value
}

func (gt *GreaterThan) String() string {
	return fmt.Sprintf("%s > %s", gt.field.Name(), boundaryString(gt.field, gt.threshold, gt.value))
}

// Field returns the field to which the constraint applies.
func (le *LessOrEqual) Field() *Field {
	return le.field
}

/*
SatisfiedBy receives a sample and returns a boolean indicating if the
sample satisfies the criterion. On continuous fields the sample's
float64 value must not exceed the threshold; on ordinal fields the
sample's value must rank at or below the criterion's value on the
field's domain. Samples without a usable value never satisfy the
criterion.
*/
func (le *LessOrEqual) SatisfiedBy(sample Sample) (bool, error) {
	if le.field.OpType() == Ordinal {
		r, cr, ok, err := ordinalRanksFor(sample, le.field, le.value)
		if err != nil || !ok {
			return false, err
		}
		return r <= cr, nil
	}
	v, ok, err := floatValueFor(sample, le.field)
	if err != nil || !ok {
		return false, err
	}
	return v <= le.threshold, nil
}

// Threshold returns the numeric boundary for continuous fields.
func (le *LessOrEqual) Threshold() float64 {
	return le.threshold
}

// Value returns the domain-value boundary for ordinal fields.
func (le *LessOrEqual) Value() string {
	return le.value
}

func (le *LessOrEqual) String() string {
	return fmt.Sprintf("%s <= %s", le.field.Name(), boundaryString(le.field, le.threshold, le.value))
}

func stringValueFor(sample Sample, f *Field) (string, bool, error) {
	val, err := sample.ValueFor(f)
	if err != nil {
		return "", false, err
	}
	if val == nil {
		return "", false, nil
	}
	sv, ok := val.(string)
	return sv, ok, nil
}

func floatValueFor(sample Sample, f *Field) (float64, bool, error) {
	val, err := sample.ValueFor(f)
	if err != nil {
		return 0, false, err
	}
	if val == nil {
		return 0, false, nil
	}
	fv, ok := val.(float64)
	return fv, ok, nil
}

func ordinalRanksFor(sample Sample, f *Field, boundary string) (int, int, bool, error) {
	v, ok, err := stringValueFor(sample, f)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	r, ok := f.Rank(v)
	if !ok {
		return 0, 0, false, nil
	}
	cr, ok := f.Rank(boundary)
	if !ok {
		return 0, 0, false, nil
	}
	return r, cr, true, nil
}

func boundaryString(f *Field, threshold float64, value string) string {
	if f.OpType() == Ordinal {
		return value
	}
	return strconv.FormatFloat(threshold, 'f', -1, 64)
}
