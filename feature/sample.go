package feature

import "fmt"

/*
Sample represents one event on a stream: something field values can be
read from.

Its ValueFor method returns the value the event carries for the given
field. A nil value with a nil error indicates the event carries no
value for the field.
*/
type Sample interface {
	ValueFor(f *Field) (interface{}, error)
}

type sample struct {
	fieldValues map[string]interface{}
}

/*
NewSample takes a map of field names to values and returns a sample
backed by it.
*/
func NewSample(fieldValues map[string]interface{}) Sample {
	return &sample{fieldValues}
}

func (s *sample) ValueFor(f *Field) (interface{}, error) {
	return s.fieldValues[f.Name()], nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.fieldValues)
}
