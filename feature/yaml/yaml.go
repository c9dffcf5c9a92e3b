/*
Package yaml provides methods to parse feature.Field specifications,
also known as metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"os"
	"sort"

	"github.com/modelop/sapling/feature"
	yaml "gopkg.in/yaml.v2"
)

type fieldSpec struct {
	Type     string   `yaml:"type"`
	Role     string   `yaml:"role"`
	DataType string   `yaml:"datatype"`
	Values   []string `yaml:"values"`
}

/*
ReadFields takes a slice of bytes with a field specification in YML and
returns a slice of fields parsed from it or an error.
The YML is expected to be an object containing a fields property, with
a property per field. Each field declares its operational type
('categorical', 'continuous' or 'ordinal'), optionally a role ('active'
by default, or 'predicted' or 'ignored'), optionally a datatype for
continuous fields ('double' by default, or 'integer') and, for ordinal
fields, the ordered list of values of its domain. Categorical fields
may also declare a values list to restrict their valid values.
Fields are returned ordered by name.
*/
func ReadFields(md []byte) ([]*feature.Field, error) {
	metadata := struct {
		Fields map[string]*fieldSpec
	}{}
	err := yaml.Unmarshal(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml fields: %v", err)
	}
	if metadata.Fields == nil {
		return nil, fmt.Errorf("metadata file has no field information")
	}
	names := make([]string, 0, len(metadata.Fields))
	for fn := range metadata.Fields {
		names = append(names, fn)
	}
	sort.Strings(names)
	fields := []*feature.Field{}
	for _, fn := range names {
		f, err := parseField(fn, metadata.Fields[fn])
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

/*
ReadFieldsFromFile takes a filepath string, reads its contents and uses
ReadFields to parse it and return a slice of parsed fields or an error.
If the file indicated by the filepath cannot be opened for reading an
error will be returned.
*/
func ReadFieldsFromFile(filepath string) ([]*feature.Field, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading fields yml file %s: %v", filepath, err)
	}
	fields, err := ReadFields(md)
	if err != nil {
		err = fmt.Errorf("parsing fields yml file %s: %v", filepath, err)
	}
	return fields, err
}

func parseField(name string, spec *fieldSpec) (*feature.Field, error) {
	if spec == nil {
		return nil, fmt.Errorf("field %s has no declaration", name)
	}
	role, err := parseRole(name, spec.Role)
	if err != nil {
		return nil, err
	}
	switch spec.Type {
	case "categorical":
		return feature.NewCategoricalField(name, role, spec.Values...), nil
	case "continuous":
		dt, err := parseDataType(name, spec.DataType)
		if err != nil {
			return nil, err
		}
		return feature.NewContinuousField(name, role, dt), nil
	case "ordinal":
		if len(spec.Values) == 0 {
			return nil, fmt.Errorf("ordinal field %s declares no value domain", name)
		}
		return feature.NewOrdinalField(name, role, spec.Values), nil
	}
	return nil, fmt.Errorf("field %s has invalid type %q", name, spec.Type)
}

func parseRole(name, role string) (feature.Role, error) {
	switch role {
	case "", "active":
		return feature.Active, nil
	case "predicted":
		return feature.Predicted, nil
	case "ignored":
		return feature.Ignored, nil
	}
	return 0, fmt.Errorf("field %s has invalid role %q", name, role)
}

func parseDataType(name, dataType string) (feature.DataType, error) {
	switch dataType {
	case "", "double":
		return feature.Double, nil
	case "integer":
		return feature.Integer, nil
	}
	return 0, fmt.Errorf("continuous field %s has invalid datatype %q", name, dataType)
}
