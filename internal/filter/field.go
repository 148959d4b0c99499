package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldType is the declared type of a record field.
type FieldType int

// Supported field types. Fields of any other type cannot be filtered on.
const (
	TypeUnknown FieldType = iota
	TypeInt
	TypeString
	TypeStringList
)

// Field declares one record field.
type Field struct {
	Name string
	Type FieldType
}

// Schema is the ordered list of fields of a record type.
type Schema []Field

// Lookup returns the declared type of a field.
func (s Schema) Lookup(name string) (FieldType, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Type, true
		}
	}
	return TypeUnknown, false
}

// Names returns the field names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for _, f := range s {
		names = append(names, f.Name)
	}
	return names
}

// Record is anything whose fields can be read by name.
type Record interface {
	FieldValue(name string) any
}

// Predicate decides whether a record passes.
type Predicate func(Record) bool

// ValueTest checks one field value.
type ValueTest func(value any) bool

// NewValueTest builds the typed test for a pattern. Integer fields compare
// for equality, string fields search the pattern as a regular expression,
// string lists match when any element does. It returns a nil test and no
// error for field types it does not know how to test.
func NewValueTest(fieldType FieldType, pattern string) (ValueTest, error) {
	switch fieldType {
	case TypeInt:
		want, err := strconv.Atoi(strings.TrimSpace(pattern))
		if err != nil {
			return nil, fmt.Errorf("parse integer pattern %q: %w", pattern, err)
		}
		return func(value any) bool {
			v, ok := value.(int)
			return ok && v == want
		}, nil
	case TypeString:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		return func(value any) bool {
			v, ok := value.(string)
			return ok && re.MatchString(v)
		}, nil
	case TypeStringList:
		elem, err := NewValueTest(TypeString, pattern)
		if err != nil {
			return nil, err
		}
		return func(value any) bool {
			values, ok := value.([]string)
			if !ok {
				return false
			}
			for _, v := range values {
				if elem(v) {
					return true
				}
			}
			return false
		}, nil
	}
	return nil, nil
}

// fieldTest binds a value test to the field it reads.
type fieldTest struct {
	field string
	test  ValueTest
}

func (f fieldTest) match(r Record) bool {
	return f.test(r.FieldValue(f.field))
}

func compileFieldTest(schema Schema, field string, pattern string) (*fieldTest, error) {
	fieldType, ok := schema.Lookup(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	test, err := NewValueTest(fieldType, pattern)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", field, err)
	}
	if test == nil {
		return nil, nil
	}
	return &fieldTest{field: field, test: test}, nil
}
