package query

import "fmt"

// UnknownAttributeError reports a filter flag that names no known attribute.
type UnknownAttributeError struct {
	Name string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %q", e.Name)
}

// InvalidOperatorError reports an operator applied to an attribute of the
// wrong type, e.g. "contains" on a numeric attribute.
type InvalidOperatorError struct {
	Attribute Attribute
	Operator  Operator
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("operator %q is not valid for attribute %q", e.Operator, e.Attribute)
}

// ValueParseError reports a filter value that cannot be converted to the
// attribute's semantic type.
type ValueParseError struct {
	Attribute Attribute
	Value     string
	Reason    error
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("invalid value %q for attribute %q: %v", e.Value, e.Attribute, e.Reason)
}

func (e *ValueParseError) Unwrap() error {
	return e.Reason
}

// MalformedQueryError reports a connective in an illegal position: leading,
// trailing, or doubled.
type MalformedQueryError struct {
	Detail string
}

func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("malformed query: %s", e.Detail)
}
