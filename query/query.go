package query

// Attribute identifies one metadata field a filter can test.
type Attribute string

const (
	AttrDuration  Attribute = "duration"
	AttrSize      Attribute = "size"
	AttrFilename  Attribute = "filename"
	AttrContainer Attribute = "container"
	AttrBitrate   Attribute = "bitrate"
	AttrWidth     Attribute = "width"
	AttrHeight    Attribute = "height"
	AttrFramerate Attribute = "framerate"
)

// attributes maps flag names to the closed attribute set.
var attributes = map[string]Attribute{
	"duration":  AttrDuration,
	"size":      AttrSize,
	"filename":  AttrFilename,
	"container": AttrContainer,
	"bitrate":   AttrBitrate,
	"width":     AttrWidth,
	"height":    AttrHeight,
	"framerate": AttrFramerate,
}

// Numeric reports whether the attribute holds a numeric value.
// The only text attributes are filename and container.
func (a Attribute) Numeric() bool {
	return a != AttrFilename && a != AttrContainer
}

// Operator is a comparison applied between a metadata value and a filter value.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
	OpContains
)

func (op Operator) String() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpContains:
		return "contains"
	default:
		return "unknown"
	}
}

// validFor reports whether the operator applies to the attribute's type.
// Numeric attributes take the six comparison operators, text attributes
// take equality and containment.
func (op Operator) validFor(attr Attribute) bool {
	if attr.Numeric() {
		return op != OpContains
	}
	return op == OpEqual || op == OpContains
}

// Filter is one attribute/operator/value predicate.
// Number carries the value for numeric attributes, Text for text attributes.
type Filter struct {
	Attribute Attribute
	Operator  Operator
	Number    float64
	Text      string
}

// Connective joins the results of two adjacent filters.
type Connective int

const (
	And Connective = iota
	Or
)

func (c Connective) String() string {
	if c == And {
		return "AND"
	}
	return "OR"
}

// Query is the ordered filter sequence for one invocation: N filters joined
// by N-1 connectives, folded strictly left-to-right. A Query with no filters
// matches every record. Queries are built by Parse, are immutable afterwards,
// and are safe for concurrent evaluation.
type Query struct {
	Filters     []Filter
	Connectives []Connective
}

// Len returns the number of filter expressions in the query.
func (q *Query) Len() int {
	return len(q.Filters)
}

// Empty reports whether the query is the universal predicate.
func (q *Query) Empty() bool {
	return len(q.Filters) == 0
}
