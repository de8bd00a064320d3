package query

import (
	"fmt"
	"strings"

	"github.com/lepinkainen/vfind/video"
)

// Evaluate reports whether the metadata record satisfies the query.
//
// Filters are evaluated strictly left-to-right and folded with the
// connectives in encounter order: AND and OR bind equally and associate
// left. There is no grouping and no AND-over-OR precedence, so a trailing
// OR-true filter can override an earlier AND-false chain. A later filter is
// skipped only when the accumulator already determines the outcome and
// every remaining connective agrees (a false accumulator with only ANDs
// left, or a true one with only ORs left) — with mixed connectives ahead,
// a later OR could still flip a false result.
//
// Evaluation is pure and deterministic; an empty query matches every
// record. A query violating the filter/connective alternation invariant is
// a parser bug and panics.
func (q *Query) Evaluate(md *video.Metadata) bool {
	if len(q.Filters) == 0 {
		return true
	}
	if len(q.Connectives) != len(q.Filters)-1 {
		panic(fmt.Sprintf("query: %d filters require %d connectives, have %d",
			len(q.Filters), len(q.Filters)-1, len(q.Connectives)))
	}

	acc := q.Filters[0].matches(md)
	for i := 1; i < len(q.Filters); i++ {
		conn := q.Connectives[i-1]
		if conn == And && !acc && uniformFrom(q.Connectives, i-1, And) {
			return false
		}
		if conn == Or && acc && uniformFrom(q.Connectives, i-1, Or) {
			return true
		}

		cur := q.Filters[i].matches(md)
		if conn == And {
			acc = acc && cur
		} else {
			acc = acc || cur
		}
	}
	return acc
}

// uniformFrom reports whether every connective from index i onward equals c.
func uniformFrom(conns []Connective, i int, c Connective) bool {
	for ; i < len(conns); i++ {
		if conns[i] != c {
			return false
		}
	}
	return true
}

// matches evaluates a single filter against the record.
func (f *Filter) matches(md *video.Metadata) bool {
	if f.Attribute.Numeric() {
		return compareNumber(f.Operator, numericValue(f.Attribute, md), f.Number)
	}
	return compareText(f.Operator, textValue(f.Attribute, md), f.Text)
}

// numericValue selects the record field for a numeric attribute, widened to
// a single comparison domain.
func numericValue(attr Attribute, md *video.Metadata) float64 {
	switch attr {
	case AttrDuration:
		return md.Duration
	case AttrSize:
		return float64(md.Size)
	case AttrBitrate:
		return float64(md.Bitrate)
	case AttrWidth:
		return float64(md.Width)
	case AttrHeight:
		return float64(md.Height)
	case AttrFramerate:
		return md.Framerate
	default:
		panic(fmt.Sprintf("query: attribute %q is not numeric", attr))
	}
}

func textValue(attr Attribute, md *video.Metadata) string {
	switch attr {
	case AttrFilename:
		return md.Filename
	case AttrContainer:
		return md.Container
	default:
		panic(fmt.Sprintf("query: attribute %q is not text", attr))
	}
}

// compareNumber applies a comparison operator. Equality is exact, no
// epsilon: both sides pass through the same float64 parse, so a record
// value matches the literal the user typed or not at all.
func compareNumber(op Operator, have, want float64) bool {
	switch op {
	case OpEqual:
		return have == want
	case OpNotEqual:
		return have != want
	case OpGreater:
		return have > want
	case OpGreaterEqual:
		return have >= want
	case OpLess:
		return have < want
	case OpLessEqual:
		return have <= want
	default:
		panic(fmt.Sprintf("query: operator %q reached numeric comparison", op))
	}
}

// compareText applies a case-insensitive text operator: equality is a full
// match, containment a substring test.
func compareText(op Operator, have, want string) bool {
	switch op {
	case OpEqual:
		return strings.EqualFold(have, want)
	case OpContains:
		return strings.Contains(strings.ToLower(have), strings.ToLower(want))
	default:
		panic(fmt.Sprintf("query: operator %q reached text comparison", op))
	}
}
