package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// connectiveFlags maps the CLI connective tokens.
var connectiveFlags = map[string]Connective{
	"-a": And,
	"-o": Or,
}

// sizeUnits are 1024-based multipliers shared by size and bitrate values.
var sizeUnits = map[string]float64{
	"b":  1,
	"kb": 1024,
	"mb": 1024 * 1024,
	"gb": 1024 * 1024 * 1024,
}

// durationUnits convert duration values to seconds.
var durationUnits = map[string]float64{
	"sec": 1, "s": 1, "seconds": 1,
	"min": 60, "m": 60, "minutes": 60,
	"hr": 3600, "h": 3600, "hours": 3600,
}

// symbolOperators in longest-match-first order, so ">=" wins over ">".
var symbolOperators = []struct {
	symbol string
	op     Operator
}{
	{">=", OpGreaterEqual},
	{"<=", OpLessEqual},
	{"!=", OpNotEqual},
	{">", OpGreater},
	{"<", OpLess},
	{"=", OpEqual},
}

// defaultOperator is applied when a filter value carries no explicit
// operator: numeric attributes compare greater-or-equal, filename matches
// by substring and container by equality.
func defaultOperator(attr Attribute) Operator {
	switch {
	case attr.Numeric():
		return OpGreaterEqual
	case attr == AttrFilename:
		return OpContains
	default:
		return OpEqual
	}
}

// Parse converts the flat token sequence from the command line into a Query.
//
// The grammar is a flat alternation of filter expressions and connectives:
//
//	-duration '>=90:min' -a -container =mp4 -o -filename contains trailer
//
// Each filter is an attribute flag followed by an operator+value token; the
// operator may also stand alone with the value as the next token. A filter
// with no explicit operator takes the attribute's default. Two adjacent
// filters with no connective between them are joined with AND. An empty
// token sequence yields the universal query.
func Parse(tokens []string) (*Query, error) {
	q := &Query{}
	var pending *Connective

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if conn, ok := connectiveFlags[tok]; ok {
			if q.Len() == 0 {
				return nil, &MalformedQueryError{Detail: fmt.Sprintf("connective %s before any filter", conn)}
			}
			if pending != nil {
				return nil, &MalformedQueryError{Detail: fmt.Sprintf("connective %s follows connective %s", conn, *pending)}
			}
			c := conn
			pending = &c
			continue
		}

		if !strings.HasPrefix(tok, "-") {
			return nil, &MalformedQueryError{Detail: fmt.Sprintf("unexpected token %q, expected a filter flag", tok)}
		}

		name := strings.TrimPrefix(tok, "-")
		attr, ok := attributes[strings.ToLower(name)]
		if !ok {
			return nil, &UnknownAttributeError{Name: name}
		}

		if i+1 >= len(tokens) {
			return nil, &MalformedQueryError{Detail: fmt.Sprintf("expected a value after -%s", attr)}
		}
		i++
		op, value, consumed, err := splitOperator(attr, tokens[i:])
		if err != nil {
			return nil, err
		}
		i += consumed - 1

		if !op.validFor(attr) {
			return nil, &InvalidOperatorError{Attribute: attr, Operator: op}
		}

		filter := Filter{Attribute: attr, Operator: op}
		if attr.Numeric() {
			filter.Number, err = parseNumericValue(attr, value)
			if err != nil {
				return nil, err
			}
		} else {
			if value == "" {
				return nil, &ValueParseError{Attribute: attr, Value: value, Reason: errors.New("empty value")}
			}
			filter.Text = value
		}

		if q.Len() > 0 {
			conn := And
			if pending != nil {
				conn = *pending
			}
			q.Connectives = append(q.Connectives, conn)
		}
		pending = nil
		q.Filters = append(q.Filters, filter)
	}

	if pending != nil {
		return nil, &MalformedQueryError{Detail: fmt.Sprintf("trailing connective %s", *pending)}
	}
	return q, nil
}

// splitOperator extracts the operator and raw value from the tokens
// following an attribute flag. It handles the fused form (">=120"), the
// split form ("contains" "trailer" or ">=" "120"), and the bare-value form
// ("120", default operator). consumed is the number of tokens used.
func splitOperator(attr Attribute, tokens []string) (op Operator, value string, consumed int, err error) {
	tok := tokens[0]

	if tok == "contains" {
		if len(tokens) < 2 {
			return 0, "", 0, &MalformedQueryError{Detail: fmt.Sprintf("expected a value after -%s contains", attr)}
		}
		return OpContains, tokens[1], 2, nil
	}

	for _, so := range symbolOperators {
		if !strings.HasPrefix(tok, so.symbol) {
			continue
		}
		rest := tok[len(so.symbol):]
		if rest != "" {
			return so.op, rest, 1, nil
		}
		if len(tokens) < 2 {
			return 0, "", 0, &MalformedQueryError{Detail: fmt.Sprintf("expected a value after -%s %s", attr, so.symbol)}
		}
		return so.op, tokens[1], 2, nil
	}

	return defaultOperator(attr), tok, 1, nil
}

// parseNumericValue converts a filter value to the attribute's numeric
// domain. Size and bitrate accept an optional ":unit" suffix with 1024-based
// multipliers; duration accepts second/minute/hour unit suffixes. Width,
// height and framerate take a plain number.
func parseNumericValue(attr Attribute, value string) (float64, error) {
	raw, unit, hasUnit := strings.Cut(value, ":")

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValueParseError{Attribute: attr, Value: value, Reason: errors.New("not a number")}
	}
	if n < 0 {
		return 0, &ValueParseError{Attribute: attr, Value: value, Reason: errors.New("negative value")}
	}

	if !hasUnit {
		return n, nil
	}

	unit = strings.ToLower(unit)
	switch attr {
	case AttrSize, AttrBitrate:
		mult, ok := sizeUnits[unit]
		if !ok {
			return 0, &ValueParseError{Attribute: attr, Value: value, Reason: fmt.Errorf("unknown unit %q", unit)}
		}
		return n * mult, nil
	case AttrDuration:
		mult, ok := durationUnits[unit]
		if !ok {
			return 0, &ValueParseError{Attribute: attr, Value: value, Reason: fmt.Errorf("unknown unit %q", unit)}
		}
		return n * mult, nil
	default:
		return 0, &ValueParseError{Attribute: attr, Value: value, Reason: fmt.Errorf("attribute %s takes no unit", attr)}
	}
}
