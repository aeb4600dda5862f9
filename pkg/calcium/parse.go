package calcium

import (
	"math"
	"strconv"
	"strings"
)

// ParseKind tells which variant a ParsedValue holds.
type ParseKind int

const (
	Empty ParseKind = iota
	Invalid
	Numeric
)

func (k ParseKind) String() string {
	switch k {
	case Empty:
		return "Empty"
	case Invalid:
		return "Invalid"
	case Numeric:
		return "Numeric"
	default:
		return "ParseKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParsedValue is a raw input interpreted as a decimal number.
type ParsedValue struct {
	kind  ParseKind
	value float64
}

func (p ParsedValue) Kind() ParseKind { return p.kind }

// Value returns the number and true only when the input was Numeric.
func (p ParsedValue) Value() (float64, bool) {
	return p.value, p.kind == Numeric
}

// Parse interprets raw as a plain decimal literal. The empty string is Empty.
// Text that strconv cannot read, non-finite values and hex floats are Invalid.
// raw is not trimmed.
func Parse(raw string) ParsedValue {
	if raw == "" {
		return ParsedValue{kind: Empty}
	}
	if strings.ContainsAny(raw, "xXpP_") {
		return ParsedValue{kind: Invalid}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return ParsedValue{kind: Invalid}
	}
	return ParsedValue{kind: Numeric, value: v}
}
