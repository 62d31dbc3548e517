// Package classifier decides the data kind of a single input line.
package classifier

import (
	"math/big"
	"regexp"
	"strconv"
)

// Kind is the data kind a line is classified as.
type Kind int

const (
	// Integer is an optionally signed run of decimal digits of any length.
	Integer Kind = iota
	// Float is a signed decimal or scientific-notation literal.
	Float
	// String is anything else.
	String
)

// Kinds lists every kind in report and routing order.
var Kinds = [...]Kind{Integer, Float, String}

// NumKinds is the size of the closed Kind set.
const NumKinds = len(Kinds)

var (
	integerPattern = regexp.MustCompile(`^-?[0-9]+$`)
	floatPattern   = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// FileName returns the fixed output file name for the kind, without prefix.
func (k Kind) FileName() string {
	switch k {
	case Integer:
		return "integers.txt"
	case Float:
		return "floats.txt"
	default:
		return "strings.txt"
	}
}

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool {
	return k >= Integer && k <= String
}

// Classification is the result of classifying one trimmed line.
// Exactly one of IntValue / FloatValue is meaningful, depending on Kind.
type Classification struct {
	Kind       Kind
	Text       string
	IntValue   *big.Int
	FloatValue float64
}

// Classify returns the kind of a trimmed, non-empty line.
func Classify(line string) Kind {
	return ClassifyLine(line).Kind
}

// ClassifyLine classifies a trimmed, non-empty line and returns the parsed
// value alongside the kind. Integer is tested before Float because every
// integer literal also matches the float pattern. A line that matches a
// numeric pattern but cannot be parsed falls through to String.
func ClassifyLine(line string) Classification {
	if integerPattern.MatchString(line) {
		if v, ok := new(big.Int).SetString(line, 10); ok {
			return Classification{Kind: Integer, Text: line, IntValue: v}
		}
		return Classification{Kind: String, Text: line}
	}

	if floatPattern.MatchString(line) {
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			// Out of float64 range, e.g. "1e400".
			return Classification{Kind: String, Text: line}
		}
		return Classification{Kind: Float, Text: line, FloatValue: v}
	}

	return Classification{Kind: String, Text: line}
}
