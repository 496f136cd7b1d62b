// Package digitspec parses the human-friendly digit counts accepted on the
// command line, in the REPL and by the HTTP API: plain integers ("12345"),
// decimal suffixes ("1K", "10m", "2G", "1T") and integer scientific notation
// ("1e6", "3E7").
package digitspec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind classifies why a digit specification was rejected.
type Kind int

const (
	// KindEmpty means the input was empty after trimming whitespace.
	KindEmpty Kind = iota
	// KindBadScientific means one side of an 'e'/'E' was missing.
	KindBadScientific
	// KindBadMantissa means the part before 'e'/'E' is not an unsigned integer.
	KindBadMantissa
	// KindBadExponent means the part after 'e'/'E' is not an unsigned integer.
	KindBadExponent
	// KindExponentTooLarge means 10^exponent does not fit in 64 bits.
	KindExponentTooLarge
	// KindMissingNumber means a suffix was given without any digits before it.
	KindMissingNumber
	// KindBadNumber means the part before the suffix is not an unsigned integer.
	KindBadNumber
	// KindOverflow means the scaled value does not fit in 64 bits.
	KindOverflow
	// KindTooLarge means the value exceeds the caller's limit.
	KindTooLarge
)

var kindNames = map[Kind]string{
	KindEmpty:            "empty",
	KindBadScientific:    "bad_scientific",
	KindBadMantissa:      "bad_mantissa",
	KindBadExponent:      "bad_exponent",
	KindExponentTooLarge: "exponent_too_large",
	KindMissingNumber:    "missing_number",
	KindBadNumber:        "bad_number",
	KindOverflow:         "overflow",
	KindTooLarge:         "too_large",
}

// String returns a stable machine-readable name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// SpecError is returned by Parse for every rejected input.
type SpecError struct {
	Kind  Kind
	Input string
	// Value and Limit are set for KindTooLarge.
	Value uint64
	Limit uint64
}

// Error renders the message shown to the user.
func (e *SpecError) Error() string {
	switch e.Kind {
	case KindEmpty:
		return "Empty digits specification"
	case KindBadScientific:
		return fmt.Sprintf("Invalid scientific notation: %q", e.Input)
	case KindBadMantissa:
		return fmt.Sprintf("Invalid mantissa in %q", e.Input)
	case KindBadExponent:
		return fmt.Sprintf("Invalid exponent in %q", e.Input)
	case KindExponentTooLarge:
		return fmt.Sprintf("Exponent too large in %q", e.Input)
	case KindMissingNumber:
		return fmt.Sprintf("Missing number before suffix in %q", e.Input)
	case KindBadNumber:
		return fmt.Sprintf("Invalid number part in %q", e.Input)
	case KindOverflow:
		return fmt.Sprintf("Digits value overflow for %q", e.Input)
	case KindTooLarge:
		return fmt.Sprintf("Too many digits (%d), max supported is %d", e.Value, e.Limit)
	default:
		return fmt.Sprintf("Invalid digits specification %q", e.Input)
	}
}

// suffixes maps an upper-case suffix letter to its multiplier.
var suffixes = map[byte]uint64{
	'K': 1_000,
	'M': 1_000_000,
	'G': 1_000_000_000,
	'T': 1_000_000_000_000,
}

// Parse converts spec into a digit count no greater than limit.
// A limit of 0 means no limit beyond what fits in a uint64.
//
// Surrounding whitespace is ignored. The presence of 'e' or 'E' anywhere
// selects scientific notation; otherwise a trailing K, M, G or T (any case)
// selects a multiplier. All other input must be a plain unsigned integer.
func Parse(spec string, limit uint64) (uint64, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return 0, &SpecError{Kind: KindEmpty, Input: spec}
	}

	var (
		value uint64
		err   error
	)
	if pos := strings.IndexAny(s, "eE"); pos >= 0 {
		value, err = parseScientific(spec, s[:pos], s[pos+1:])
	} else {
		value, err = parseSuffixed(spec, s)
	}
	if err != nil {
		return 0, err
	}

	if limit > 0 && value > limit {
		return 0, &SpecError{Kind: KindTooLarge, Input: spec, Value: value, Limit: limit}
	}
	return value, nil
}

func parseScientific(spec, mantissaStr, expStr string) (uint64, error) {
	if mantissaStr == "" || expStr == "" {
		return 0, &SpecError{Kind: KindBadScientific, Input: spec}
	}
	mantissa, err := parseUnsigned(mantissaStr)
	if err != nil {
		return 0, &SpecError{Kind: KindBadMantissa, Input: spec}
	}
	exp, err := parseUnsigned(expStr)
	if err != nil || exp > math.MaxUint32 {
		return 0, &SpecError{Kind: KindBadExponent, Input: spec}
	}
	multiplier, ok := pow10(exp)
	if !ok {
		return 0, &SpecError{Kind: KindExponentTooLarge, Input: spec}
	}
	value, ok := mulChecked(mantissa, multiplier)
	if !ok {
		return 0, &SpecError{Kind: KindOverflow, Input: spec}
	}
	return value, nil
}

func parseSuffixed(spec, s string) (uint64, error) {
	numStr, multiplier := s, uint64(1)
	last := s[len(s)-1]
	if last >= 'a' && last <= 'z' {
		last -= 'a' - 'A'
	}
	if m, ok := suffixes[last]; ok {
		numStr, multiplier = s[:len(s)-1], m
	}
	if numStr == "" {
		return 0, &SpecError{Kind: KindMissingNumber, Input: spec}
	}
	base, err := parseUnsigned(numStr)
	if err != nil {
		return 0, &SpecError{Kind: KindBadNumber, Input: spec}
	}
	value, ok := mulChecked(base, multiplier)
	if !ok {
		return 0, &SpecError{Kind: KindOverflow, Input: spec}
	}
	return value, nil
}

// parseUnsigned accepts an optional leading '+' followed by decimal digits.
func parseUnsigned(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "+")
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(s, 10, 64)
}

func pow10(exp uint64) (uint64, bool) {
	result := uint64(1)
	for i := uint64(0); i < exp; i++ {
		var ok bool
		if result, ok = mulChecked(result, 10); !ok {
			return 0, false
		}
	}
	return result, true
}

func mulChecked(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}
