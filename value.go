package tomledit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kevinwang15/tomledit/tomldoc"
)

// DeleteSentinel is the raw value that asks for a path to be removed.
const DeleteSentinel = "$undefined"

type ScalarKind int

const (
	BoolKind ScalarKind = iota + 1
	IntKind
	FloatKind
	StringKind
)

func (k ScalarKind) String() string {
	switch k {
	case BoolKind:
		return "bool"
	case IntKind:
		return "integer"
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	}
	return "invalid"
}

// Scalar is a typed value to be written at a path.
type Scalar struct {
	Kind  ScalarKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

func Bool(b bool) Scalar { return Scalar{Kind: BoolKind, Bool: b} }
func Int(i int64) Scalar { return Scalar{Kind: IntKind, Int: i} }
func Float(f float64) Scalar { return Scalar{Kind: FloatKind, Float: f} }
func String(s string) Scalar { return Scalar{Kind: StringKind, Str: s} }

// ParseValue infers the type of a raw instruction value. It reports false
// when raw is the delete sentinel. Type inference looks at the trimmed text;
// strings keep the text as given.
func ParseValue(raw string) (Scalar, bool) {
	s := strings.TrimSpace(raw)
	switch s {
	case "true":
		return Bool(true), true
	case "false":
		return Bool(false), true
	case DeleteSentinel:
		return Scalar{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), true
	}
	if f, ok := parseFloat(s); ok {
		return Float(f), true
	}
	return String(raw), true
}

// parseFloat accepts decimal floats, exponents and the inf/infinity/nan
// spellings. Values too large for a float64 become infinities.
func parseFloat(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	if len(s) == 4 && (s[0] == '-' || s[0] == '+') && strings.EqualFold(s[1:], "nan") {
		if s[0] == '-' {
			return math.Copysign(math.NaN(), -1), true
		}
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// Value converts s to a document value.
func (s Scalar) Value() *tomldoc.Value {
	switch s.Kind {
	case BoolKind:
		return tomldoc.NewBool(s.Bool)
	case IntKind:
		return tomldoc.NewInteger(s.Int)
	case FloatKind:
		return tomldoc.NewFloat(s.Float)
	}
	return tomldoc.NewString(s.Str)
}

func (s Scalar) Interface() any {
	switch s.Kind {
	case BoolKind:
		return s.Bool
	case IntKind:
		return s.Int
	case FloatKind:
		return s.Float
	}
	return s.Str
}

// String returns the TOML spelling of s.
func (s Scalar) String() string {
	return s.Value().Repr()
}

// Equal reports whether v holds the same value as s. Integers and floats
// compare by numeric value.
func (s Scalar) Equal(v *tomldoc.Value) bool {
	if v == nil {
		return false
	}
	switch s.Kind {
	case BoolKind:
		return v.Type() == tomldoc.Bool && v.Bool() == s.Bool
	case StringKind:
		return v.Type() == tomldoc.String && v.Str() == s.Str
	case IntKind:
		switch v.Type() {
		case tomldoc.Integer:
			return v.Int() == s.Int
		case tomldoc.Float:
			return v.Float() == float64(s.Int)
		}
	case FloatKind:
		switch v.Type() {
		case tomldoc.Float:
			return v.Float() == s.Float || math.IsNaN(v.Float()) && math.IsNaN(s.Float)
		case tomldoc.Integer:
			return float64(v.Int()) == s.Float
		}
	}
	return false
}

// ScalarOf converts a decoded JSON or YAML value into a Scalar.
func ScalarOf(v any) (Scalar, error) {
	switch x := v.(type) {
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return Float(float64(x)), nil
		}
		return Int(int64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case interface{ Int64() (int64, error) }:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		if f, ok := x.(interface{ Float64() (float64, error) }); ok {
			if fv, err := f.Float64(); err == nil {
				return Float(fv), nil
			}
		}
	}
	return Scalar{}, fmt.Errorf("%w: %T", ErrNonScalar, v)
}
