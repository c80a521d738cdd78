package tomldoc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind classifies the nodes of a document tree.
type Kind int

const (
	KindValue Kind = iota + 1
	KindTable
	KindArrayOfTables
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindTable:
		return "table"
	case KindArrayOfTables:
		return "array-of-tables"
	default:
		return "none"
	}
}

// Item is a node of the document tree: a *Value, a *Table or an
// *ArrayOfTables. A nil Item stands for "nothing there".
type Item interface {
	Kind() Kind
	item()
}

// Decor holds the whitespace and comments rendered around a key, a value or
// a table header. An unset side falls back to a default chosen by the encoder.
type Decor struct {
	prefix, suffix *string
}

func (d *Decor) Prefix() (string, bool) {
	if d.prefix == nil {
		return "", false
	}
	return *d.prefix, true
}

func (d *Decor) Suffix() (string, bool) {
	if d.suffix == nil {
		return "", false
	}
	return *d.suffix, true
}

func (d *Decor) SetPrefix(s string) { d.prefix = &s }
func (d *Decor) SetSuffix(s string) { d.suffix = &s }

// Clear resets both sides to their defaults.
func (d *Decor) Clear() {
	d.prefix, d.suffix = nil, nil
}

func (d *Decor) prefixOr(def string) string {
	if d.prefix == nil {
		return def
	}
	return *d.prefix
}

func (d *Decor) suffixOr(def string) string {
	if d.suffix == nil {
		return def
	}
	return *d.suffix
}

// Key is one segment of a key path.
type Key struct {
	name string
	repr string

	// leaf surrounds the full key of a key/value line, dotted surrounds
	// this segment when it is part of a dotted key.
	leaf   Decor
	dotted Decor
}

func NewKey(name string) *Key {
	return &Key{name: name}
}

func (k *Key) Name() string { return k.name }

// Repr returns the key as written in the source, or a canonical spelling
// for keys that were created programmatically.
func (k *Key) Repr() string {
	if k.repr != "" {
		return k.repr
	}
	return keyRepr(k.name)
}

func (k *Key) LeafDecor() *Decor { return &k.leaf }

func keyRepr(name string) string {
	if name != "" && isBareKey(name) {
		return name
	}
	return basicString(name)
}

func isBareKey(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isBareKeyChar(s[i]) {
			return false
		}
	}
	return true
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// ValueType is the TOML type of a *Value.
type ValueType int

const (
	Bool ValueType = iota + 1
	Integer
	Float
	String
	Datetime
	Array
)

func (t ValueType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Datetime:
		return "datetime"
	case Array:
		return "array"
	default:
		return "invalid"
	}
}

// Value is a scalar, a datetime or an array. Arrays are kept as written and
// only replaced as a whole.
type Value struct {
	typ ValueType
	b   bool
	i   int64
	f   float64
	s   string

	// elems holds *Value and inline *Table elements of an array.
	elems []Item

	repr  string
	decor Decor
}

func (*Value) Kind() Kind { return KindValue }
func (*Value) item() {}

func NewBool(b bool) *Value { return &Value{typ: Bool, b: b} }
func NewInteger(i int64) *Value { return &Value{typ: Integer, i: i} }
func NewFloat(f float64) *Value { return &Value{typ: Float, f: f} }
func NewString(s string) *Value { return &Value{typ: String, s: s} }

// NewValue converts a Go scalar into a *Value.
func NewValue(v any) (*Value, error) {
	switch x := v.(type) {
	case bool:
		return NewBool(x), nil
	case int:
		return NewInteger(int64(x)), nil
	case int32:
		return NewInteger(int64(x)), nil
	case int64:
		return NewInteger(x), nil
	case float32:
		return NewFloat(float64(x)), nil
	case float64:
		return NewFloat(x), nil
	case string:
		return NewString(x), nil
	default:
		return nil, fmt.Errorf("tomldoc: unsupported scalar type %T", v)
	}
}

func (v *Value) Type() ValueType { return v.typ }
func (v *Value) Bool() bool { return v.b }
func (v *Value) Int() int64 { return v.i }
func (v *Value) Float() float64 { return v.f }
func (v *Value) Str() string { return v.s }
func (v *Value) Decor() *Decor { return &v.decor }
func (v *Value) Elems() []Item { return v.elems }

// Repr returns the value as written in the source, or its canonical
// rendering for values created programmatically.
func (v *Value) Repr() string {
	if v.repr != "" {
		return v.repr
	}
	switch v.typ {
	case Bool:
		return strconv.FormatBool(v.b)
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return floatRepr(v.f)
	case String:
		return stringRepr(v.s)
	case Datetime:
		return v.s
	case Array:
		parts := make([]string, 0, len(v.elems))
		for _, e := range v.elems {
			var sb strings.Builder
			encodeValueItem(&sb, e, "", "")
			parts = append(parts, sb.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

// Interface returns the plain Go value: bool, int64, float64, string
// (datetimes keep their textual form) or []any for arrays.
func (v *Value) Interface() any {
	switch v.typ {
	case Bool:
		return v.b
	case Integer:
		return v.i
	case Float:
		return v.f
	case String, Datetime:
		return v.s
	case Array:
		res := make([]any, 0, len(v.elems))
		for _, e := range v.elems {
			res = append(res, PlainItem(e))
		}
		return res
	}
	return nil
}

func floatRepr(f float64) string {
	switch {
	case math.IsNaN(f):
		if math.Signbit(f) {
			return "-nan"
		}
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if a := math.Abs(f); a >= 1e16 || a != 0 && a < 1e-5 {
		m, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		n, _ := strconv.Atoi(exp)
		return m + "e" + strconv.Itoa(n)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func stringRepr(s string) string {
	if strings.ContainsAny(s, "\"\\") && !strings.Contains(s, "'") && !hasControl(s) {
		return "'" + s + "'"
	}
	return basicString(s)
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}

func basicString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\t':
			sb.WriteString(`\t`)
		case '\n':
			sb.WriteString(`\n`)
		case '\f':
			sb.WriteString(`\f`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04X`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// ArrayOfTables is a sequence of tables sharing one [[header]].
type ArrayOfTables struct {
	tables []*Table
}

func (*ArrayOfTables) Kind() Kind { return KindArrayOfTables }
func (*ArrayOfTables) item() {}

func NewArrayOfTables() *ArrayOfTables { return &ArrayOfTables{} }

func (a *ArrayOfTables) Len() int { return len(a.tables) }
func (a *ArrayOfTables) Tables() []*Table { return a.tables }
func (a *ArrayOfTables) Append(t *Table) { a.tables = append(a.tables, t) }
