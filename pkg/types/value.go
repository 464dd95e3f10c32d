package types

import (
	"fmt"
	"math"
	"strconv"
)

// FieldType is the declared type of a schema field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeList    FieldType = "list"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeBoolean, TypeList:
		return true
	}
	return false
}

// Value is a closed tagged union: string, integer, boolean or a list of
// Values. The zero Value is invalid and reports an empty Kind.
type Value struct {
	kind  FieldType
	str   string
	num   int64
	flag  bool
	items []Value
}

// String returns a string Value.
func String(s string) Value { return Value{kind: TypeString, str: s} }

// Integer returns an integer Value.
func Integer(n int64) Value { return Value{kind: TypeInteger, num: n} }

// Boolean returns a boolean Value.
func Boolean(b bool) Value { return Value{kind: TypeBoolean, flag: b} }

// List returns a list Value holding a copy of items.
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: TypeList, items: cp}
}

// Strings is a shorthand for a list of string Values.
func Strings(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return List(items...)
}

// Kind returns the runtime type of v.
func (v Value) Kind() FieldType { return v.kind }

// IsValid reports whether v was built through one of the constructors.
func (v Value) IsValid() bool { return v.kind != "" }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == TypeString }

// Int returns the integer payload and whether v is an integer.
func (v Value) Int() (int64, bool) { return v.num, v.kind == TypeInteger }

// Bool returns the boolean payload and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.flag, v.kind == TypeBoolean }

// Items returns a copy of the list elements, or nil for scalars.
func (v Value) Items() []Value {
	if v.kind != TypeList {
		return nil
	}
	cp := make([]Value, len(v.items))
	copy(cp, v.items)
	return cp
}

// Text renders a scalar in its canonical textual form. Lists render their
// elements space separated, which is only meant for messages.
func (v Value) Text() string {
	switch v.kind {
	case TypeString:
		return v.str
	case TypeInteger:
		return strconv.FormatInt(v.num, 10)
	case TypeBoolean:
		return strconv.FormatBool(v.flag)
	case TypeList:
		return fmt.Sprint(v.Native())
	}
	return ""
}

// Tokens returns the textual occurrences of v: one per element for a list,
// a single token for a scalar.
func (v Value) Tokens() []string {
	if v.kind != TypeList {
		return []string{v.Text()}
	}
	out := make([]string, len(v.items))
	for i, item := range v.items {
		out[i] = item.Text()
	}
	return out
}

// Native converts v to plain Go values: string, int64, bool or []any.
func (v Value) Native() any {
	switch v.kind {
	case TypeString:
		return v.str
	case TypeInteger:
		return v.num
	case TypeBoolean:
		return v.flag
	case TypeList:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Native()
		}
		return out
	}
	return nil
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case TypeString:
		return v.str == o.str
	case TypeInteger:
		return v.num == o.num
	case TypeBoolean:
		return v.flag == o.flag
	case TypeList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
	}
	return true
}

// GoString makes test failures readable.
func (v Value) GoString() string {
	if v.kind == TypeString {
		return strconv.Quote(v.str)
	}
	return v.Text()
}

// ValueFromNative converts loosely typed loader data into a Value. Floats are
// accepted only when integral, since decoders such as encoding/json produce
// float64 for every number.
func ValueFromNative(raw any) (Value, error) {
	switch x := raw.(type) {
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Boolean(x), nil
	case int:
		return Integer(int64(x)), nil
	case int8:
		return Integer(int64(x)), nil
	case int16:
		return Integer(int64(x)), nil
	case int32:
		return Integer(int64(x)), nil
	case int64:
		return Integer(x), nil
	case uint:
		return unsignedValue(uint64(x))
	case uint8:
		return Integer(int64(x)), nil
	case uint16:
		return Integer(int64(x)), nil
	case uint32:
		return Integer(int64(x)), nil
	case uint64:
		return unsignedValue(x)
	case float32:
		return floatValue(float64(x))
	case float64:
		return floatValue(x)
	case []string:
		return Strings(x...), nil
	case []any:
		items := make([]Value, 0, len(x))
		for i, elem := range x {
			item, err := ValueFromNative(elem)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			items = append(items, item)
		}
		return List(items...), nil
	case nil:
		return Value{}, fmt.Errorf("null is not a supported value")
	}
	return Value{}, fmt.Errorf("unsupported value type %T", raw)
}

func unsignedValue(n uint64) (Value, error) {
	if n > math.MaxInt64 {
		return Value{}, fmt.Errorf("integer %d overflows int64", n)
	}
	return Integer(int64(n)), nil
}

func floatValue(f float64) (Value, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return Value{}, fmt.Errorf("number %v is not an integer", f)
	}
	return Integer(int64(f)), nil
}
