// Package field models a single schema-free document field as a closed set of
// tagged variants and maps it to the store's JSON value shape.
package field

// Value is a tagged document field value. The set of variants is closed:
// String and Array are the only implementations.
type Value interface {
	isValue()
}

// String is a string field value.
type String string

// Array is an ordered sequence of field values. Members are expected to be
// String, but readers must tolerate anything else.
type Array struct {
	Values []Value
}

func (String) isValue() {}
func (Array) isValue()  {}

// Fields maps field names to values.
type Fields map[string]Value

// Str wraps s as a String value.
func Str(s string) Value { return String(s) }

// Strs wraps xs as an Array of String values. A nil slice yields an empty array.
func Strs(xs []string) Value {
	vals := make([]Value, len(xs))
	for i, x := range xs {
		vals[i] = String(x)
	}
	return Array{Values: vals}
}

// DecodeString returns fields[key] when it is a String, "" otherwise.
// Documents are schema-free and older ones may lack newer fields, so absence
// and mismatch are not errors.
func DecodeString(fields Fields, key string) string {
	if s, ok := fields[key].(String); ok {
		return string(s)
	}
	return ""
}

// DecodeStringArray returns the String members of fields[key] when it is an
// Array, skipping members of any other variant. Absent or mismatched keys
// yield an empty slice.
func DecodeStringArray(fields Fields, key string) []string {
	arr, ok := fields[key].(Array)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr.Values))
	for _, v := range arr.Values {
		if s, ok := v.(String); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// Equal reports structural equality of two values.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av.Values) != len(bv.Values) {
			return false
		}
		for i := range av.Values {
			if !Equal(av.Values[i], bv.Values[i]) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}

// Clone returns a shallow copy of f. Values are immutable so sharing them is safe.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	c := make(Fields, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}
