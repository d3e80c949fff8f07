package field

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// wireValue is the store's JSON value shape. Only the kinds this package
// models are declared; other kinds (integerValue, mapValue, ...) decode to
// an empty wireValue and are dropped.
type wireValue struct {
	StringValue *string    `json:"stringValue,omitempty"`
	ArrayValue  *wireArray `json:"arrayValue,omitempty"`
}

type wireArray struct {
	Values []wireValue `json:"values,omitempty"`
}

func toWire(v Value) (wireValue, error) {
	switch tv := v.(type) {
	case String:
		s := string(tv)
		return wireValue{StringValue: &s}, nil
	case Array:
		arr := &wireArray{Values: make([]wireValue, 0, len(tv.Values))}
		for i, m := range tv.Values {
			w, err := toWire(m)
			if err != nil {
				return wireValue{}, fmt.Errorf("array member %d: %w", i, err)
			}
			arr.Values = append(arr.Values, w)
		}
		return wireValue{ArrayValue: arr}, nil
	default:
		return wireValue{}, fmt.Errorf("unsupported field value %T", v)
	}
}

// fromWire returns nil for kinds outside the closed set.
func fromWire(w wireValue) Value {
	switch {
	case w.StringValue != nil:
		return String(*w.StringValue)
	case w.ArrayValue != nil:
		vals := make([]Value, 0, len(w.ArrayValue.Values))
		for _, m := range w.ArrayValue.Values {
			if v := fromWire(m); v != nil {
				vals = append(vals, v)
			}
		}
		return Array{Values: vals}
	default:
		return nil
	}
}

// MarshalJSON encodes fields in the store's value shape.
func (f Fields) MarshalJSON() ([]byte, error) {
	out := make(map[string]wireValue, len(f))
	for k, v := range f {
		w, err := toWire(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = w
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes fields from the store's value shape. Unknown value
// kinds are skipped so they read back as absent.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]wireValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	out := make(Fields, len(raw))
	for k, w := range raw {
		if v := fromWire(w); v != nil {
			out[k] = v
		}
	}
	*f = out
	return nil
}
