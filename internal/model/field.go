package model

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// CustomKind discriminates the value types allowed in custom fields.
type CustomKind string

const (
	CustomString CustomKind = "string"
	CustomNumber CustomKind = "number"
	CustomBool   CustomKind = "bool"
)

// CustomValue is a loosely-typed custom field value. Product records accept
// an open-ended mapping of domain-specific attributes whose values may be
// strings, numbers, or booleans; modeling the union explicitly preserves the
// original type across serialize/deserialize round trips.
type CustomValue struct {
	Kind CustomKind
	Str  string
	Num  float64
	Bool bool
}

// StringValue wraps a string as a CustomValue.
func StringValue(s string) CustomValue { return CustomValue{Kind: CustomString, Str: s} }

// NumberValue wraps a number as a CustomValue.
func NumberValue(n float64) CustomValue { return CustomValue{Kind: CustomNumber, Num: n} }

// BoolValue wraps a boolean as a CustomValue.
func BoolValue(b bool) CustomValue { return CustomValue{Kind: CustomBool, Bool: b} }

// ParseCustomValue converts an untyped decoded JSON value into a CustomValue.
// Objects and arrays are rejected.
func ParseCustomValue(v any) (CustomValue, error) {
	switch t := v.(type) {
	case string:
		return StringValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case bool:
		return BoolValue(t), nil
	default:
		return CustomValue{}, eris.Errorf("custom field value must be string, number, or bool, got %T", v)
	}
}

// String renders the value for prompts and formatted text.
func (v CustomValue) String() string {
	switch v.Kind {
	case CustomNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case CustomBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// Any returns the underlying value as an untyped interface, for embedding in
// page structures.
func (v CustomValue) Any() any {
	switch v.Kind {
	case CustomNumber:
		return v.Num
	case CustomBool:
		return v.Bool
	default:
		return v.Str
	}
}

// MarshalJSON encodes the underlying value without the union wrapper.
func (v CustomValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes a JSON scalar into the union.
func (v *CustomValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "custom field value")
	}
	parsed, err := ParseCustomValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// parseCustomFields converts a raw custom_fields mapping.
func parseCustomFields(v any) (map[string]CustomValue, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case map[string]CustomValue:
		return t, nil
	case map[string]any:
		if len(t) == 0 {
			return nil, nil
		}
		out := make(map[string]CustomValue, len(t))
		for k, raw := range t {
			cv, err := ParseCustomValue(raw)
			if err != nil {
				return nil, eris.Wrapf(err, "product: custom_fields[%s]", k)
			}
			out[k] = cv
		}
		return out, nil
	default:
		return nil, eris.Errorf("product: custom_fields must be a mapping, got %T", v)
	}
}
