package ir

import (
	"bytes"
	"encoding/json"
)

// JSON serialization support for descriptors.
// All descriptors include a "kind" field for type discrimination.

func marshalJSON(d TypeDescriptor) ([]byte, error) {
	w, err := toWire(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// MarshalJSON implements json.Marshaler for NamedDescriptor.
func (d *NamedDescriptor) MarshalJSON() ([]byte, error) { return marshalJSON(d) }

// MarshalJSON implements json.Marshaler for GenericDescriptor.
func (d *GenericDescriptor) MarshalJSON() ([]byte, error) { return marshalJSON(d) }

// MarshalJSON implements json.Marshaler for GenericParameterDescriptor.
func (d *GenericParameterDescriptor) MarshalJSON() ([]byte, error) { return marshalJSON(d) }

// MarshalJSON implements json.Marshaler for PointerDescriptor.
func (d *PointerDescriptor) MarshalJSON() ([]byte, error) { return marshalJSON(d) }

// MarshalJSON implements json.Marshaler for ByRefDescriptor.
func (d *ByRefDescriptor) MarshalJSON() ([]byte, error) { return marshalJSON(d) }

// MarshalJSON implements json.Marshaler for SZArrayDescriptor.
func (d *SZArrayDescriptor) MarshalJSON() ([]byte, error) { return marshalJSON(d) }

// MarshalJSON implements json.Marshaler for ArrayDescriptor.
func (d *ArrayDescriptor) MarshalJSON() ([]byte, error) { return marshalJSON(d) }

// DecodeJSON decodes a descriptor written by one of the MarshalJSON methods.
// Unknown fields are rejected.
func DecodeJSON(data []byte) (TypeDescriptor, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var w *wireDescriptor
	if err := dec.Decode(&w); err != nil {
		return nil, err
	}
	return fromWire(w)
}

// Value wraps a TypeDescriptor so it can be a field of a JSON document.
// A JSON null decodes to a Value with a nil Type.
type Value struct {
	Type TypeDescriptor
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Type == nil {
		return []byte("null"), nil
	}
	return marshalJSON(v.Type)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		v.Type = nil
		return nil
	}
	d, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	v.Type = d
	return nil
}
