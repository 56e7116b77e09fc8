package servicenow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind enumerates the JSON value kinds a field can hold.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "null"
}

// Value is a tagged union over JSON values. The store is schema-less, so
// values are only checked for well-formedness.
type Value struct {
	kind   Kind
	str    string
	num    json.Number
	flag   bool
	object Fields
	array  []Value
}

func String(v string) Value      { return Value{kind: KindString, str: v} }
func Number(v json.Number) Value { return Value{kind: KindNumber, num: v} }
func Bool(v bool) Value          { return Value{kind: KindBool, flag: v} }
func Null() Value                { return Value{} }
func Object(v Fields) Value      { return Value{kind: KindObject, object: v} }
func Array(v ...Value) Value     { return Value{kind: KindArray, array: v} }

func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the number payload and whether v is a number.
func (v Value) Num() (json.Number, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean payload and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// Object returns the nested fields and whether v is an object.
func (v Value) Object() (Fields, bool) { return v.object, v.kind == KindObject }

// Array returns the elements and whether v is an array.
func (v Value) Array() ([]Value, bool) { return v.array, v.kind == KindArray }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindBool:
		return json.Marshal(v.flag)
	case KindObject:
		if v.object == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.object)
	case KindArray:
		if v.array == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.array)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	val, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func valueOf(raw interface{}) (Value, error) {
	switch actual := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(actual), nil
	case json.Number:
		return Number(actual), nil
	case bool:
		return Bool(actual), nil
	case map[string]interface{}:
		fields := make(Fields, len(actual))
		for k, item := range actual {
			val, err := valueOf(item)
			if err != nil {
				return Value{}, err
			}
			fields[k] = val
		}
		return Object(fields), nil
	case []interface{}:
		items := make([]Value, 0, len(actual))
		for _, item := range actual {
			val, err := valueOf(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, val)
		}
		return Array(items...), nil
	}
	return Value{}, fmt.Errorf("unsupported JSON value %T", raw)
}

// Fields maps field names to the values to set on a record.
type Fields map[string]Value

// FieldsError reports a malformed fields payload supplied by the caller.
type FieldsError struct {
	Err error
}

func (e *FieldsError) Error() string { return e.Err.Error() }

func (e *FieldsError) Unwrap() error { return e.Err }

// IsFieldsError reports whether err originates from caller input parsing.
func IsFieldsError(err error) bool {
	var target *FieldsError
	return errors.As(err, &target)
}

// ParseFields decodes a serialized JSON object. Any failure is a *FieldsError.
func ParseFields(data string) (Fields, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(data)))
	decoder.UseNumber()
	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("unexpected end of JSON input")
		}
		return nil, &FieldsError{Err: err}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &FieldsError{Err: errors.New("unexpected data after JSON value")}
	}
	if _, ok := raw.(map[string]interface{}); !ok {
		return nil, &FieldsError{Err: fmt.Errorf("fields must be a JSON object, got %s", kindOf(raw))}
	}
	val, err := valueOf(raw)
	if err != nil {
		return nil, &FieldsError{Err: err}
	}
	fields, _ := val.Object()
	return fields, nil
}

func kindOf(raw interface{}) Kind {
	switch raw.(type) {
	case string:
		return KindString
	case json.Number:
		return KindNumber
	case bool:
		return KindBool
	case []interface{}:
		return KindArray
	case map[string]interface{}:
		return KindObject
	}
	return KindNull
}
