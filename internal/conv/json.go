package conv

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Convert coerces in into the value pointed to by outPtr. Assignable values
// are copied; anything else, typically tool arguments decoded as
// map[string]interface{}, takes a JSON round-trip into the target type.
// A nil input leaves the target untouched.
func Convert(in any, outPtr any) error {
	if outPtr == nil {
		return fmt.Errorf("conv: target cannot be nil")
	}
	target := reflect.ValueOf(outPtr)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return fmt.Errorf("conv: target must be a non-nil pointer, got %T", outPtr)
	}
	if in == nil {
		return nil
	}
	if value := reflect.ValueOf(in); value.Type().AssignableTo(target.Elem().Type()) {
		target.Elem().Set(value)
		return nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("conv: encode %T: %w", in, err)
	}
	if err = json.Unmarshal(data, outPtr); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return fmt.Errorf("%s must be %s, got %s", typeErr.Field, typeErr.Type.Kind(), typeErr.Value)
		}
		return err
	}
	return nil
}
