// Package command holds the closed set of supported commands and the
// argument rules for each of them.
package command

import (
	"encoding/json"
	"errors"
	"reflect"

	"bullet-relay/server/internal/model"
)

var supported = map[string]struct{}{
	model.CommandMove: {},
}

var moveArgumentKeys = []string{"position"}

// ErrInvalidMoveArguments is returned by MovePosition for argument sets that
// fail ValidateMoveArguments.
var ErrInvalidMoveArguments = errors.New("invalid move command arguments")

// ValidateName reports whether name is a supported command.
func ValidateName(name string) bool {
	_, ok := supported[name]
	return ok
}

// ValidateMoveArguments reports whether args is exactly {"position": [x, y, z]}
// with three numeric coordinates. Nothing is coerced.
func ValidateMoveArguments(args map[string]any) bool {
	if len(args) != len(moveArgumentKeys) {
		return false
	}
	for _, key := range moveArgumentKeys {
		if _, ok := args[key]; !ok {
			return false
		}
	}
	_, ok := coordinates(args["position"])
	return ok
}

// MovePosition returns the validated position of a move argument set.
func MovePosition(args map[string]any) ([3]float64, error) {
	if !ValidateMoveArguments(args) {
		return [3]float64{}, ErrInvalidMoveArguments
	}
	pos, _ := coordinates(args["position"])
	return pos, nil
}

// Coordinates converts a three element numeric sequence into a position.
func Coordinates(v any) ([3]float64, bool) {
	return coordinates(v)
}

func coordinates(v any) ([3]float64, bool) {
	var out [3]float64
	if v == nil {
		return out, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return out, false
	}
	if rv.Len() != 3 {
		return out, false
	}
	for i := 0; i < 3; i++ {
		f, ok := number(rv.Index(i))
		if !ok {
			return out, false
		}
		out[i] = f
	}
	return out, true
}

func number(v reflect.Value) (float64, bool) {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	if n, ok := v.Interface().(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}
