package api

import (
	"reflect"
	"strings"
)

// Enabled evaluates the step's condition against the current context. An
// inline Condition wins over When. When names a context key that must hold
// a truthy value; a leading "!" inverts the test.
func (s StepConfig) Enabled(pc *Context) bool {
	if s.Condition != nil {
		return s.Condition(pc)
	}
	if s.When == "" {
		return true
	}
	key, negate := strings.CutPrefix(s.When, "!")
	v, ok := pc.Get(strings.TrimSpace(key))
	return truthy(v, ok) != negate
}

func truthy(v any, ok bool) bool {
	if !ok || v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
