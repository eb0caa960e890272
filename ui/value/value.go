// Package value implements the two comparisons the engine relies on:
// structural equality of plain data (Equal) and reference identity
// (Same), which the loop uses to detect no-op transitions.
//
// Plain data is what application state and element props are made of:
// records (maps keyed by string), sequences (slices and arrays),
// time.Time values and comparable scalars.
package value

import (
	"reflect"
	"time"
)

// Equal reports whether a and b are structurally equal.
//
// Identical references are equal without further inspection. Times
// compare by instant. Sequences compare length then pointwise. Records
// compare key count then pointwise, so a record holding an explicit nil
// under a key the other record lacks is not equal to it. Any other pair
// is equal only if both values are of the same comparable type and ==.
func Equal(a, b any) bool {
	if Same(a, b) {
		return true
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if ea, ok := a.(map[string]any); ok {
		eb, ok := b.(map[string]any)
		if !ok {
			return equalValue(reflect.ValueOf(a), reflect.ValueOf(b))
		}
		return equalRecords(ea, eb)
	}
	if sa, ok := a.([]any); ok {
		sb, ok := b.([]any)
		if !ok {
			return equalValue(reflect.ValueOf(a), reflect.ValueOf(b))
		}
		if len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !Equal(sa[i], sb[i]) {
				return false
			}
		}
		return true
	}
	return equalValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

func equalRecords(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		if !Equal(va, b[k]) {
			return false
		}
	}
	return true
}

// equalValue handles typed containers (map[string]string, []string,
// pointers to option structs) that do not go through the fast paths.
func equalValue(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return !a.IsValid() && !b.IsValid()
	}
	switch a.Kind() {
	case reflect.Slice, reflect.Array:
		if b.Kind() != reflect.Slice && b.Kind() != reflect.Array {
			return false
		}
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !Equal(a.Index(i).Interface(), b.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		if b.Kind() != reflect.Map || a.Len() != b.Len() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			k := iter.Key()
			if !k.Type().AssignableTo(b.Type().Key()) {
				return false
			}
			vb := b.MapIndex(k)
			if !vb.IsValid() {
				return false
			}
			if !Equal(iter.Value().Interface(), vb.Interface()) {
				return false
			}
		}
		return true
	case reflect.Pointer:
		if b.Kind() != reflect.Pointer || a.Type() != b.Type() {
			return false
		}
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return equalValue(a.Elem(), b.Elem())
	case reflect.Struct:
		if a.Type() != b.Type() {
			return false
		}
		for i := 0; i < a.NumField(); i++ {
			if !a.Type().Field(i).IsExported() {
				continue
			}
			if !Equal(a.Field(i).Interface(), b.Field(i).Interface()) {
				return false
			}
		}
		return true
	}
	if a.Type() != b.Type() || !a.Type().Comparable() {
		return false
	}
	return a.Interface() == b.Interface()
}

// Same reports whether a and b are the same reference.
//
// Maps, slices, pointers, channels and functions are the same when they
// share the underlying storage (for slices, also the same length).
// Comparable scalars are the same when ==. Unlike a plain == on two
// interfaces, Same never panics on uncomparable dynamic types.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Func:
		// Code pointers: closures of one literal are indistinguishable.
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Len() == vb.Len() && va.IsNil() == vb.IsNil() && va.Pointer() == vb.Pointer()
	}
	if !va.Type().Comparable() {
		return false
	}
	return a == b
}
