// Package clone implements the shallow copy semantics used for state values.
//
// Scalars, dates and regular expressions are passed through. Slices, maps
// and pointers to structs are copied one level deep, so a copy is never
// identical to its source while still holding the same elements.
package clone

import (
	"reflect"
	"regexp"
	"time"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	regexpType = reflect.TypeOf(regexp.Regexp{})
)

// Clone returns a shallow copy of v.
func Clone[T any](v T) T {
	rv := reflect.ValueOf(&v).Elem()
	return as[T](rv.Type(), shallow(rv))
}

// Merge returns base overlaid by update. Maps are merged key by key into a
// fresh map; every other kind of value is replaced by a clone of update.
func Merge[T any](base, update T) T {
	bv := reflect.ValueOf(&base).Elem()
	uv := reflect.ValueOf(&update).Elem()

	b, u := concrete(bv), concrete(uv)
	if b.IsValid() && u.IsValid() && b.Kind() == reflect.Map && b.Type() == u.Type() && !u.IsNil() {
		out := reflect.MakeMapWithSize(u.Type(), b.Len()+u.Len())
		if !b.IsNil() {
			iter := b.MapRange()
			for iter.Next() {
				out.SetMapIndex(iter.Key(), iter.Value())
			}
		}
		iter := u.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return as[T](uv.Type(), out)
	}
	return Clone(update)
}

// Same reports whether a and b are the same value in the sense of a strict
// identity check: slices, maps, pointers, channels and funcs must share
// their underlying storage, comparable values must be ==. Values that are
// neither (structs holding slices, for instance) are never the same.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}
	switch av.Kind() {
	case reflect.Slice:
		if av.IsNil() || bv.IsNil() {
			return av.IsNil() && bv.IsNil()
		}
		return av.Len() == bv.Len() && av.Cap() == bv.Cap() && av.UnsafePointer() == bv.UnsafePointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return av.UnsafePointer() == bv.UnsafePointer()
	}
	if !av.Comparable() || !bv.Comparable() {
		return false
	}
	return av.Equal(bv)
}

// Equal reports structural equality. A nil and an empty slice or map of the
// same type are considered equal, as they would encode to the same document.
func Equal(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}
	switch av.Kind() {
	case reflect.Slice, reflect.Map:
		return av.Len() == 0 && bv.Len() == 0
	}
	return false
}

// as converts v back to T without going through Interface, which would
// lose nil interface values.
func as[T any](typ reflect.Type, v reflect.Value) T {
	res := reflect.New(typ)
	res.Elem().Set(v)
	return *(res.Interface().(*T))
}

// concrete unwraps interface values so that a T of interface type holding a
// map is merged like a map.
func concrete(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func shallow(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		inner := shallow(v.Elem())
		out := reflect.New(v.Type()).Elem()
		out.Set(inner)
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(out, v)
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out

	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		elem := v.Type().Elem()
		if elem.Kind() != reflect.Struct || elem == timeType || elem == regexpType {
			return v
		}
		out := reflect.New(elem)
		out.Elem().Set(v.Elem())
		return out
	}
	return v
}
