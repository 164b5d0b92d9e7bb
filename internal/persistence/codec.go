package persistence

import (
	"fmt"
	"reflect"
	"time"

	"gopkg.in/yaml.v3"
)

// Placeholders written instead of values that have no document form.
const (
	FuncPlaceholder = "<func>"
	ChanPlaceholder = "<chan>"
)

// maxDocumentDepth bounds how deep documentable walks a value before giving
// up on a document form.
const maxDocumentDepth = 64

// EncodeArgs renders history args as a YAML sequence. Functions and
// channels (side effects, deadline callbacks) are replaced by placeholders,
// errors by their message; values yaml cannot marshal fall back to their
// %v form. Cyclic or overly deep values become a "<cyclic T>" placeholder.
func EncodeArgs(args []any) (string, error) {
	if len(args) == 0 {
		return "", nil
	}

	doc := make([]any, len(args))
	for i, arg := range args {
		doc[i] = documentable(arg)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("yaml marshal: %w", err)
	}
	return string(out), nil
}

// DecodeArgs parses a detail string produced by EncodeArgs. Values come
// back as generic YAML values (maps, slices, scalars), not as the Go types
// that were recorded.
func DecodeArgs(detail string) ([]any, error) {
	if detail == "" {
		return nil, nil
	}
	var args []any
	if err := yaml.Unmarshal([]byte(detail), &args); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return args, nil
}

func documentable(arg any) any {
	if arg == nil {
		return nil
	}
	switch v := arg.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case error:
		return v.Error()
	}

	switch reflect.TypeOf(arg).Kind() {
	case reflect.Func:
		return FuncPlaceholder
	case reflect.Chan:
		return ChanPlaceholder
	}

	if !acyclic(reflect.ValueOf(arg), map[visit]bool{}, 0) {
		return fmt.Sprintf("<cyclic %T>", arg)
	}
	if !marshalable(arg) {
		return fmt.Sprintf("%v", arg)
	}
	return arg
}

// marshalable probes v with yaml.Marshal, which panics rather than failing
// on some kinds (funcs nested in structs, complex numbers).
func marshalable(v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := yaml.Marshal(v)
	return err == nil
}

type visit struct {
	typ reflect.Type
	ptr uintptr
}

// acyclic reports whether v can be walked without revisiting a pointer,
// map or slice already on the current path. yaml.Marshal has no cycle
// detection and would recurse until the process runs out of memory.
func acyclic(v reflect.Value, path map[visit]bool, depth int) bool {
	if depth > maxDocumentDepth {
		return false
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return true
		}
		key := visit{typ: v.Type(), ptr: v.Pointer()}
		if path[key] {
			return false
		}
		path[key] = true
		defer delete(path, key)
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return acyclic(v.Elem(), path, depth+1)
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !acyclic(iter.Key(), path, depth+1) || !acyclic(iter.Value(), path, depth+1) {
				return false
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if !acyclic(v.Index(i), path, depth+1) {
				return false
			}
		}
	case reflect.Struct:
		for i := range v.NumField() {
			if !acyclic(v.Field(i), path, depth+1) {
				return false
			}
		}
	}
	return true
}
