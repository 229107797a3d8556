// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package config

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a single configuration value: null, bool, int, float, string,
// list or nested map. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	m    *Map
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps a floating point number.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ListValue wraps an ordered sequence. The elements are copied.
func ListValue(items ...Value) Value {
	list := make([]Value, len(items))
	for i, it := range items {
		list[i] = it.clone()
	}
	return Value{kind: KindList, list: list}
}

// MapValue wraps a nested mapping. The map is copied; a nil map becomes empty.
func MapValue(m *Map) Value {
	if m == nil {
		return Value{kind: KindMap, m: NewMap()}
	}
	return Value{kind: KindMap, m: m.Clone()}
}

// ValueOf converts a native Go value into a Value. Supported inputs are nil,
// Value, *Map, booleans, all integer and float types, strings, slices and
// maps with string keys built from those. Map keys are inserted in sorted
// order since Go maps carry none.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x.clone(), nil
	case *Map:
		return MapValue(x), nil
	case bool:
		return BoolValue(x), nil
	case string:
		return StringValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int8:
		return IntValue(int64(x)), nil
	case int16:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return IntValue(int64(x)), nil
	case uint16:
		return IntValue(int64(x)), nil
	case uint32:
		return IntValue(int64(x)), nil
	case uint64:
		return fromUint(x)
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case []Value:
		return ListValue(x...), nil
	case []any:
		return listOf(len(x), func(i int) any { return x[i] })
	case map[string]any:
		m, err := MapOf(x)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindMap, m: m}, nil
	}
	return reflectValueOf(reflect.ValueOf(v))
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("unsigned value %d overflows int64", u)
	}
	return IntValue(int64(u)), nil
}

func listOf(n int, at func(int) any) (Value, error) {
	list := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		item, err := ValueOf(at(i))
		if err != nil {
			return Value{}, fmt.Errorf("index %d: %w", i, err)
		}
		list = append(list, item)
	}
	return Value{kind: KindList, list: list}, nil
}

// reflectValueOf handles typed slices and string-keyed maps ([]string,
// map[string]int and friends).
func reflectValueOf(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return listOf(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			item, err := ValueOf(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			m.Put(k, item)
		}
		return Value{kind: KindMap, m: m}, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Value{}, nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Invalid:
		return Value{}, nil
	}
	return Value{}, fmt.Errorf("unsupported value type %s", rv.Type())
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v, if any. No coercion.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer held by v, if any. No coercion.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float held by v, if any. No coercion.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsString returns the string held by v, if any. No coercion.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsList returns a copy of the list held by v, if any.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]Value, len(v.list))
	for i, it := range v.list {
		out[i] = it.clone()
	}
	return out, true
}

// AsMap returns a copy of the mapping held by v, if any.
func (v Value) AsMap() (*Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m.Clone(), true
}

// Interface returns v as a plain Go value: nil, bool, int, float64, string,
// []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return int(v.i)
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, it := range v.list {
			out[i] = it.Interface()
		}
		return out
	case KindMap:
		return v.m.ToNative()
	default:
		return nil
	}
}

// StringOr renders scalars as text. Null, lists and maps yield def.
func (v Value) StringOr(def string) string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return def
	}
}

// IntOr coerces v to an int. Floats are truncated; strings are parsed as
// base-10 integers. Anything else, including out-of-range floats, yields def.
func (v Value) IntOr(def int) int {
	switch v.kind {
	case KindInt:
		return int(v.i)
	case KindFloat:
		if math.IsNaN(v.f) || v.f >= math.MaxInt64 || v.f < math.MinInt64 {
			return def
		}
		return int(v.f)
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 0)
		if err != nil {
			return def
		}
		return int(n)
	default:
		return def
	}
}

// FloatOr coerces v to a float64. Integers widen; strings are parsed.
func (v Value) FloatOr(def float64) float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

// BoolOr coerces v to a bool. Strings accepted by strconv.ParseBool are
// parsed; anything else yields def.
func (v Value) BoolOr(def bool) bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		b, err := strconv.ParseBool(strings.TrimSpace(v.s))
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// Equal reports whether v and o hold the same variant and content. Mappings
// compare by key set, not order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(o.m)
	}
	return false
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.s)
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

func (v Value) clone() Value {
	switch v.kind {
	case KindList:
		list := make([]Value, len(v.list))
		for i, it := range v.list {
			list[i] = it.clone()
		}
		return Value{kind: KindList, list: list}
	case KindMap:
		return Value{kind: KindMap, m: v.m.Clone()}
	default:
		return v
	}
}
