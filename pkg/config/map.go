// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package config

import (
	"fmt"
	"sort"
)

// Map is an insertion-ordered mapping from string keys to Values.
// A nil *Map behaves as an empty, read-only mapping.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty mapping.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// MapOf builds a mapping from a native Go map. Keys are inserted in sorted order.
func MapOf(src map[string]any) (*Map, error) {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := NewMap()
	for _, k := range keys {
		v, err := ValueOf(src[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		m.Put(k, v)
	}
	return m, nil
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Get returns a copy of the value at key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	if !ok {
		return Value{}, false
	}
	return v.clone(), true
}

// Value returns the value at key, or null when absent. Combined with the
// coercing accessors this reads nested sections in one expression:
//
//	port := store.Section("data").Value("port").IntOr(3306)
func (m *Map) Value(key string) Value {
	v, _ := m.Get(key)
	return v
}

// Put inserts or replaces key. Replacing keeps the key's position.
// It returns m so defaults can be built fluently.
func (m *Map) Put(key string, v Value) *Map {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v.clone()
	return m
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	idx := m.index(key)
	if idx < 0 {
		return false
	}
	m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
	delete(m.values, key)
	return true
}

// Range calls fn for each entry in order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k].clone()) {
			return
		}
	}
}

// Clone returns a deep copy. Cloning nil yields an empty mapping.
func (m *Map) Clone() *Map {
	out := NewMap()
	if m == nil {
		return out
	}
	out.keys = make([]string, len(m.keys))
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = v.clone()
	}
	return out
}

// Equal reports whether both mappings hold the same keys with equal values.
// Key order is not compared.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, k := range m.Keys() {
		ov, ok := o.Get(k)
		if !ok {
			return false
		}
		if !m.values[k].Equal(ov) {
			return false
		}
	}
	return true
}

// ToNative converts the mapping to map[string]any.
func (m *Map) ToNative() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v Value) bool {
		out[k] = v.Interface()
		return true
	})
	return out
}

func (m *Map) index(key string) int {
	if m == nil {
		return -1
	}
	if _, ok := m.values[key]; !ok {
		return -1
	}
	for i, k := range m.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// insertAt puts key back at position idx. Used to undo a Delete.
func (m *Map) insertAt(idx int, key string, v Value) {
	if m.Has(key) || idx < 0 || idx > len(m.keys) {
		m.Put(key, v)
		return
	}
	m.keys = append(m.keys, "")
	copy(m.keys[idx+1:], m.keys[idx:])
	m.keys[idx] = key
	m.values[key] = v
}
