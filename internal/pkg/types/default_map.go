package types

import "slices"

// DefaultMap is a generic map wrapper that returns default values for missing keys
// and remembers the order in which keys were first seen.
//
// Example use case:
//
//	m := NewDefaultMap[string](func() int { return 0 })
//	m.Set("a", m.Get("a")+1)
//	m.Keys() // ["a"]
type DefaultMap[K comparable, V any] struct {
	data        map[K]V  // underlying map storing the key-value pairs
	order       []K      // keys in first-insertion order
	defaultFunc func() V // function used to generate default values for missing keys
}

// NewDefaultMap creates a new DefaultMap with a user-defined default function.
func NewDefaultMap[K comparable, V any](defaultFunc func() V) DefaultMap[K, V] {
	return DefaultMap[K, V]{
		data:        make(map[K]V),
		defaultFunc: defaultFunc,
	}
}

// Get retrieves the value associated with the given key.
//
// If the key is not present, it invokes the defaultFunc to generate a default value,
// stores it in the map, and then returns it.
func (d *DefaultMap[K, V]) Get(key K) V {
	val, ok := d.data[key]
	if ok {
		return val
	}

	val = d.defaultFunc()
	d.Set(key, val)
	return val
}

// Lookup returns the value stored for key without creating a default entry.
func (d *DefaultMap[K, V]) Lookup(key K) (V, bool) {
	val, ok := d.data[key]
	return val, ok
}

// Set assigns a value to the given key in the map.
func (d *DefaultMap[K, V]) Set(key K, val V) {
	if _, ok := d.data[key]; !ok {
		d.order = append(d.order, key)
	}
	d.data[key] = val
}

// Keys returns every key in the order it was first inserted.
func (d *DefaultMap[K, V]) Keys() []K {
	return slices.Clone(d.order)
}

// Len reports the number of keys in the map.
func (d *DefaultMap[K, V]) Len() int {
	return len(d.data)
}
