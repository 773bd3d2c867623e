// Package ordered provides the insertion-ordered map used to carry decoded
// Swagger documents and normalized results without losing source key order.
package ordered

import (
	"encoding/json"
	"iter"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Map is a string-keyed map that remembers the order keys were first set.
// The zero value is ready to use.
type Map[V any] struct {
	m *sequencedmap.Map[string, *slot[V]]
}

// slot lets Set replace a value in place. sequencedmap appends a second
// element when an existing key is set again.
type slot[V any] struct {
	value V
}

func (s *slot[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

// New returns an empty map.
func New[V any]() *Map[V] {
	return &Map[V]{m: sequencedmap.New[string, *slot[V]]()}
}

// Len returns the number of entries. nil safe.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return m.m.Len()
}

// Set stores value under key. Re-setting an existing key keeps its position.
func (m *Map[V]) Set(key string, value V) {
	if m.m == nil {
		m.m = sequencedmap.New[string, *slot[V]]()
	}
	if s, ok := m.m.Get(key); ok {
		s.value = value
		return
	}
	m.m.Set(key, &slot[V]{value: value})
}

// Get returns the value stored under key. nil safe.
func (m *Map[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	s, ok := m.m.Get(key)
	if !ok {
		return zero, false
	}
	return s.value, true
}

// Has reports whether key is present. nil safe.
func (m *Map[V]) Has(key string) bool {
	if m == nil {
		return false
	}
	return m.m.Has(key)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[V]) Keys() []string {
	if m == nil || m.m.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, m.m.Len())
	for k := range m.m.Keys() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates entries in insertion order.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for k, s := range m.m.All() {
			if !yield(k, s.value) {
				return
			}
		}
	}
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	if m.m == nil {
		return []byte("{}"), nil
	}
	return m.m.MarshalJSON()
}
