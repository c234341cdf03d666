package symtab

import "iter"

// orderedMap keeps names unique and remembers insertion order, which is the
// order vtables, allocas and debug listings are emitted in.
type orderedMap[V any] struct {
	keys   []string
	values map[string]V
}

func (m *orderedMap[V]) get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// put returns false and leaves the map untouched when key is taken.
func (m *orderedMap[V]) put(key string, value V) bool {
	if _, ok := m.values[key]; ok {
		return false
	}
	if m.values == nil {
		m.values = make(map[string]V)
	}
	m.keys = append(m.keys, key)
	m.values[key] = value
	return true
}

func (m *orderedMap[V]) len() int {
	return len(m.keys)
}

func (m *orderedMap[V]) all() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, key := range m.keys {
			if !yield(key, m.values[key]) {
				return
			}
		}
	}
}
