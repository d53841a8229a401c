package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncMap(t *testing.T) {
	m := NewSyncMap[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, m.Len())

	visited := map[string]int{}
	m.Range(func(key string, value int) bool {
		m.Delete(key)
		visited[key] = value
		return true
	})
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, visited)
	assert.Equal(t, 0, m.Len())

	m.Put("c", 3)
	m.Clear()
	_, ok = m.Get("c")
	assert.False(t, ok)
}

func TestSyncMap_DeleteIf(t *testing.T) {
	m := NewSyncMap[string, int]()
	m.Put("a", 2)
	assert.False(t, m.DeleteIf("a", func(v int) bool { return v == 1 }))
	assert.False(t, m.DeleteIf("b", func(v int) bool { return true }))
	assert.True(t, m.DeleteIf("a", func(v int) bool { return v == 2 }))
	_, ok := m.Get("a")
	assert.False(t, ok)
}
