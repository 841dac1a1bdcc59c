package nsstack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupWalksFrames(t *testing.T) {
	var s Stack
	s.Push(map[string]string{"a": "http://1"})
	s.Push(map[string]string{"b": "http://2"})

	uri, ok := s.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "http://1", uri)

	uri, ok = s.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "http://2", uri)

	_, ok = s.Lookup("c")
	assert.False(t, ok)

	s.Pop()
	_, ok = s.Lookup("b")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestShadowing(t *testing.T) {
	var s Stack
	s.Push(map[string]string{"p": "http://outer"})
	s.Push(map[string]string{"p": "http://inner"})

	uri, _ := s.Lookup("p")
	assert.Equal(t, "http://inner", uri)

	s.Pop()
	uri, _ = s.Lookup("p")
	assert.Equal(t, "http://outer", uri)
}

func TestDefaultNamespace(t *testing.T) {
	var s Stack
	_, ok := s.Default()
	assert.False(t, ok)

	s.Push(map[string]string{"": "http://d"})
	uri, ok := s.Default()
	assert.True(t, ok)
	assert.Equal(t, "http://d", uri)

	// xmlns="" undoes the default for the inner scope.
	s.Push(map[string]string{"": ""})
	_, ok = s.Default()
	assert.False(t, ok)

	s.Pop()
	_, ok = s.Default()
	assert.True(t, ok)
}

func TestUndeclare(t *testing.T) {
	var s Stack
	s.Push(map[string]string{"p": "http://1"})
	s.Push(map[string]string{"p": ""})

	_, ok := s.Lookup("p")
	assert.False(t, ok)

	s.Pop()
	_, ok = s.Lookup("p")
	assert.True(t, ok)
}

func TestReservedPrefixes(t *testing.T) {
	var s Stack
	uri, ok := s.Lookup("xml")
	assert.True(t, ok)
	assert.Equal(t, XMLNamespace, uri)

	uri, ok = s.Lookup("xmlns")
	assert.True(t, ok)
	assert.Equal(t, XMLNSNamespace, uri)
}

func TestRedundantBindingsDropped(t *testing.T) {
	var s Stack
	s.Push(map[string]string{"p": "http://1"})
	s.Push(map[string]string{"p": "http://1"})
	assert.Empty(t, s[1])
}
