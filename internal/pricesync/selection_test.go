package pricesync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleAddsAndRemoves(t *testing.T) {
	s := NewSelection()
	assert.True(t, s.Toggle("a"))
	assert.True(t, s.Toggle("b"))
	assert.False(t, s.Toggle("a"))
	assert.Equal(t, []string{"b"}, s.IDs())
}

func TestToggleAllReplacesNeverUnions(t *testing.T) {
	s := NewSelection()
	s.Toggle("x")
	s.ToggleAll([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, s.IDs())

	s.ToggleAll([]string{"b", "c"})
	assert.Equal(t, []string{"b", "c"}, s.IDs())
}

func TestToggleAllTwiceRestoresState(t *testing.T) {
	visible := []string{"a", "b", "c"}

	empty := NewSelection()
	empty.ToggleAll(visible)
	empty.ToggleAll(visible)
	assert.Zero(t, empty.Len())

	full := NewSelection()
	full.Replace(visible)
	full.ToggleAll(visible)
	full.ToggleAll(visible)
	assert.Equal(t, visible, full.IDs())
}

func TestToggleAllWithNothingVisibleClears(t *testing.T) {
	s := NewSelection()
	s.Toggle("a")
	s.ToggleAll(nil)
	assert.Zero(t, s.Len())
}

func TestRetainDropsUnknownIDs(t *testing.T) {
	s := NewSelection()
	s.Replace([]string{"a", "b", "c", "a"})
	assert.Equal(t, 3, s.Len())

	dropped := s.Retain(func(id string) bool { return id != "b" })
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.False(t, s.Has("b"))
}
