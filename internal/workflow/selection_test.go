package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionZeroValue(t *testing.T) {
	var s Selection
	assert.False(t, s.Has("a"))
	assert.Zero(t, s.Len())
	assert.False(t, s.Remove("a"))
	assert.Equal(t, []string{}, s.IDs())
}

func TestSelectionKeepsInsertionOrder(t *testing.T) {
	var s Selection
	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("b"))
	assert.True(t, s.Toggle("c"))
	assert.False(t, s.Toggle("a"))
	assert.Equal(t, []string{"b", "c"}, s.IDs())

	ids := s.IDs()
	ids[0] = "mutated"
	assert.True(t, s.Has("b"))

	s.Replace([]string{"z", "y", "z"})
	assert.Equal(t, []string{"z", "y"}, s.IDs())

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestDebouncerSupersedes(t *testing.T) {
	d := NewDebouncer("search", time.Millisecond)
	first := d.Schedule("a")
	second := d.Schedule("ab")

	msg1 := first().(DebounceMsg)
	msg2 := second().(DebounceMsg)
	assert.False(t, d.Fired(msg1))
	require.True(t, d.Fired(msg2))
	assert.Equal(t, "ab", msg2.Value)

	other := NewDebouncer("color", time.Millisecond)
	assert.False(t, other.Fired(msg2))

	third := d.Schedule("abc")
	d.Cancel()
	assert.False(t, d.Fired(third().(DebounceMsg)))
}
