package dataview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario A: scale_targets_to.
func TestView_ScaleTargetsTo(t *testing.T) {
	data := NewIntInt([]IntIntPair{
		{Key: 0, Pos: 0},
		{Key: 1, Pos: 1},
		{Key: 3, Pos: 2},
		{Key: 100, Pos: 3},
	})
	v := NewView(data)
	v.SetScale(50.0 / 4.0)

	var got []uint64
	for _, p := range v.IterIntInt(0, v.Len()) {
		got = append(got, p)
	}
	assert.Equal(t, []uint64{0, 12, 25, 37}, got)
}

// Scenario B: iteration fidelity.
func TestView_IterIntInt_MatchesInput(t *testing.T) {
	data := NewIntInt([]IntIntPair{
		{Key: 0, Pos: 1},
		{Key: 1, Pos: 2},
		{Key: 3, Pos: 3},
		{Key: 100, Pos: 4},
	})
	v := NewView(data)

	var got []IntIntPair
	for k, p := range v.IterIntInt(0, v.Len()) {
		got = append(got, IntIntPair{Key: k, Pos: p})
	}

	expect := []IntIntPair{{0, 1}, {1, 2}, {3, 3}, {100, 4}}
	assert.Equal(t, expect, got)
}

// Invariant 7: scale = 1.0 behaves like the unscaled view.
func TestView_UnitScaleIsIdentity(t *testing.T) {
	data := NewFloatFloat([]FloatFloatPair{{1.5, 2.5}, {3.0, 4.0}})
	v := NewView(data)
	for i := 0; i < v.Len(); i++ {
		k, p := v.Get(i)
		wk, wp := data.Get(i)
		assert.Equal(t, wk, k)
		assert.Equal(t, wp, p)
	}
}

func TestView_AsIntInt_PanicsOnFloatVariant(t *testing.T) {
	data := NewFloatFloat([]FloatFloatPair{{1, 2}})
	v := NewView(data)
	assert.Panics(t, func() { v.AsIntInt() })
}

func TestView_LowerBound(t *testing.T) {
	data := NewIntInt([]IntIntPair{{0, 0}, {2, 1}, {2, 2}, {5, 3}, {9, 4}})
	v := NewView(data)

	cases := []struct {
		key  uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{6, 4},
		{100, 5},
	}
	for _, c := range cases {
		require.Equal(t, c.want, v.LowerBound(c.key), "key %d", c.key)
	}
}

func TestView_Window(t *testing.T) {
	data := NewIntInt([]IntIntPair{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}})
	v := NewView(data)
	sub := v.Window(1, 4)
	require.Equal(t, 3, sub.Len())
	k, p := sub.Get(0)
	assert.Equal(t, 1.0, k)
	assert.Equal(t, 1.0, p)
}

func TestView_IterBounds_PanicsOnInvalidRange(t *testing.T) {
	data := NewIntInt([]IntIntPair{{0, 0}, {1, 1}})
	v := NewView(data)
	assert.Panics(t, func() { v.IterIntInt(1, 1) })
	assert.Panics(t, func() { v.IterIntInt(0, 10) })
}
