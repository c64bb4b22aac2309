// Package dataview provides uniform read access to the sorted (key, position)
// stream a learned index trains over, across the four key/position numeric
// kinds the model zoo cares about.
package dataview

import (
	"fmt"
	"iter"
	"sort"
)

// Kind identifies which of the four (key, position) numeric domains a Data
// value holds.
type Kind int

const (
	IntInt Kind = iota
	IntFloat
	FloatInt
	FloatFloat
)

func (k Kind) String() string {
	switch k {
	case IntInt:
		return "int_int"
	case IntFloat:
		return "int_float"
	case FloatInt:
		return "float_int"
	case FloatFloat:
		return "float_float"
	default:
		return "unknown"
	}
}

// IntIntPair is one (key, position) entry in an all-integer stream.
type IntIntPair struct {
	Key uint64
	Pos uint64
}

// IntFloatPair is one entry with an integer key and a real-valued position.
type IntFloatPair struct {
	Key uint64
	Pos float64
}

// FloatIntPair is one entry with a real-valued key and an integer position.
type FloatIntPair struct {
	Key float64
	Pos uint64
}

// FloatFloatPair is one entry with a real-valued key and a real-valued position.
type FloatFloatPair struct {
	Key float64
	Pos float64
}

// Data is the tagged-sum training input: exactly one of the four pair slices
// below is populated, selected by Kind. Keys are sorted ascending and
// positions are monotonically non-decreasing; Data never mutates or
// reallocates its backing slice once constructed.
type Data struct {
	kind       Kind
	intInt     []IntIntPair
	intFloat   []IntFloatPair
	floatInt   []FloatIntPair
	floatFloat []FloatFloatPair
}

// NewIntInt builds an all-integer Data from already-sorted pairs.
func NewIntInt(pairs []IntIntPair) *Data { return &Data{kind: IntInt, intInt: pairs} }

// NewIntFloat builds a Data with integer keys and float positions.
func NewIntFloat(pairs []IntFloatPair) *Data { return &Data{kind: IntFloat, intFloat: pairs} }

// NewFloatInt builds a Data with float keys and integer positions.
func NewFloatInt(pairs []FloatIntPair) *Data { return &Data{kind: FloatInt, floatInt: pairs} }

// NewFloatFloat builds an all-float Data from already-sorted pairs.
func NewFloatFloat(pairs []FloatFloatPair) *Data { return &Data{kind: FloatFloat, floatFloat: pairs} }

// Kind reports which numeric variant this Data holds.
func (d *Data) Kind() Kind { return d.kind }

// Len returns the number of entries.
func (d *Data) Len() int {
	switch d.kind {
	case IntInt:
		return len(d.intInt)
	case IntFloat:
		return len(d.intFloat)
	case FloatInt:
		return len(d.floatInt)
	default:
		return len(d.floatFloat)
	}
}

// Get returns (key, position) at idx as a float pair, with no scaling applied.
func (d *Data) Get(idx int) (float64, float64) {
	switch d.kind {
	case IntInt:
		p := d.intInt[idx]
		return float64(p.Key), float64(p.Pos)
	case IntFloat:
		p := d.intFloat[idx]
		return float64(p.Key), p.Pos
	case FloatInt:
		p := d.floatInt[idx]
		return p.Key, float64(p.Pos)
	default:
		p := d.floatFloat[idx]
		return p.Key, p.Pos
	}
}

// GetKey returns the key at idx as a u64; float keys truncate toward zero.
func (d *Data) GetKey(idx int) uint64 {
	switch d.kind {
	case IntInt:
		return d.intInt[idx].Key
	case IntFloat:
		return d.intFloat[idx].Key
	case FloatInt:
		return uint64(d.floatInt[idx].Key)
	default:
		return uint64(d.floatFloat[idx].Key)
	}
}

// View is a cheap-to-clone window onto a Data buffer with an output scale
// factor applied to positions on read. View never owns or mutates the
// underlying buffer; cloning a View is a value copy of (pointer, scale,
// window).
type View struct {
	data        *Data
	scale       float64
	start, stop int
}

// NewView wraps data in a View over its full range with scale 1.0.
func NewView(data *Data) *View {
	return &View{data: data, scale: 1.0, start: 0, stop: data.Len()}
}

// SetScale installs the scale factor applied to positions read through Get
// and the iterators. scale must be > 0.
func (v *View) SetScale(scale float64) {
	if scale <= 0 {
		panic(fmt.Sprintf("dataview: scale must be > 0, got %v", scale))
	}
	v.scale = scale
}

// Scale returns the current scale factor.
func (v *View) Scale() float64 { return v.scale }

// Window returns a new View over the half-open index range [start, stop) of
// the current window, preserving the current scale. This is how the trainer
// carves out a per-leaf sub-view without copying the backing Data.
func (v *View) Window(start, stop int) *View {
	if start < 0 || stop > v.Len() || start > stop {
		panic(fmt.Sprintf("dataview: invalid window [%d, %d) over len %d", start, stop, v.Len()))
	}
	return &View{data: v.data, scale: v.scale, start: v.start + start, stop: v.start + stop}
}

// Len returns the number of entries visible through this window.
func (v *View) Len() int { return v.stop - v.start }

// Get returns (key, position*scale) at idx within the window.
func (v *View) Get(idx int) (float64, float64) {
	k, p := v.data.Get(v.start + idx)
	return k, p * v.scale
}

// GetKey returns the integer-truncated key at idx within the window.
func (v *View) GetKey(idx int) uint64 { return v.data.GetKey(v.start + idx) }

// AsIntInt returns a direct slice view onto the underlying IntInt pairs.
// It is a programmer error to call this on a View over any other Kind.
func (v *View) AsIntInt() []IntIntPair {
	if v.data.kind != IntInt {
		panic(fmt.Sprintf("dataview: as_int_int called on a %s view", v.data.kind))
	}
	return v.data.intInt[v.start:v.stop]
}

// LowerBound returns the smallest window-relative index i such that
// key(i) >= k. Valid only when the underlying Data is IntInt.
func (v *View) LowerBound(k uint64) int {
	pairs := v.AsIntInt()
	return sort.Search(len(pairs), func(i int) bool { return pairs[i].Key >= k })
}

// IterFloatFloat returns a finite, non-restartable sequence of (key,
// position*scale) pairs over the window-relative range [start, stop).
// Bounds must satisfy 0 <= start < stop <= Len(); violating this is a
// programmer error.
func (v *View) IterFloatFloat(start, stop int) iter.Seq2[float64, float64] {
	v.checkIterBounds(start, stop)
	return func(yield func(float64, float64) bool) {
		for i := start; i < stop; i++ {
			k, p := v.Get(i)
			if !yield(k, p) {
				return
			}
		}
	}
}

// IterIntInt returns a finite, non-restartable sequence of (key,
// position*scale) pairs, both truncated to u64, over the window-relative
// range [start, stop).
func (v *View) IterIntInt(start, stop int) iter.Seq2[uint64, uint64] {
	v.checkIterBounds(start, stop)
	return func(yield func(uint64, uint64) bool) {
		for i := start; i < stop; i++ {
			k, p := v.Get(i)
			if !yield(uint64(k), uint64(p)) {
				return
			}
		}
	}
}

func (v *View) checkIterBounds(start, stop int) {
	if start < 0 || stop > v.Len() || start >= stop {
		panic(fmt.Sprintf("dataview: invalid iteration bounds [%d, %d) over len %d", start, stop, v.Len()))
	}
}
