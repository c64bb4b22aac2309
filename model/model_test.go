package model

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmi-compiler/rmi/dataview"
)

func identityView(n int) *dataview.View {
	pairs := make([]dataview.IntIntPair, n)
	for i := 0; i < n; i++ {
		pairs[i] = dataview.IntIntPair{Key: uint64(i), Pos: uint64(i)}
	}
	return dataview.NewView(dataview.NewIntInt(pairs))
}

// Invariant 2: predict_to_int == floor(max(0, predict_to_float)) for every
// zoo member, spot-checked across a range of inputs.
func TestPredictIntMatchesFloor(t *testing.T) {
	kinds := []Kind{
		KindLinear, KindRobustLinear, KindLogLinear, KindLinearSpline, KindCubicSpline,
		KindRadix, KindBalancedRadix, KindHistogram, KindNormal, KindLogNormal,
		KindBottomUpPLR, KindPGM,
	}
	v := identityView(200)

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			m, err := New(kind)
			require.NoError(t, err)
			if a, ok := m.(BranchingBitsAware); ok {
				a.SetBranchingBits(8)
			}
			if a, ok := m.(BitLengthAware); ok {
				a.SetBitLength(8)
			}
			if a, ok := m.(BucketCountAware); ok {
				a.SetBuckets(8)
			}
			if a, ok := m.(RangeAware); ok {
				a.SetRange(200)
			}
			require.NoError(t, m.Fit(v))

			for _, x := range []float64{0, 5, 50, 199} {
				var input Input
				if m.InputType() == Int {
					input = IntInput(uint64(x))
				} else {
					input = FloatInput(x)
				}
				want := m.PredictFloat(input)
				wantInt := uint64(0)
				if want > 0 {
					wantInt = uint64(math.Floor(want))
				}
				assert.Equal(t, wantInt, m.PredictInt(input))
			}
		})
	}
}

func TestLinear_FitsIdentity(t *testing.T) {
	m := &Linear{}
	require.NoError(t, m.Fit(identityView(100)))
	assert.InDelta(t, 0, m.A, 1e-6)
	assert.InDelta(t, 1, m.B, 1e-6)
}

func TestNormal_SetConstantModel(t *testing.T) {
	m := &Normal{}
	require.True(t, m.SetConstantModel(42))
	for _, key := range []float64{0, 1, 1e6, 1e18} {
		assert.Equal(t, uint64(42), m.PredictInt(FloatInput(key)))
	}
}

func TestRadix_Restriction(t *testing.T) {
	m := &Radix{}
	assert.Equal(t, MustBeTop, m.Restriction())
}

func TestRadix18_FixedBitsIgnoresSetBranchingBits(t *testing.T) {
	m, err := New(KindRadix18)
	require.NoError(t, err)
	radix := m.(*Radix)
	radix.SetBranchingBits(4)
	assert.Equal(t, uint(18), radix.bits)
}

func TestHistogram_BoundaryCount(t *testing.T) {
	m := &Histogram{}
	m.SetBuckets(4)
	require.NoError(t, m.Fit(identityView(100)))
	assert.Len(t, m.boundaries, 3)
}

func TestStdFunctionSet_Union(t *testing.T) {
	a := NewStdFunctionSet(FnExp)
	b := NewStdFunctionSet(FnLogOnce, FnExp)
	union := a.Union(b)
	assert.Len(t, union, 2)
	_, hasExp := union[FnExp]
	_, hasLog := union[FnLogOnce]
	assert.True(t, hasExp)
	assert.True(t, hasLog)
}

func TestParam_WriteTo_LittleEndian(t *testing.T) {
	p := ParamOfInt(0x0102030405060708)
	var buf bytes.Buffer
	require.NoError(t, p.WriteTo(&buf))
	want := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	assert.Equal(t, want, buf.Bytes())
}

func TestParam_AsFloat_PanicsOnArray(t *testing.T) {
	p := ParamOfFloats([]float64{1, 2})
	assert.Panics(t, func() { p.AsFloat() })
}

func TestNew_UnknownKindErrors(t *testing.T) {
	_, err := New(Kind("nonexistent"))
	assert.Error(t, err)
}

func TestGreedyPLA_BoundsError(t *testing.T) {
	xs := make([]float64, 100)
	ys := make([]float64, 100)
	for i := range xs {
		xs[i] = float64(i)
		ys[i] = float64(i) * 2.0
	}
	segments := greedyPLA(xs, ys, 1.0)
	require.NotEmpty(t, segments)
	for i, x := range xs {
		got := predictPLA(segments, x)
		assert.InDelta(t, ys[i], got, 1.0+1e-6)
	}
}
