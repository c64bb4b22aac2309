package model

import (
	"math"

	"github.com/rmi-compiler/rmi/dataview"
)

// plaSegment is one piece of a bounded-error piecewise-linear approximation:
// for x in [StartX, nextSegment.StartX), predict Intercept + Slope*(x-StartX).
type plaSegment struct {
	StartX    float64
	Intercept float64
	Slope     float64
}

// greedyPLA builds a bounded-error piecewise-linear approximation of (xs,
// ys) in one streaming pass: it grows the feasible slope range for the
// segment's anchor point as long as every point seen so far stays within
// epsilon of some line through the anchor, and starts a fresh segment the
// moment the feasible range becomes empty. This is the same shrinking-cone
// construction PGM-index and bottom-up PLR both reduce to; they differ in
// which points are retained as segment descriptors, not in the feasibility
// test itself.
func greedyPLA(xs, ys []float64, epsilon float64) []plaSegment {
	n := len(xs)
	if n == 0 {
		return nil
	}
	if epsilon < 0 {
		epsilon = 0
	}

	var segments []plaSegment
	anchorX, anchorY := xs[0], ys[0]
	slopeLow, slopeHigh := math.Inf(-1), math.Inf(1)
	haveRange := false

	flush := func(endIdxExclusiveSlope float64) {
		slope := endIdxExclusiveSlope
		if math.IsInf(slope, 0) {
			slope = 0
		}
		segments = append(segments, plaSegment{
			StartX:    anchorX,
			Intercept: anchorY,
			Slope:     slope,
		})
	}

	for i := 1; i < n; i++ {
		dx := xs[i] - anchorX
		if dx == 0 {
			continue
		}
		lo := ((ys[i] - epsilon) - anchorY) / dx
		hi := ((ys[i] + epsilon) - anchorY) / dx
		if lo > hi {
			lo, hi = hi, lo
		}

		newLow, newHigh := slopeLow, slopeHigh
		if lo > newLow {
			newLow = lo
		}
		if hi < newHigh {
			newHigh = hi
		}

		if newLow > newHigh {
			mid := slopeLow
			if !math.IsInf(slopeHigh, 0) {
				if math.IsInf(slopeLow, 0) {
					mid = slopeHigh
				} else {
					mid = (slopeLow + slopeHigh) / 2
				}
			}
			flush(mid)
			anchorX, anchorY = xs[i-1], ys[i-1]
			slopeLow, slopeHigh = math.Inf(-1), math.Inf(1)
			haveRange = false
			i-- // re-evaluate this point against the new anchor
			continue
		}

		slopeLow, slopeHigh = newLow, newHigh
		haveRange = true
	}

	mid := 0.0
	if haveRange {
		switch {
		case math.IsInf(slopeLow, 0) && math.IsInf(slopeHigh, 0):
			mid = 0
		case math.IsInf(slopeLow, 0):
			mid = slopeHigh
		case math.IsInf(slopeHigh, 0):
			mid = slopeLow
		default:
			mid = (slopeLow + slopeHigh) / 2
		}
	}
	flush(mid)

	return segments
}

// predictPLA evaluates the segment covering x, via binary search over
// segment start keys.
func predictPLA(segments []plaSegment, x float64) float64 {
	if len(segments) == 0 {
		return 0
	}
	lo, hi := 0, len(segments)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if segments[mid].StartX <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	s := segments[lo]
	return s.Intercept + s.Slope*(x-s.StartX)
}

// defaultPLREpsilon bounds the per-point error BottomUpPLR targets when
// SetEpsilon has not been called; the trainer does not call it.
const defaultPLREpsilon = 32.0

// BottomUpPLR is a bounded-error piecewise-linear regression, intended for
// use as a leaf model: it guarantees no training point is off by more than
// its epsilon, trading a larger parameter count for a tight, explicit error
// bound instead of relying on the trainer's post-hoc error_bound pass.
type BottomUpPLR struct {
	baseModel
	epsilon    float64
	epsilonSet bool
	segments   []plaSegment
}

func (m *BottomUpPLR) Fit(v *dataview.View) error {
	eps := defaultPLREpsilon
	if m.epsilonSet {
		eps = m.epsilon
	}
	xs, ys := collectXY(v)
	m.segments = greedyPLA(xs, ys, eps)
	return nil
}

// SetEpsilon overrides the target per-point error bound before Fit.
func (m *BottomUpPLR) SetEpsilon(eps float64) {
	m.epsilon = eps
	m.epsilonSet = true
}

func (m *BottomUpPLR) InputType() DataType  { return Float }
func (m *BottomUpPLR) OutputType() DataType { return Float }
func (m *BottomUpPLR) FunctionName() string { return "bottom_up_plr" }
func (m *BottomUpPLR) StandardFunctions() StdFunctionSet {
	return NewStdFunctionSet(FnBinarySearch)
}
func (m *BottomUpPLR) Params() []Param {
	starts := make([]float64, len(m.segments))
	intercepts := make([]float64, len(m.segments))
	slopes := make([]float64, len(m.segments))
	for i, s := range m.segments {
		starts[i], intercepts[i], slopes[i] = s.StartX, s.Intercept, s.Slope
	}
	return []Param{
		ParamOfInt(uint64(len(m.segments))),
		ParamOfFloats(starts),
		ParamOfFloats(intercepts),
		ParamOfFloats(slopes),
	}
}

func (m *BottomUpPLR) PredictFloat(x Input) float64 { return predictPLA(m.segments, x.AsFloat()) }
func (m *BottomUpPLR) PredictInt(x Input) uint64 { return floorClampUint(m.PredictFloat(x)) }

func (m *BottomUpPLR) SetConstantModel(constant uint64) bool {
	m.segments = []plaSegment{{StartX: 0, Intercept: float64(constant), Slope: 0}}
	return true
}
