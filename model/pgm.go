package model

import "github.com/rmi-compiler/rmi/dataview"

// defaultPGMEpsilon is the per-point error tolerance for PGM segmentation
// when SetEpsilon has not been called; the trainer does not call it.
const defaultPGMEpsilon = 64.0

// PGM builds a PGM-index-style segmentation: a sequence of linear segments,
// each guaranteeing every covered key predicts within epsilon of its true
// position, built with the same shrinking-cone construction as BottomUpPLR
// but exposed with PGM's own tunable epsilon and segment-descriptor layout.
type PGM struct {
	baseModel
	epsilon    float64
	epsilonSet bool
	segments   []plaSegment
}

func (m *PGM) Fit(v *dataview.View) error {
	eps := defaultPGMEpsilon
	if m.epsilonSet {
		eps = m.epsilon
	}
	xs, ys := collectXY(v)
	m.segments = greedyPLA(xs, ys, eps)
	return nil
}

// SetEpsilon overrides the segmentation's error tolerance before Fit.
func (m *PGM) SetEpsilon(eps float64) {
	m.epsilon = eps
	m.epsilonSet = true
}

func (m *PGM) InputType() DataType  { return Float }
func (m *PGM) OutputType() DataType { return Float }
func (m *PGM) FunctionName() string { return "pgm" }
func (m *PGM) StandardFunctions() StdFunctionSet {
	return NewStdFunctionSet(FnBinarySearch)
}
func (m *PGM) Params() []Param {
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

func (m *PGM) PredictFloat(x Input) float64 { return predictPLA(m.segments, x.AsFloat()) }
func (m *PGM) PredictInt(x Input) uint64 { return floorClampUint(m.PredictFloat(x)) }

func (m *PGM) SetConstantModel(constant uint64) bool {
	m.segments = []plaSegment{{StartX: 0, Intercept: float64(constant), Slope: 0}}
	return true
}
