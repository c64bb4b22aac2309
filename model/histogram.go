package model

import (
	"sort"

	"github.com/rmi-compiler/rmi/dataview"
)

// Histogram is an equi-depth histogram over keys: it splits the sorted key
// stream into numBuckets equal-count groups and predicts the bucket index
// for any key via binary search on the recorded boundaries.
type Histogram struct {
	baseModel
	numBuckets  int
	boundaries  []float64 // numBuckets-1 interior boundary keys, ascending
}

// SetBuckets configures the bucket count before Fit.
func (m *Histogram) SetBuckets(n int) { m.numBuckets = n }

// NumBuckets reports the bucket count Fit settled on.
func (m *Histogram) NumBuckets() int { return m.numBuckets }

func (m *Histogram) Fit(v *dataview.View) error {
	n := v.Len()
	if m.numBuckets < 1 {
		m.numBuckets = 1
	}
	if n == 0 {
		m.boundaries = nil
		return nil
	}
	if m.numBuckets > n {
		m.numBuckets = n
	}
	m.boundaries = make([]float64, m.numBuckets-1)
	for i := 1; i < m.numBuckets; i++ {
		idx := (i * n) / m.numBuckets
		if idx >= n {
			idx = n - 1
		}
		k, _ := v.Get(idx)
		m.boundaries[i-1] = k
	}
	return nil
}

func (m *Histogram) InputType() DataType  { return Float }
func (m *Histogram) OutputType() DataType { return Int }
func (m *Histogram) FunctionName() string { return "histogram" }
func (m *Histogram) Params() []Param {
	return []Param{ParamOfInt(uint64(m.numBuckets)), ParamOfFloats(m.boundaries)}
}

func (m *Histogram) PredictFloat(x Input) float64 { return float64(m.PredictInt(x)) }
func (m *Histogram) PredictInt(x Input) uint64 {
	key := x.AsFloat()
	idx := sort.SearchFloat64s(m.boundaries, key)
	return uint64(idx)
}

func (m *Histogram) SetConstantModel(uint64) bool { return false }
