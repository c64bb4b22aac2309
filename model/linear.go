package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rmi-compiler/rmi/dataview"
)

// Linear is an ordinary least-squares fit y = a + b*x.
type Linear struct {
	baseModel
	A, B float64
}

func (m *Linear) Fit(v *dataview.View) error {
	xs, ys := collectXY(v)
	if len(xs) == 0 {
		return nil
	}
	a, b := fitOLS(xs, ys)
	m.A, m.B = a, b
	return nil
}

func (m *Linear) InputType() DataType  { return Float }
func (m *Linear) OutputType() DataType { return Float }
func (m *Linear) FunctionName() string { return "linear" }
func (m *Linear) Params() []Param      { return []Param{ParamOfFloat(m.A), ParamOfFloat(m.B)} }

func (m *Linear) PredictFloat(x Input) float64 { return m.A + m.B*x.AsFloat() }
func (m *Linear) PredictInt(x Input) uint64     { return floorClampUint(m.PredictFloat(x)) }

func (m *Linear) SetConstantModel(constant uint64) bool {
	m.A, m.B = float64(constant), 0
	return true
}

// RobustLinear is a top-model-only variant: it discards the bottom and top 1%
// of (x, y) pairs by key before fitting an ordinary least-squares line, which
// keeps a handful of outlier keys from skewing the top model's partitioning.
type RobustLinear struct {
	baseModel
	A, B float64
}

func (m *RobustLinear) Fit(v *dataview.View) error {
	xs, ys := collectXY(v)
	n := len(xs)
	if n == 0 {
		return nil
	}
	trim := n / 100
	lo, hi := trim, n-trim
	if hi <= lo {
		lo, hi = 0, n
	}
	if hi-lo > 1 && xs[lo] == xs[hi-1] {
		return fmt.Errorf("robust linear: all %d trimmed keys are equal, regression is singular", hi-lo)
	}
	a, b := fitOLS(xs[lo:hi], ys[lo:hi])
	m.A, m.B = a, b
	return nil
}

func (m *RobustLinear) InputType() DataType     { return Float }
func (m *RobustLinear) OutputType() DataType    { return Float }
func (m *RobustLinear) FunctionName() string    { return "robust_linear" }
func (m *RobustLinear) Restriction() Restriction { return MustBeTop }
func (m *RobustLinear) Params() []Param         { return []Param{ParamOfFloat(m.A), ParamOfFloat(m.B)} }

func (m *RobustLinear) PredictFloat(x Input) float64 { return m.A + m.B*x.AsFloat() }
func (m *RobustLinear) PredictInt(x Input) uint64     { return floorClampUint(m.PredictFloat(x)) }

func (m *RobustLinear) SetConstantModel(constant uint64) bool {
	m.A, m.B = float64(constant), 0
	return true
}

// LogLinear fits log(y+1) = a + b*x and predicts with exp(pred)-1, clamped
// to zero, undoing the log transform on the way out.
type LogLinear struct {
	baseModel
	A, B float64
}

func (m *LogLinear) Fit(v *dataview.View) error {
	xs, ys := collectXY(v)
	if len(xs) == 0 {
		return nil
	}
	logYs := make([]float64, len(ys))
	for i, y := range ys {
		logYs[i] = math.Log(y + 1)
	}
	a, b := fitOLS(xs, logYs)
	m.A, m.B = a, b
	return nil
}

func (m *LogLinear) InputType() DataType     { return Float }
func (m *LogLinear) OutputType() DataType    { return Float }
func (m *LogLinear) FunctionName() string    { return "loglinear" }
func (m *LogLinear) Params() []Param         { return []Param{ParamOfFloat(m.A), ParamOfFloat(m.B)} }
func (m *LogLinear) StandardFunctions() StdFunctionSet {
	return NewStdFunctionSet(FnExp, FnLogOnce)
}

func (m *LogLinear) PredictFloat(x Input) float64 {
	v := math.Exp(m.A+m.B*x.AsFloat()) - 1
	if v < 0 {
		return 0
	}
	return v
}
func (m *LogLinear) PredictInt(x Input) uint64 { return floorClampUint(m.PredictFloat(x)) }

func (m *LogLinear) SetConstantModel(constant uint64) bool {
	// a = log(constant+1.5), b = 0 predicts constant+0.5, so PredictInt
	// floors back to constant despite exp/log rounding.
	m.A, m.B = math.Log(float64(constant)+1.5), 0
	return true
}

// collectXY drains a view's (key, position) stream into parallel float
// slices, already sorted by construction (keys are non-decreasing).
func collectXY(v *dataview.View) ([]float64, []float64) {
	n := v.Len()
	if n == 0 {
		return nil, nil
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i], ys[i] = v.Get(i)
	}
	return xs, ys
}

// fitOLS fits y = a + b*x by ordinary least squares via gonum's closed-form
// simple linear regression.
func fitOLS(xs, ys []float64) (a, b float64) {
	if len(xs) == 1 {
		// A single point has no slope information; anchor the intercept at it.
		return ys[0], 0
	}
	a, b = stat.LinearRegression(xs, ys, nil, false)
	return a, b
}

// floorClampUint implements predict_to_int = floor(max(0, predict_to_float)).
func floorClampUint(f float64) uint64 {
	if f < 0 {
		return 0
	}
	return uint64(math.Floor(f))
}
