package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/rmi-compiler/rmi/dataview"
)

// LinearSpline interpolates linearly between the first and last point of the
// fitted partition, trivially exact at both endpoints.
type LinearSpline struct {
	baseModel
	X0, Y0, X1, Y1 float64
}

func (m *LinearSpline) Fit(v *dataview.View) error {
	n := v.Len()
	if n == 0 {
		return nil
	}
	m.X0, m.Y0 = v.Get(0)
	m.X1, m.Y1 = v.Get(n - 1)
	return nil
}

func (m *LinearSpline) InputType() DataType  { return Float }
func (m *LinearSpline) OutputType() DataType { return Float }
func (m *LinearSpline) FunctionName() string { return "linear_spline" }
func (m *LinearSpline) Params() []Param {
	return []Param{ParamOfFloat(m.X0), ParamOfFloat(m.Y0), ParamOfFloat(m.X1), ParamOfFloat(m.Y1)}
}

func (m *LinearSpline) PredictFloat(x Input) float64 {
	if m.X1 == m.X0 {
		return m.Y0
	}
	t := (x.AsFloat() - m.X0) / (m.X1 - m.X0)
	return m.Y0 + t*(m.Y1-m.Y0)
}
func (m *LinearSpline) PredictInt(x Input) uint64 { return floorClampUint(m.PredictFloat(x)) }

func (m *LinearSpline) SetConstantModel(constant uint64) bool {
	m.X0, m.Y0, m.X1, m.Y1 = 0, float64(constant), 1, float64(constant)
	return true
}

// cubicSplineKnots bounds how many control points CubicSpline samples from
// the partition before solving the natural cubic spline.
const cubicSplineKnots = 8

// CubicSpline is a natural cubic spline over up to cubicSplineKnots control
// points sampled evenly from the partition, solved via a tridiagonal system
// for the second-derivative (moment) coefficients at each knot.
type CubicSpline struct {
	baseModel
	Xs, Ys, M []float64 // knot x, knot y, and second-derivative at each knot
}

func (m *CubicSpline) Fit(v *dataview.View) error {
	n := v.Len()
	if n == 0 {
		return nil
	}
	k := cubicSplineKnots
	if k > n {
		k = n
	}
	if k < 2 {
		k = 2
		if k > n {
			k = n
		}
	}

	xs := make([]float64, k)
	ys := make([]float64, k)
	for i := 0; i < k; i++ {
		idx := (i * (n - 1)) / maxInt(1, k-1)
		xs[i], ys[i] = v.Get(idx)
	}
	m.Xs, m.Ys = xs, ys
	m.M = naturalCubicMoments(xs, ys)
	return nil
}

func (m *CubicSpline) InputType() DataType  { return Float }
func (m *CubicSpline) OutputType() DataType { return Float }
func (m *CubicSpline) FunctionName() string { return "cubic" }
func (m *CubicSpline) Params() []Param {
	return []Param{
		ParamOfInt(uint64(len(m.Xs))),
		ParamOfFloats(m.Xs),
		ParamOfFloats(m.Ys),
		ParamOfFloats(m.M),
	}
}

func (m *CubicSpline) PredictFloat(x Input) float64 {
	n := len(m.Xs)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return m.Ys[0]
	}
	xv := x.AsFloat()
	// locate the bracketing interval [i, i+1]
	i := 0
	for i < n-2 && xv > m.Xs[i+1] {
		i++
	}
	h := m.Xs[i+1] - m.Xs[i]
	if h == 0 {
		return m.Ys[i]
	}
	a := (m.Xs[i+1] - xv) / h
	b := (xv - m.Xs[i]) / h
	return a*m.Ys[i] + b*m.Ys[i+1] +
		((a*a*a-a)*m.M[i]+(b*b*b-b)*m.M[i+1])*(h*h)/6.0
}
func (m *CubicSpline) PredictInt(x Input) uint64 { return floorClampUint(m.PredictFloat(x)) }

func (m *CubicSpline) SetConstantModel(constant uint64) bool {
	m.Xs = []float64{0, 1}
	m.Ys = []float64{float64(constant), float64(constant)}
	m.M = []float64{0, 0}
	return true
}

// naturalCubicMoments solves the standard natural-boundary tridiagonal system
// for cubic spline second derivatives at each knot, via gonum's dense solver.
func naturalCubicMoments(xs, ys []float64) []float64 {
	n := len(xs)
	m := make([]float64, n)
	if n < 3 {
		return m
	}

	A := mat.NewDense(n-2, n-2, nil)
	rhs := mat.NewVecDense(n-2, nil)
	for i := 1; i < n-1; i++ {
		hi := xs[i] - xs[i-1]
		hip1 := xs[i+1] - xs[i]
		row := i - 1
		if hi == 0 || hip1 == 0 {
			A.Set(row, row, 1)
			rhs.SetVec(row, 0)
			continue
		}
		if row-1 >= 0 {
			A.Set(row, row-1, hi/6.0)
		}
		A.Set(row, row, (hi+hip1)/3.0)
		if row+1 < n-2 {
			A.Set(row, row+1, hip1/6.0)
		}
		d := (ys[i+1]-ys[i])/hip1 - (ys[i]-ys[i-1])/hi
		rhs.SetVec(row, d)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(A, rhs); err != nil {
		// A singular system degrades gracefully to a linear (zero-curvature)
		// spline rather than propagating a FitDiverged for what the caller
		// can treat as an approximation quality issue, not a hard failure.
		return m
	}
	for i := 1; i < n-1; i++ {
		m[i] = sol.AtVec(i - 1)
	}
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
