package model

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rmi-compiler/rmi/dataview"
)

// Normal predicts a key's position as the CDF of a normal distribution
// fitted to the key stream, scaled into [0, N). Setting logTransform fits
// the distribution to log(key) instead, giving the LogNormal variant.
type Normal struct {
	baseModel
	logTransform bool
	mu, sigma    float64
	n            float64
}

// SetRange configures the output scale N (predictions land in [0, N)).
func (m *Normal) SetRange(n float64) { m.n = n }

func (m *Normal) Fit(v *dataview.View) error {
	count := v.Len()
	if count == 0 {
		return nil
	}
	xs := make([]float64, count)
	for i := 0; i < count; i++ {
		k, _ := v.Get(i)
		if m.logTransform {
			k = math.Log(math.Max(k, 1e-12))
		}
		xs[i] = k
	}
	m.mu, m.sigma = stat.MeanStdDev(xs, nil)
	if m.sigma == 0 {
		m.sigma = 1
	}
	if m.n == 0 {
		m.n = float64(count)
	}
	return nil
}

func (m *Normal) InputType() DataType  { return Float }
func (m *Normal) OutputType() DataType { return Float }
func (m *Normal) FunctionName() string {
	if m.logTransform {
		return "lognormal"
	}
	return "normal"
}
func (m *Normal) Params() []Param {
	return []Param{ParamOfFloat(m.mu), ParamOfFloat(m.sigma), ParamOfFloat(m.n)}
}

func (m *Normal) PredictFloat(x Input) float64 {
	key := x.AsFloat()
	if m.logTransform {
		key = math.Log(math.Max(key, 1e-12))
	}
	dist := distuv.Normal{Mu: m.mu, Sigma: m.sigma}
	return dist.CDF(key) * m.n
}
func (m *Normal) PredictInt(x Input) uint64 { return floorClampUint(m.PredictFloat(x)) }

// constantSigma is large enough that every finite float64 key lands within a
// fraction of a standard deviation of mu, flattening the CDF to ~0.5 and
// making the distribution's output effectively constant.
const constantSigma = 1e300

func (m *Normal) SetConstantModel(constant uint64) bool {
	m.mu, m.sigma = 0, constantSigma
	m.n = 2 * float64(constant)
	return true
}
