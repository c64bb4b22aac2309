package model

import (
	"math/bits"

	"github.com/rmi-compiler/rmi/dataview"
)

// Radix extracts the top `bits` bits of the integer key, counted from the
// highest set bit of the largest training key, as a leaf index.
// As a top model this is exact and monotone by construction; it is the
// fastest possible partitioner when keys are drawn from a dense integer
// domain. MustBeTop because a radix prefix is meaningless as a within-leaf
// position predictor.
type Radix struct {
	baseModel
	bits      uint
	fixed     bool // radix18/radix22 pin bits regardless of branching factor
	prefixLen uint64
}

// Fit pins prefixLen (the right shift PredictInt applies) from the configured
// bit width and the bit length of the largest key; the trainer must call
// SetBranchingBits before Fit for a plain "radix" model (radix18/radix22
// ignore it, their bit width is fixed by kind).
func (m *Radix) Fit(v *dataview.View) error {
	used := m.bits
	if n := v.Len(); n > 0 {
		if keyBits := uint(bits.Len64(v.GetKey(n - 1))); keyBits > used {
			used = keyBits
		}
	}
	m.prefixLen = uint64(used - m.bits)
	return nil
}

// SetBranchingBits configures the number of top bits a plain "radix" model
// extracts, derived by the trainer as ceil(log2(B)).
func (m *Radix) SetBranchingBits(b uint) {
	if !m.fixed {
		m.bits = b
	}
}

func (m *Radix) InputType() DataType  { return Int }
func (m *Radix) OutputType() DataType { return Int }
func (m *Radix) FunctionName() string {
	switch {
	case m.fixed && m.bits == 18:
		return "radix18"
	case m.fixed && m.bits == 22:
		return "radix22"
	default:
		return "radix"
	}
}
func (m *Radix) Restriction() Restriction { return MustBeTop }
func (m *Radix) Params() []Param {
	return []Param{ParamOfInt(uint64(64 - m.prefixLen)), ParamOfInt(m.prefixLen)}
}

func (m *Radix) PredictFloat(x Input) float64 { return float64(m.PredictInt(x)) }
func (m *Radix) PredictInt(x Input) uint64    { return x.AsInt() >> m.prefixLen }

func (m *Radix) SetConstantModel(uint64) bool { return false }

// BitsForBranchingFactor returns ceil(log2(b)), the number of top bits a
// radix top model must keep to address b leaves.
func BitsForBranchingFactor(b uint64) uint {
	if b <= 1 {
		return 0
	}
	return uint(bits.Len64(b - 1))
}

// BalancedRadix is a radix table computed to equalize partition counts: a
// prefix lookup table of length 2^bitLength mapping each possible prefix to
// a leaf index, rather than using the raw prefix value directly.
type BalancedRadix struct {
	baseModel
	bitLength uint
	table     []uint32 // len 2^bitLength, prefix -> leaf index
}

func (m *BalancedRadix) Fit(v *dataview.View) error {
	n := v.Len()
	if n == 0 {
		return nil
	}
	if m.bitLength == 0 {
		m.bitLength = 16
	}
	tableLen := uint64(1) << m.bitLength
	shift := 64 - m.bitLength
	m.table = make([]uint32, tableLen)

	// Count entries per prefix bucket, then assign leaves so each gets
	// roughly n/tableLen entries — the "balanced" part of balanced radix.
	counts := make([]int, tableLen)
	for i := 0; i < n; i++ {
		p := v.GetKey(i) >> shift
		counts[p]++
	}
	target := n / int(tableLen)
	if target < 1 {
		target = 1
	}
	leaf, acc := 0, 0
	for p := uint64(0); p < tableLen; p++ {
		m.table[p] = uint32(leaf)
		acc += counts[p]
		if acc >= target && leaf < int(tableLen)-1 {
			leaf++
			acc = 0
		}
	}
	return nil
}

// SetBitLength configures the prefix table's address width, derived by the
// trainer from the branching factor.
func (m *BalancedRadix) SetBitLength(b uint) { m.bitLength = b }

func (m *BalancedRadix) InputType() DataType  { return Int }
func (m *BalancedRadix) OutputType() DataType { return Int }
func (m *BalancedRadix) FunctionName() string { return "bradix" }
func (m *BalancedRadix) Restriction() Restriction { return MustBeTop }
func (m *BalancedRadix) Params() []Param {
	table32 := make([]uint32, len(m.table))
	copy(table32, m.table)
	return []Param{ParamOfInt(uint64(m.bitLength)), ParamOfInt32s(table32)}
}

func (m *BalancedRadix) PredictFloat(x Input) float64 { return float64(m.PredictInt(x)) }
func (m *BalancedRadix) PredictInt(x Input) uint64 {
	if len(m.table) == 0 {
		return 0
	}
	shift := 64 - m.bitLength
	p := x.AsInt() >> shift
	if int(p) >= len(m.table) {
		p = uint64(len(m.table) - 1)
	}
	return uint64(m.table[p])
}

func (m *BalancedRadix) SetConstantModel(uint64) bool { return false }
