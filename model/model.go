// Package model implements the learned-index model zoo: a closed set of
// numerically distinct predictors, each exposing a uniform fit/predict
// contract so the trainer and artifact assembler can treat them uniformly.
package model

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rmi-compiler/rmi/dataview"
)

// DataType is the input or output numeric domain of a model.
type DataType int

const (
	Int DataType = iota
	Float
)

func (t DataType) CType() string {
	if t == Int {
		return "uint64_t"
	}
	return "double"
}

// Restriction constrains where in an RMI a model kind may be used.
type Restriction int

const (
	NoRestriction Restriction = iota
	MustBeTop
	MustBeBottom
)

// Kind names one of the closed family of model variants. These strings are
// the canonical names used in a model_spec ("top,leaf") and in the
// autotuner's configuration space.
type Kind string

const (
	KindLinear        Kind = "linear"
	KindRobustLinear  Kind = "robust_linear"
	KindLogLinear     Kind = "loglinear"
	KindLinearSpline  Kind = "linear_spline"
	KindCubicSpline   Kind = "cubic"
	KindRadix         Kind = "radix"
	KindRadix18       Kind = "radix18"
	KindRadix22       Kind = "radix22"
	KindBalancedRadix Kind = "bradix"
	KindHistogram     Kind = "histogram"
	KindNormal        Kind = "normal"
	KindLogNormal     Kind = "lognormal"
	KindBottomUpPLR   Kind = "bottom_up_plr"
	KindPGM           Kind = "pgm"
)

// Input is a model prediction argument carrying both numeric interpretations,
// mirroring the two key domains a model might be asked to predict over.
type Input struct {
	f float64
	i uint64
}

// IntInput wraps an integer key for prediction.
func IntInput(v uint64) Input { return Input{f: float64(v), i: v} }

// FloatInput wraps a float key for prediction.
func FloatInput(v float64) Input { return Input{f: v, i: uint64(v)} }

// AsFloat returns the input's float64 interpretation.
func (x Input) AsFloat() float64 { return x.f }

// AsInt returns the input's uint64 interpretation.
func (x Input) AsInt() uint64 { return x.i }

// StdFunction names a helper symbol a generated lookup routine depends on.
type StdFunction string

const (
	FnBinarySearch StdFunction = "binary_search"
	FnLowerBound   StdFunction = "lower_bound"
	FnFClone       StdFunction = "fclone"
	FnLogOnce      StdFunction = "log_once"
	FnExp          StdFunction = "exp"
)

// StdFunctionSet is an unordered collection of required helper symbols.
type StdFunctionSet map[StdFunction]struct{}

// NewStdFunctionSet builds a set from the given functions.
func NewStdFunctionSet(fns ...StdFunction) StdFunctionSet {
	s := make(StdFunctionSet, len(fns))
	for _, f := range fns {
		s[f] = struct{}{}
	}
	return s
}

// Union returns a new set containing every function in s or other.
func (s StdFunctionSet) Union(other StdFunctionSet) StdFunctionSet {
	out := make(StdFunctionSet, len(s)+len(other))
	for f := range s {
		out[f] = struct{}{}
	}
	for f := range other {
		out[f] = struct{}{}
	}
	return out
}

// Model is the capability every zoo variant implements: fit against a
// DataView, predict in either numeric direction, and describe the
// parameters/dependencies an emitted lookup routine would need.
//
// The inner per-key prediction loop (PredictFloat/PredictInt) is meant to be
// called in a monomorphized hot loop; the Model interface itself exists for
// the RMI-assembly and artifact paths, where dynamic dispatch is acceptable.
type Model interface {
	// Fit trains the model's parameters against v. Fit is the only method
	// that reads training data; the Set* methods also change a Model's
	// state.
	Fit(v *dataview.View) error

	InputType() DataType
	OutputType() DataType

	// Params returns the model's fitted parameters in declaration order;
	// this is also the order they are serialized to the parameter blob.
	Params() []Param

	FunctionName() string
	StandardFunctions() StdFunctionSet
	NeedsBoundsCheck() bool
	Restriction() Restriction

	// ErrorBound returns the trained |predicted - actual| bound and whether
	// one was computed for this model.
	ErrorBound() (bound uint64, ok bool)
	SetErrorBound(bound uint64)

	PredictFloat(x Input) float64
	PredictInt(x Input) uint64

	// SetConstantModel collapses the model to a constant that always
	// predicts constant, if the kind supports it. Returns false otherwise.
	SetConstantModel(constant uint64) bool
}

// BranchingBitsAware is implemented by top models (plain Radix) whose bit
// width the trainer derives from the branching factor.
type BranchingBitsAware interface{ SetBranchingBits(bits uint) }

// BitLengthAware is implemented by models (BalancedRadix) whose prefix
// table address width the trainer derives from the branching factor.
type BitLengthAware interface{ SetBitLength(bits uint) }

// BucketCountAware is implemented by models (Histogram) whose bucket count
// the trainer derives from the branching factor.
type BucketCountAware interface{ SetBuckets(n int) }

// RangeAware is implemented by models (Normal, LogNormal) whose output
// range [0, N) the trainer derives from the branching factor.
type RangeAware interface{ SetRange(n float64) }

// New constructs a zero-valued, unfitted model of the given kind.
func New(kind Kind) (Model, error) {
	switch kind {
	case KindLinear:
		return &Linear{}, nil
	case KindRobustLinear:
		return &RobustLinear{}, nil
	case KindLogLinear:
		return &LogLinear{}, nil
	case KindLinearSpline:
		return &LinearSpline{}, nil
	case KindCubicSpline:
		return &CubicSpline{}, nil
	case KindRadix:
		return &Radix{bits: 0}, nil
	case KindRadix18:
		return &Radix{bits: 18, fixed: true}, nil
	case KindRadix22:
		return &Radix{bits: 22, fixed: true}, nil
	case KindBalancedRadix:
		return &BalancedRadix{}, nil
	case KindHistogram:
		return &Histogram{}, nil
	case KindNormal:
		return &Normal{}, nil
	case KindLogNormal:
		return &Normal{logTransform: true}, nil
	case KindBottomUpPLR:
		return &BottomUpPLR{}, nil
	case KindPGM:
		return &PGM{epsilon: defaultPGMEpsilon}, nil
	default:
		return nil, fmt.Errorf("model: unknown kind %q", kind)
	}
}

// baseModel holds the fields common to every zoo variant: the error bound
// computed by the trainer after fitting, and a default, non-restricted
// prediction/bounds-check posture. Variants embed it to avoid repeating the
// same accessor boilerplate.
type baseModel struct {
	errBound    uint64
	hasErrBound bool
}

func (b *baseModel) ErrorBound() (uint64, bool) { return b.errBound, b.hasErrBound }
func (b *baseModel) SetErrorBound(bound uint64) {
	b.errBound = bound
	b.hasErrBound = true
}
func (b *baseModel) NeedsBoundsCheck() bool            { return true }
func (b *baseModel) Restriction() Restriction          { return NoRestriction }
func (b *baseModel) StandardFunctions() StdFunctionSet { return nil }
func (b *baseModel) SetConstantModel(uint64) bool      { return false }

// ParamKind tags the shape of a single ModelParam.
type ParamKind int

const (
	ParamInt ParamKind = iota
	ParamFloat
	ParamShortArray
	ParamInt32Array
	ParamIntArray
	ParamFloatArray
)

// Param is one scalar or array entry in a model's ordered parameter list.
type Param struct {
	Kind     ParamKind
	IntVal   uint64
	FloatVal float64
	Shorts   []uint16
	Int32s   []uint32
	Ints     []uint64
	Floats   []float64
}

func ParamOfInt(v uint64) Param   { return Param{Kind: ParamInt, IntVal: v} }
func ParamOfFloat(v float64) Param { return Param{Kind: ParamFloat, FloatVal: v} }
func ParamOfShorts(v []uint16) Param { return Param{Kind: ParamShortArray, Shorts: v} }
func ParamOfInt32s(v []uint32) Param { return Param{Kind: ParamInt32Array, Int32s: v} }
func ParamOfInts(v []uint64) Param   { return Param{Kind: ParamIntArray, Ints: v} }
func ParamOfFloats(v []float64) Param { return Param{Kind: ParamFloatArray, Floats: v} }

// Size returns the parameter's serialized width in bytes.
func (p Param) Size() int {
	switch p.Kind {
	case ParamInt, ParamFloat:
		return 8
	case ParamShortArray:
		return 2 * len(p.Shorts)
	case ParamInt32Array:
		return 4 * len(p.Int32s)
	case ParamIntArray:
		return 8 * len(p.Ints)
	case ParamFloatArray:
		return 8 * len(p.Floats)
	default:
		return 0
	}
}

// Len returns the number of scalar elements (1 for a plain scalar).
func (p Param) Len() int {
	switch p.Kind {
	case ParamInt, ParamFloat:
		return 1
	case ParamShortArray:
		return len(p.Shorts)
	case ParamInt32Array:
		return len(p.Int32s)
	case ParamIntArray:
		return len(p.Ints)
	case ParamFloatArray:
		return len(p.Floats)
	default:
		return 0
	}
}

// IsArray reports whether this parameter serializes as a C array.
func (p Param) IsArray() bool { return p.Kind != ParamInt && p.Kind != ParamFloat }

// CType returns the C type name used when this parameter is emitted as a
// struct/array field declaration.
func (p Param) CType() string {
	switch p.Kind {
	case ParamInt, ParamIntArray:
		return "uint64_t"
	case ParamFloat, ParamFloatArray:
		return "double"
	case ParamShortArray:
		return "short"
	case ParamInt32Array:
		return "uint32_t"
	default:
		return ""
	}
}

// CTypeMod returns the declaration modifier ("" or "[]") for this parameter.
func (p Param) CTypeMod() string {
	if p.IsArray() {
		return "[]"
	}
	return ""
}

// CVal renders the scalar literal (or brace-initializer list) used in
// generated C source.
func (p Param) CVal() string {
	switch p.Kind {
	case ParamInt:
		return fmt.Sprintf("%dUL", p.IntVal)
	case ParamFloat:
		return floatCLiteral(p.FloatVal)
	case ParamShortArray:
		s := "{ "
		for i, v := range p.Shorts {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%d", v)
		}
		return s + " }"
	case ParamInt32Array:
		s := "{ "
		for i, v := range p.Int32s {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%dUL", v)
		}
		return s + " }"
	case ParamIntArray:
		s := "{ "
		for i, v := range p.Ints {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%dUL", v)
		}
		return s + " }"
	case ParamFloatArray:
		s := "{ "
		for i, v := range p.Floats {
			if i > 0 {
				s += ", "
			}
			s += floatCLiteral(v)
		}
		return s + " }"
	default:
		return ""
	}
}

func floatCLiteral(v float64) string {
	s := fmt.Sprintf("%g", v)
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' {
			return s
		}
	}
	return s + ".0"
}

// AsFloat returns a scalar parameter's value as float64; it is a programmer
// error to call this on an array parameter.
func (p Param) AsFloat() float64 {
	switch p.Kind {
	case ParamInt:
		return float64(p.IntVal)
	case ParamFloat:
		return p.FloatVal
	default:
		panic("model: AsFloat called on an array parameter")
	}
}

// WriteTo serializes the parameter to w in little-endian order.
func (p Param) WriteTo(w io.Writer) error {
	switch p.Kind {
	case ParamInt:
		return binary.Write(w, binary.LittleEndian, p.IntVal)
	case ParamFloat:
		return binary.Write(w, binary.LittleEndian, p.FloatVal)
	case ParamShortArray:
		return binary.Write(w, binary.LittleEndian, p.Shorts)
	case ParamInt32Array:
		return binary.Write(w, binary.LittleEndian, p.Int32s)
	case ParamIntArray:
		return binary.Write(w, binary.LittleEndian, p.Ints)
	case ParamFloatArray:
		return binary.Write(w, binary.LittleEndian, p.Floats)
	default:
		return fmt.Errorf("model: unknown param kind %d", p.Kind)
	}
}
