// Package rmi implements the two-layer Recursive Model Index trainer: it
// partitions a sorted (key, position) stream through a top model and fits a
// leaf model over each partition, producing a trained RMI plus the
// aggregate error statistics the autotuner ranks configurations by.
package rmi

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rmi-compiler/rmi/dataview"
	"github.com/rmi-compiler/rmi/internal/worklimit"
	"github.com/rmi-compiler/rmi/model"
)

// RMI is a trained two-layer Recursive Model Index: one top model choosing a
// leaf in [0, BranchingFactor), and one leaf model per partition.
type RMI struct {
	Top             model.Model
	Leaves          []model.Model
	BranchingFactor uint64
	Models          string // canonical "top,leaf" kind names

	AvgLog2Error float64
	MaxLog2Error float64
}

// Train fits an RMI: validates top/leaf layering compatibility, trains the
// top model over a scaled view, partitions the sorted data by the top
// model's predictions, trains every non-empty leaf in parallel over its own
// unscaled partition, and computes per-leaf and aggregate error statistics.
func Train(data *dataview.Data, modelSpec string, branchingFactor uint64) (*RMI, error) {
	if data.Len() == 0 {
		return nil, ErrEmptyData
	}
	if branchingFactor < 2 {
		return nil, fmt.Errorf("%w: branching factor must be >= 2, got %d", ErrNumericOverflow, branchingFactor)
	}
	if err := checkMonotonic(data); err != nil {
		return nil, err
	}

	topKind, leafKind, err := parseModelSpec(modelSpec)
	if err != nil {
		return nil, err
	}

	topModel, err := model.New(topKind)
	if err != nil {
		return nil, err
	}
	// leafKind is only used to validate compatibility and to construct a
	// fresh instance per leaf below; probe restriction with a throwaway.
	probe, err := model.New(leafKind)
	if err != nil {
		return nil, err
	}
	if probe.Restriction() == model.MustBeTop || topModel.Restriction() == model.MustBeBottom {
		return nil, fmt.Errorf("%w: top=%s leaf=%s", ErrIncompatibleLayering, topKind, leafKind)
	}

	n := data.Len()
	B := branchingFactor

	// Train the top model over positions scaled so its output range maps
	// into [0, B).
	_, maxPos := data.Get(n - 1)
	scale := 1.0
	if maxPos > 0 {
		scale = float64(B) / maxPos
	}
	scaledView := dataview.NewView(data)
	scaledView.SetScale(scale)
	configureForBranchingFactor(topModel, B)
	if err := topModel.Fit(scaledView); err != nil {
		return nil, fmt.Errorf("%w: top model fit: %v", ErrFitDiverged, err)
	}

	// Partition: assign each index to a clamped leaf in [0, B).
	assigned := make([]int, n)
	for i := 0; i < n; i++ {
		leafIdx := int(topModel.PredictInt(keyInputFor(topModel, data, i)))
		if leafIdx < 0 {
			leafIdx = 0
		}
		if leafIdx >= int(B) {
			leafIdx = int(B) - 1
		}
		assigned[i] = leafIdx
	}

	starts := make([]int, B)
	stops := make([]int, B)
	j := 0
	for i := 0; i < n; i++ {
		for assigned[i] > j {
			stops[j] = i
			j++
			starts[j] = i
		}
	}
	stops[j] = n
	for k := j + 1; k < int(B); k++ {
		starts[k] = n
		stops[k] = n
	}

	unscaledView := dataview.NewView(data)
	leaves := make([]model.Model, B)
	errBounds := make([]uint64, B)

	group, ctx := errgroup.WithContext(context.Background())

	for leaf := uint64(0); leaf < B; leaf++ {
		leaf := leaf
		startJ, stopJ := starts[leaf], stops[leaf]
		group.Go(func() error {
			if err := worklimit.Acquire(ctx); err != nil {
				return err
			}
			defer worklimit.Release()

			leafModel, err := model.New(leafKind)
			if err != nil {
				return err
			}

			if startJ == stopJ {
				// Empty leaf: install a constant model returning start_j.
				if !leafModel.SetConstantModel(uint64(startJ)) {
					_ = leafModel.Fit(unscaledView.Window(0, 0))
				}
				leaves[leaf] = leafModel
				return nil
			}

			window := unscaledView.Window(startJ, stopJ)
			configureForBranchingFactor(leafModel, uint64(stopJ-startJ))
			if err := leafModel.Fit(window); err != nil {
				// A diverged leaf fit substitutes a constant model; only the
				// top model's divergence is a hard training failure.
				constant := uint64(startJ)
				if !leafModel.SetConstantModel(constant) {
					return fmt.Errorf("%w: leaf %d: %v", ErrFitDiverged, leaf, err)
				}
				logrus.Debugf("rmi: leaf %d fit diverged (%v), substituted constant model at %d", leaf, err, constant)
				leaves[leaf] = leafModel
				return nil
			}

			if isDegenerate(data, startJ, stopJ) {
				constant := firstPosition(data, startJ)
				if leafModel.SetConstantModel(constant) {
					logrus.Debugf("rmi: leaf %d collapsed to constant model at %d", leaf, constant)
				}
			}

			errBounds[leaf] = leafError(leafModel, data, startJ, stopJ)
			leaves[leaf] = leafModel
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	for leaf := range errBounds {
		if errBounds[leaf] > 0 {
			leaves[leaf].SetErrorBound(errBounds[leaf])
		}
	}

	avg, max := aggregateError(leaves, assigned, data)

	return &RMI{
		Top:             topModel,
		Leaves:          leaves,
		BranchingFactor: B,
		Models:          modelSpec,
		AvgLog2Error:    avg,
		MaxLog2Error:    max,
	}, nil
}

// parseModelSpec splits a "top,leaf" spec into its two Kind names.
func parseModelSpec(spec string) (top, leaf model.Kind, err error) {
	parts := strings.SplitN(spec, ",", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("rmi: model spec %q must be \"top,leaf\"", spec)
	}
	return model.Kind(strings.TrimSpace(parts[0])), model.Kind(strings.TrimSpace(parts[1])), nil
}

// configureForBranchingFactor sets any branching-factor-derived parameter a
// model kind needs before Fit (radix bit width, histogram bucket count,
// balanced-radix prefix width, normal-distribution output range).
func configureForBranchingFactor(m model.Model, b uint64) {
	if a, ok := m.(model.BranchingBitsAware); ok {
		a.SetBranchingBits(model.BitsForBranchingFactor(b))
	}
	if a, ok := m.(model.BitLengthAware); ok {
		a.SetBitLength(model.BitsForBranchingFactor(b))
	}
	if a, ok := m.(model.BucketCountAware); ok {
		a.SetBuckets(int(b))
	}
	if a, ok := m.(model.RangeAware); ok {
		a.SetRange(float64(b))
	}
}

// keyInputFor builds a prediction Input for index i's key, matching the
// numeric domain m.InputType() expects.
func keyInputFor(m model.Model, data *dataview.Data, i int) model.Input {
	if m.InputType() == model.Int {
		return model.IntInput(data.GetKey(i))
	}
	k, _ := data.Get(i)
	return model.FloatInput(k)
}

// isDegenerate reports whether every position in [start, stop) is equal,
// the signal the trainer uses to collapse a leaf to a constant model.
func isDegenerate(data *dataview.Data, start, stop int) bool {
	if stop-start <= 1 {
		return true
	}
	_, first := data.Get(start)
	for i := start + 1; i < stop; i++ {
		_, p := data.Get(i)
		if p != first {
			return false
		}
	}
	return true
}

func firstPosition(data *dataview.Data, idx int) uint64 {
	_, p := data.Get(idx)
	return floorClampUint(p)
}

func floorClampUint(f float64) uint64 {
	if f < 0 {
		return 0
	}
	return uint64(math.Floor(f))
}

// leafError computes err_j = max over [start, stop) of |predicted - actual|,
// where actual is the entry's (unscaled) position.
func leafError(m model.Model, data *dataview.Data, start, stop int) uint64 {
	var maxErr uint64
	for i := start; i < stop; i++ {
		diff := absDiff(m, data, i)
		if diff > maxErr {
			maxErr = diff
		}
	}
	return maxErr
}

func absDiff(m model.Model, data *dataview.Data, i int) uint64 {
	input := keyInputFor(m, data, i)
	predicted := m.PredictInt(input)
	_, posFloat := data.Get(i)
	actual := floorClampUint(posFloat)
	if predicted > actual {
		return predicted - actual
	}
	return actual - predicted
}

// aggregateError computes (avg_log2, max_log2) over every entry, using
// whichever leaf the partition step assigned it to.
func aggregateError(leaves []model.Model, assigned []int, data *dataview.Data) (avg, max float64) {
	n := len(assigned)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		leaf := leaves[assigned[i]]
		diff := absDiff(leaf, data, i)
		l := math.Log2(float64(diff) + 1)
		sum += l
		if l > max {
			max = l
		}
	}
	return sum / float64(n), max
}

// checkMonotonic verifies keys and positions are both non-decreasing.
func checkMonotonic(data *dataview.Data) error {
	n := data.Len()
	for i := 1; i < n; i++ {
		kPrev, pPrev := data.Get(i - 1)
		k, p := data.Get(i)
		if k < kPrev || p < pPrev {
			return fmt.Errorf("%w: at index %d", ErrNonMonotonicInput, i)
		}
	}
	return nil
}
