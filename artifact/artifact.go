// Package artifact assembles a trained RMI into the serialized form a
// runtime lookup routine consumes: a size computation, a little-endian
// parameter blob, the union of required standard functions, and the summary
// statistics the autotuner ranks configurations by.
package artifact

import (
	"encoding/binary"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rmi-compiler/rmi/model"
	"github.com/rmi-compiler/rmi/rmi"
)

// headerSize is the fixed-width blob header (branching factor, leaf count)
// written ahead of the top model's parameters.
const headerSize = 16

// RMIStatistics summarizes one trained RMI for ranking and reporting: the
// model spec and branching factor that produced it, its error statistics,
// and its serialized size.
type RMIStatistics struct {
	Models           string
	BranchingFactor  uint64
	AverageLog2Error float64
	MaxLog2Error     float64
	Size             uint64
}

// FromTrained captures an RMIStatistics snapshot of a trained RMI, including
// its header-inclusive serialized size.
func FromTrained(r *rmi.RMI) RMIStatistics {
	return RMIStatistics{
		Models:           r.Models,
		BranchingFactor:  r.BranchingFactor,
		AverageLog2Error: r.AvgLog2Error,
		MaxLog2Error:     r.MaxLog2Error,
		Size:             Size(r, true),
	}
}

// HasConfig reports whether this result matches the given (models,
// branching factor) configuration, used by the autotuner to skip
// re-measuring a config already covered in an earlier phase.
func (s RMIStatistics) HasConfig(models string, branchingFactor uint64) bool {
	return s.Models == models && s.BranchingFactor == branchingFactor
}

// DominatedBy reports whether other dominates s on the (size,
// average-log2-error) Pareto frontier: other is at least as good on both
// axes and strictly better on at least one.
func (s RMIStatistics) DominatedBy(other RMIStatistics) bool {
	if s.Size < other.Size {
		return false
	}
	if s.AverageLog2Error < other.AverageLog2Error {
		return false
	}
	if s.Size == other.Size && s.AverageLog2Error <= other.AverageLog2Error {
		return false
	}
	if s.Size <= other.Size && s.AverageLog2Error == other.AverageLog2Error {
		return false
	}
	return true
}

// Size computes rmi_size: the sum of every top and leaf model parameter's
// serialized width, plus the fixed header (if includeHeader) and one extra
// uint64 per leaf needing a bounds check.
func Size(r *rmi.RMI, includeHeader bool) uint64 {
	var total uint64
	if includeHeader {
		total += headerSize
	}
	total += paramsSize(r.Top.Params())
	for _, leaf := range r.Leaves {
		total += paramsSize(leaf.Params())
		if leaf.NeedsBoundsCheck() {
			total += 8
		}
	}
	return total
}

func paramsSize(params []model.Param) uint64 {
	var n uint64
	for _, p := range params {
		n += uint64(p.Size())
	}
	return n
}

// StandardFunctions returns the union of required helper symbols across the
// top model and every leaf.
func StandardFunctions(r *rmi.RMI) model.StdFunctionSet {
	out := r.Top.StandardFunctions()
	for _, leaf := range r.Leaves {
		out = out.Union(leaf.StandardFunctions())
	}
	return out
}

// WriteParams emits the parameter blob in little-endian order: header,
// top-model params in declaration order, then for each leaf its params in
// declaration order followed (if bounds checks are enabled) by its err_j as
// a little-endian uint64.
func WriteParams(r *rmi.RMI, w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(r.BranchingFactor)); err != nil {
		return fmt.Errorf("artifact: write header branching factor: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(r.Leaves))); err != nil {
		return fmt.Errorf("artifact: write header leaf count: %w", err)
	}

	if err := writeParamList(w, r.Top.Params()); err != nil {
		return fmt.Errorf("artifact: write top params: %w", err)
	}

	for j, leaf := range r.Leaves {
		if err := writeParamList(w, leaf.Params()); err != nil {
			return fmt.Errorf("artifact: write leaf %d params: %w", j, err)
		}
		if leaf.NeedsBoundsCheck() {
			bound, _ := leaf.ErrorBound()
			if err := binary.Write(w, binary.LittleEndian, bound); err != nil {
				return fmt.Errorf("artifact: write leaf %d error bound: %w", j, err)
			}
		}
	}
	return nil
}

func writeParamList(w io.Writer, params []model.Param) error {
	for _, p := range params {
		if err := p.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// GridSpec is the JSON-like configuration record a downstream lookup-table
// codegen step consumes, mirroring the original tuner's grid spec object.
type GridSpec struct {
	Layers           string  `json:"layers"`
	BranchingFactor  uint64  `json:"branching factor"`
	Namespace        string  `json:"namespace"`
	Size             uint64  `json:"size"`
	AverageLog2Error float64 `json:"average log2 error"`
	Binary           bool    `json:"binary"`
}

// ToGridSpec projects s into a GridSpec under the given namespace.
func (s RMIStatistics) ToGridSpec(namespace string) GridSpec {
	return GridSpec{
		Layers:           s.Models,
		BranchingFactor:  s.BranchingFactor,
		Namespace:        namespace,
		Size:             s.Size,
		AverageLog2Error: s.AverageLog2Error,
		Binary:           true,
	}
}

// DisplayTable renders a tab-aligned summary table of results, matching the
// columns of the original tuner's Models/Branch/AvgLg2/MaxLg2/Size report.
func DisplayTable(w io.Writer, items []RMIStatistics) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "Models\tBranch\tAvgLg2\tMaxLg2\tSize (b)"); err != nil {
		return err
	}
	for _, it := range items {
		_, err := fmt.Fprintf(tw, "%s\t%d\t%.5f\t%.5f\t%d\n",
			it.Models, it.BranchingFactor, it.AverageLog2Error, it.MaxLog2Error, it.Size)
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}
