// Package autotune implements the two-phase, Pareto-driven autotuner: it
// searches the (top kind, leaf kind, branching factor) configuration space,
// trains an RMI per candidate, and narrows the result to a small
// accuracy/size-efficient frontier.
package autotune

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rmi-compiler/rmi/artifact"
	"github.com/rmi-compiler/rmi/dataview"
	"github.com/rmi-compiler/rmi/model"
	"github.com/rmi-compiler/rmi/rmi"
)

// TopOnlyKinds may only be used as a top model.
var TopOnlyKinds = []model.Kind{model.KindRadix, model.KindRadix18, model.KindRadix22, model.KindRobustLinear}

// AnywhereKinds may be used as either a top or a leaf model.
var AnywhereKinds = []model.Kind{model.KindLinear, model.KindCubicSpline, model.KindLinearSpline}

type config struct {
	models          string
	branchingFactor uint64
}

// BranchingFactors returns the full configuration-space branching factors,
// 2^6 through 2^24 inclusive.
func BranchingFactors() []uint64 {
	out := make([]uint64, 0, 19)
	for i := uint(6); i <= 24; i++ {
		out = append(out, uint64(1)<<i)
	}
	return out
}

// ProgressSink receives progress notifications during a search so the core
// stays free of a logging/progress dependency; cmd/ supplies a concrete
// implementation.
type ProgressSink interface {
	Begin(total int)
	Step()
	Done()
}

// NoopProgressSink discards all progress notifications.
type NoopProgressSink struct{}

func (NoopProgressSink) Begin(int) {}
func (NoopProgressSink) Step()     {}
func (NoopProgressSink) Done()     {}

// FindParetoEfficientConfigs runs the two-phase search and returns the
// narrowed, accuracy-sorted Pareto frontier of at most restrict entries.
func FindParetoEfficientConfigs(data *dataview.Data, restrict int, sink ProgressSink) ([]artifact.RMIStatistics, error) {
	if sink == nil {
		sink = NoopProgressSink{}
	}

	phase1Configs := firstPhaseConfigs()
	phase1Results, err := measureRMIs(data, phase1Configs, sink)
	if err != nil {
		return nil, fmt.Errorf("autotune: phase 1: %w", err)
	}

	phase2Configs := secondPhaseConfigs(phase1Results)
	phase2Results, err := measureRMIs(data, phase2Configs, sink)
	if err != nil {
		return nil, fmt.Errorf("autotune: phase 2: %w", err)
	}

	all := append(phase1Results, phase2Results...)
	front := ParetoFront(all)
	front = NarrowFront(front, restrict)

	sort.Slice(front, func(i, j int) bool {
		return front[i].AverageLog2Error < front[j].AverageLog2Error
	})
	return front, nil
}

// firstPhaseConfigs enumerates every (top, leaf, B) over the sparse
// branching-factor grid (every 5th power of two, starting at 2^6).
func firstPhaseConfigs() []config {
	allTop := append(append([]model.Kind{}, TopOnlyKinds...), AnywhereKinds...)
	bfs := BranchingFactors()

	var out []config
	for _, top := range allTop {
		for _, leaf := range AnywhereKinds {
			for i := 0; i < len(bfs); i += 5 {
				out = append(out, config{models: modelSpec(top, leaf), branchingFactor: bfs[i]})
			}
		}
	}
	return out
}

// secondPhaseConfigs trains the full branching-factor range for every
// (top, leaf) pair that reached the phase-1 Pareto front, skipping
// configurations phase 1 already measured.
func secondPhaseConfigs(phase1 []artifact.RMIStatistics) []config {
	front := ParetoFront(phase1)
	qualifying := map[string]struct{}{}
	for _, r := range front {
		qualifying[r.Models] = struct{}{}
	}

	// Deterministic iteration order: sort the qualifying model specs.
	specs := make([]string, 0, len(qualifying))
	for m := range qualifying {
		specs = append(specs, m)
	}
	sort.Strings(specs)

	logrus.Debugf("autotune: %d qualifying model specs for phase 2", len(specs))

	var out []config
	for _, spec := range specs {
		for _, bf := range BranchingFactors() {
			if hasConfig(phase1, spec, bf) {
				continue
			}
			out = append(out, config{models: spec, branchingFactor: bf})
		}
	}
	return out
}

func hasConfig(results []artifact.RMIStatistics, models string, branchingFactor uint64) bool {
	for _, r := range results {
		if r.HasConfig(models, branchingFactor) {
			return true
		}
	}
	return false
}

func modelSpec(top, leaf model.Kind) string {
	return fmt.Sprintf("%s,%s", top, leaf)
}

// measureRMIs trains every config concurrently; the first training failure
// aborts the whole batch. It does not itself cap concurrency at GOMAXPROCS:
// each config's training fans out into its own per-leaf fits, so gating CPU
// use here too would let the two fan-outs multiply into GOMAXPROCS^2
// runnable goroutines. Instead every leaf fit (see rmi.Train) draws from the
// single process-wide worklimit semaphore, which is what actually bounds
// concurrent CPU use regardless of how many configs are in flight.
func measureRMIs(data *dataview.Data, configs []config, sink ProgressSink) ([]artifact.RMIStatistics, error) {
	results := make([]artifact.RMIStatistics, len(configs))

	sink.Begin(len(configs))
	defer sink.Done()

	group, _ := errgroup.WithContext(context.Background())

	for i, cfg := range configs {
		i, cfg := i, cfg
		group.Go(func() error {
			trained, err := rmi.Train(data, cfg.models, cfg.branchingFactor)
			if err != nil {
				return fmt.Errorf("config %s@%d: %w", cfg.models, cfg.branchingFactor, err)
			}
			results[i] = artifact.FromTrained(trained)
			sink.Step()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParetoFront returns the subset of results not dominated by any other
// result in the set.
func ParetoFront(results []artifact.RMIStatistics) []artifact.RMIStatistics {
	var front []artifact.RMIStatistics
	for _, r := range results {
		dominated := false
		for _, other := range results {
			if r.DominatedBy(other) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, r)
		}
	}
	return front
}

// NarrowFront reduces results to at most desiredSize entries: the
// smallest-size entry is kept as a fixed anchor, and the rest are thinned by
// repeatedly removing the less-accurate of the two entries whose successive
// size ratio is smallest, until desiredSize-1 non-anchor entries remain.
func NarrowFront(results []artifact.RMIStatistics, desiredSize int) []artifact.RMIStatistics {
	if desiredSize <= 0 {
		return nil
	}
	if len(results) <= desiredSize {
		return append([]artifact.RMIStatistics{}, results...)
	}

	tmp := append([]artifact.RMIStatistics{}, results...)
	sort.Slice(tmp, func(i, j int) bool { return tmp[i].Size < tmp[j].Size })

	anchor := tmp[0]
	tmp = tmp[1:]

	if desiredSize == 1 {
		return []artifact.RMIStatistics{anchor}
	}

	for len(tmp) > desiredSize-1 {
		bestIdx := 0
		bestRatio := ratio(tmp[0], tmp[1])
		for i := 1; i < len(tmp)-1; i++ {
			r := ratio(tmp[i], tmp[i+1])
			if r < bestRatio {
				bestRatio = r
				bestIdx = i
			}
		}
		// Treat the comparison as decisive: remove the worse-accuracy of
		// the two size-adjacent entries, regardless of which side it's on.
		if tmp[bestIdx].AverageLog2Error > tmp[bestIdx+1].AverageLog2Error {
			tmp = append(tmp[:bestIdx], tmp[bestIdx+1:]...)
		} else {
			tmp = append(tmp[:bestIdx+1], tmp[bestIdx+2:]...)
		}
	}

	out := make([]artifact.RMIStatistics, 0, desiredSize)
	out = append(out, anchor)
	out = append(out, tmp...)
	return out
}

func ratio(a, b artifact.RMIStatistics) float64 {
	if a.Size == 0 {
		return 0
	}
	return float64(b.Size) / float64(a.Size)
}
