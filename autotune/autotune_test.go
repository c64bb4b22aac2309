package autotune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmi-compiler/rmi/artifact"
	"github.com/rmi-compiler/rmi/internal/testutil"
)

// Invariant 4: pareto_front is idempotent.
func TestParetoFront_Idempotent(t *testing.T) {
	results := []artifact.RMIStatistics{
		{Models: "a", Size: 100, AverageLog2Error: 0.5},
		{Models: "b", Size: 80, AverageLog2Error: 0.4},
		{Models: "c", Size: 200, AverageLog2Error: 0.6},
		{Models: "d", Size: 50, AverageLog2Error: 1.0},
	}
	front := ParetoFront(results)
	front2 := ParetoFront(front)
	assert.ElementsMatch(t, front, front2)
}

// Scenario E: Pareto dominance.
func TestParetoFront_ScenarioE(t *testing.T) {
	results := []artifact.RMIStatistics{
		{Models: "worse", Size: 100, AverageLog2Error: 0.5},
		{Models: "better", Size: 80, AverageLog2Error: 0.4},
	}
	front := ParetoFront(results)
	require.Len(t, front, 1)
	assert.Equal(t, "better", front[0].Models)
}

// Invariant 5 + Scenario F: narrow_front keeps <= k entries, always
// including the argmin-size element.
func TestNarrowFront_ScenarioF(t *testing.T) {
	results := []artifact.RMIStatistics{
		{Models: "s10", Size: 10, AverageLog2Error: 5.0},
		{Models: "s20", Size: 20, AverageLog2Error: 4.0},
		{Models: "s40", Size: 40, AverageLog2Error: 3.0},
		{Models: "s80", Size: 80, AverageLog2Error: 2.0},
		{Models: "s160", Size: 160, AverageLog2Error: 1.0},
	}
	narrowed := NarrowFront(results, 3)
	assert.LessOrEqual(t, len(narrowed), 3)

	var sawAnchor bool
	for _, r := range narrowed {
		if r.Models == "s10" {
			sawAnchor = true
		}
	}
	assert.True(t, sawAnchor)
}

func TestNarrowFront_UnderLimitReturnsAll(t *testing.T) {
	results := []artifact.RMIStatistics{
		{Models: "a", Size: 10, AverageLog2Error: 1.0},
		{Models: "b", Size: 20, AverageLog2Error: 0.5},
	}
	narrowed := NarrowFront(results, 5)
	assert.Len(t, narrowed, 2)
}

func TestNarrowFront_RestrictToOneReturnsAnchor(t *testing.T) {
	results := []artifact.RMIStatistics{
		{Models: "s10", Size: 10, AverageLog2Error: 5.0},
		{Models: "s20", Size: 20, AverageLog2Error: 4.0},
		{Models: "s40", Size: 40, AverageLog2Error: 3.0},
	}
	narrowed := NarrowFront(results, 1)
	require.Len(t, narrowed, 1)
	assert.Equal(t, "s10", narrowed[0].Models)
}

func TestBranchingFactors_SpansConfigurationSpace(t *testing.T) {
	bfs := BranchingFactors()
	require.Len(t, bfs, 19)
	assert.Equal(t, uint64(1<<6), bfs[0])
	assert.Equal(t, uint64(1<<24), bfs[len(bfs)-1])
}

func TestFindParetoEfficientConfigs_Identity(t *testing.T) {
	data := testutil.IdentityData(256)
	got, err := FindParetoEfficientConfigs(data, 4, NoopProgressSink{})
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 4)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].AverageLog2Error, got[i].AverageLog2Error)
	}
}
