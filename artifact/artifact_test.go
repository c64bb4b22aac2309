package artifact

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmi-compiler/rmi/internal/testutil"
	"github.com/rmi-compiler/rmi/model"
	"github.com/rmi-compiler/rmi/rmi"
)

func trainedFixture(t *testing.T) *rmi.RMI {
	t.Helper()
	data := testutil.IdentityData(500)
	got, err := rmi.Train(data, "linear,linear", 8)
	require.NoError(t, err)
	return got
}

// Invariant 6: parameter blob round-trip reproduces the original values
// bit-for-bit.
func TestWriteParams_RoundTrip(t *testing.T) {
	r := trainedFixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteParams(r, &buf))

	size := Size(r, true)
	assert.Equal(t, int(size), buf.Len())

	var branchingFactor, leafCount uint64
	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &branchingFactor))
	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &leafCount))
	assert.Equal(t, r.BranchingFactor, branchingFactor)
	assert.Equal(t, uint64(len(r.Leaves)), leafCount)

	for _, p := range r.Top.Params() {
		assertParamRoundTrips(t, &buf, p)
	}
	for _, leaf := range r.Leaves {
		for _, p := range leaf.Params() {
			assertParamRoundTrips(t, &buf, p)
		}
		if leaf.NeedsBoundsCheck() {
			var got uint64
			require.NoError(t, binary.Read(&buf, binary.LittleEndian, &got))
			want, _ := leaf.ErrorBound()
			assert.Equal(t, want, got)
		}
	}
}

// assertParamRoundTrips reads p's serialized bytes back out of buf and
// checks they reproduce p's original value bit-for-bit.
func assertParamRoundTrips(t *testing.T, buf *bytes.Buffer, p model.Param) {
	t.Helper()
	switch p.Kind {
	case model.ParamInt:
		var got uint64
		require.NoError(t, binary.Read(buf, binary.LittleEndian, &got))
		assert.Equal(t, p.IntVal, got)
	case model.ParamFloat:
		var got float64
		require.NoError(t, binary.Read(buf, binary.LittleEndian, &got))
		assert.Equal(t, math.Float64bits(p.FloatVal), math.Float64bits(got))
	case model.ParamShortArray:
		got := make([]uint16, len(p.Shorts))
		require.NoError(t, binary.Read(buf, binary.LittleEndian, &got))
		assert.Equal(t, p.Shorts, got)
	case model.ParamInt32Array:
		got := make([]uint32, len(p.Int32s))
		require.NoError(t, binary.Read(buf, binary.LittleEndian, &got))
		assert.Equal(t, p.Int32s, got)
	case model.ParamIntArray:
		got := make([]uint64, len(p.Ints))
		require.NoError(t, binary.Read(buf, binary.LittleEndian, &got))
		assert.Equal(t, p.Ints, got)
	case model.ParamFloatArray:
		got := make([]float64, len(p.Floats))
		require.NoError(t, binary.Read(buf, binary.LittleEndian, &got))
		assert.Equal(t, p.Floats, got)
	}
}

func TestSize_HeaderToggle(t *testing.T) {
	r := trainedFixture(t)
	withHeader := Size(r, true)
	withoutHeader := Size(r, false)
	assert.Equal(t, uint64(headerSize), withHeader-withoutHeader)
}

func TestFromTrained_PopulatesStatistics(t *testing.T) {
	r := trainedFixture(t)
	stats := FromTrained(r)
	assert.Equal(t, r.Models, stats.Models)
	assert.Equal(t, r.BranchingFactor, stats.BranchingFactor)
	assert.Equal(t, r.MaxLog2Error, stats.MaxLog2Error)
	assert.True(t, stats.Size > 0)
}

// Scenario E: Pareto dominance.
func TestDominatedBy_ScenarioE(t *testing.T) {
	worse := RMIStatistics{Size: 100, AverageLog2Error: 0.5}
	better := RMIStatistics{Size: 80, AverageLog2Error: 0.4}
	assert.True(t, worse.DominatedBy(better))
	assert.False(t, better.DominatedBy(worse))
}

func TestToGridSpec(t *testing.T) {
	stats := RMIStatistics{Models: "linear,linear", BranchingFactor: 8, Size: 128, AverageLog2Error: 1.5}
	spec := stats.ToGridSpec("ns")
	assert.Equal(t, "linear,linear", spec.Layers)
	assert.Equal(t, "ns", spec.Namespace)
	assert.True(t, spec.Binary)
}

func TestDisplayTable_RendersHeaderAndRows(t *testing.T) {
	items := []RMIStatistics{
		{Models: "linear,linear", BranchingFactor: 8, AverageLog2Error: 0.1, MaxLog2Error: 0.2, Size: 64},
	}
	var buf bytes.Buffer
	require.NoError(t, DisplayTable(&buf, items))
	out := buf.String()
	assert.True(t, strings.Contains(out, "Models"))
	assert.True(t, strings.Contains(out, "linear,linear"))
}
