// Package testutil provides shared test fixtures for the RMI packages: the
// synthetic (key, position) datasets the trainer/artifact/autotune test
// suites exercise instead of hand-writing the same slice literals in every
// package.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rmi-compiler/rmi/dataview"
)

// IdentityData builds an IntInt dataset where position equals key for
// 0 <= i < n, the trivial RMI fixture.
func IdentityData(n int) *dataview.Data {
	pairs := make([]dataview.IntIntPair, n)
	for i := 0; i < n; i++ {
		pairs[i] = dataview.IntIntPair{Key: uint64(i), Pos: uint64(i)}
	}
	return dataview.NewIntInt(pairs)
}

// UniformSpreadData builds an IntInt dataset with n keys spaced evenly over
// [0, domain), positions 0..n-1 — the fixture radix-style top models expect.
func UniformSpreadData(n int, domain uint64) *dataview.Data {
	pairs := make([]dataview.IntIntPair, n)
	for i := 0; i < n; i++ {
		pairs[i] = dataview.IntIntPair{Key: uint64(i) * domain / uint64(n), Pos: uint64(i)}
	}
	return dataview.NewIntInt(pairs)
}

// RandomSortedData builds an IntInt dataset of n entries with strictly
// increasing pseudo-random keys (seeded for determinism) and positions
// 0..n-1, for tests that want non-uniform but still monotonic input.
func RandomSortedData(t *testing.T, n int, seed int64) *dataview.Data {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	pairs := make([]dataview.IntIntPair, n)
	key := uint64(0)
	for i := 0; i < n; i++ {
		key += uint64(r.Intn(10) + 1)
		pairs[i] = dataview.IntIntPair{Key: key, Pos: uint64(i)}
	}
	return dataview.NewIntInt(pairs)
}

// AssertFloat64Equal compares two float64 values with relative tolerance,
// treating both-zero as trivially equal.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
