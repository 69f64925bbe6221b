// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eanger/byfl/lib/containers"
)

func TestHoleTreeSingleton(t *testing.T) {
	t.Parallel()
	var tree containers.HoleTree
	got := tree.Distance(5)
	assert.Equal(t, uint64(0), got)
	require.NoError(t, tree.Validate())
	assert.Equal(t, 1, tree.Len())
}

func TestHoleTreeLeftGap(t *testing.T) {
	t.Parallel()
	var tree containers.HoleTree
	tree.Distance(10)
	got := tree.Distance(5)
	assert.Equal(t, uint64(1), got)
	require.NoError(t, tree.Validate())
}

func TestHoleTreeRightGap(t *testing.T) {
	t.Parallel()
	var tree containers.HoleTree
	tree.Distance(5)
	got := tree.Distance(10)
	assert.Equal(t, uint64(0), got)
	require.NoError(t, tree.Validate())
}

func TestHoleTreeMergeLeft(t *testing.T) {
	t.Parallel()
	var tree containers.HoleTree
	tree.Distance(10) // [10,10]
	tree.Distance(5)  // [5,5], [10,10]
	got := tree.Distance(9)
	assert.Equal(t, uint64(1), got) // only the stored [10,10] hole lies above 9
	require.NoError(t, tree.Validate())
	assert.Equal(t, 3, tree.Len()) // three Distance calls, regardless of node coalescing
}

func TestHoleTreeMergeRight(t *testing.T) {
	t.Parallel()
	var tree containers.HoleTree
	tree.Distance(5) // [5,5]
	tree.Distance(9) // [5,5], [9,9]
	got := tree.Distance(6)
	assert.Equal(t, uint64(1), got) // [9,9] lies above 6
	require.NoError(t, tree.Validate())
	assert.Equal(t, 3, tree.Len())
}

func TestHoleTreePanicsOnOverlap(t *testing.T) {
	t.Parallel()
	var tree containers.HoleTree
	tree.Distance(5)
	assert.Panics(t, func() { tree.Distance(5) })
}

// TestHoleTreeAgainstNaive throws a long pseudo-random stream of
// inserts at the tree and cross-checks every return value against an
// O(n) reference implementation: a plain, unsorted slice of
// already-seen hole timestamps.
func TestHoleTreeAgainstNaive(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))

	var tree containers.HoleTree
	seen := make(map[uint64]bool)
	var holes []uint64

	for i := 0; i < 2000; i++ {
		var h uint64
		for {
			h = uint64(rng.Intn(4000))
			if !seen[h] {
				break
			}
		}

		var want uint64
		for _, o := range holes {
			if o > h {
				want++
			}
		}

		got := tree.Distance(h)
		require.Equalf(t, want, got, "iteration %d, hole %d", i, h)
		require.NoError(t, tree.Validate())

		seen[h] = true
		holes = append(holes, h)
	}
}
