// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cachemodel_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eanger/byfl/lib/cachemodel"
)

// TestPackageAPISingleThread exercises the six package-level symbols
// the way a single-threaded instrumented program would: Initialize
// once, then a sequence of TouchCache calls, then readouts. It does
// not run in parallel with other tests, since it mutates global
// state.
func TestPackageAPISingleThread(t *testing.T) {
	cachemodel.Initialize(64)

	cachemodel.TouchCache(0, 8)
	cachemodel.TouchCache(64, 8)
	cachemodel.TouchCache(0, 8)
	cachemodel.TouchCache(64, 8)

	assert.Equal(t, uint64(4), cachemodel.CacheAccesses())
	assert.Equal(t, uint64(2), cachemodel.ColdMisses())
	assert.Equal(t, uint64(0), cachemodel.SplitAccesses())
	assert.Equal(t, []uint64{0, 2}, cachemodel.CacheHits())
}

// TestPackageAPIMergesAcrossThreads registers several goroutines, each
// touching its own disjoint set of addresses, and checks that the
// readout functions sum across all of them.
func TestPackageAPIMergesAcrossThreads(t *testing.T) {
	cachemodel.Initialize(64)

	const numGoroutines = 8
	var wg sync.WaitGroup
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			base := uint64(g) * 4096
			cachemodel.TouchCache(base, 8)
			cachemodel.TouchCache(base+64, 8)
			cachemodel.TouchCache(base, 8)
		}(g)
	}
	wg.Wait()

	assert.Equal(t, uint64(3*numGoroutines), cachemodel.CacheAccesses())
	assert.Equal(t, uint64(2*numGoroutines), cachemodel.ColdMisses())
	assert.Equal(t, uint64(0), cachemodel.SplitAccesses())

	hits := cachemodel.CacheHits()
	if assert.NotEmpty(t, hits) {
		assert.Equal(t, uint64(numGoroutines), hits[len(hits)-1])
	}
}

// TestUnusedCoreReadsZero covers the never-used-core contract from the
// error handling design: readouts on a freshly initialized core with
// no touches return zeros and an empty vector.
func TestUnusedCoreReadsZero(t *testing.T) {
	cachemodel.Initialize(64)

	assert.Equal(t, uint64(0), cachemodel.CacheAccesses())
	assert.Equal(t, uint64(0), cachemodel.ColdMisses())
	assert.Equal(t, uint64(0), cachemodel.SplitAccesses())
	assert.Empty(t, cachemodel.CacheHits())
}
