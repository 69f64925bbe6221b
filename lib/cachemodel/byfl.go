// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cachemodel

import (
	"sync/atomic"
)

// DefaultLineSize is the cache line size of the registry created when
// TouchCache or a readout function runs before any call to
// Initialize; it is the typical cache-line size of current machines.
const DefaultLineSize = 64

var globalRegistry atomic.Pointer[ThreadRegistry]

// Initialize prepares the global ThreadRegistry with the given line
// size. It may be called before any threads exist. It is not
// idempotent: calling it again replaces the registry, and any models
// registered under the previous one are discarded, as if the process
// had restarted.
//
// This is the Go-idiomatic analogue of the instrumentation runtime's
// initialize_cache entry point.
func Initialize(lineSize uint64) {
	globalRegistry.Store(NewThreadRegistry(lineSize))
}

func registry() *ThreadRegistry {
	r := globalRegistry.Load()
	if r == nil {
		r = NewThreadRegistry(DefaultLineSize)
		if !globalRegistry.CompareAndSwap(nil, r) {
			r = globalRegistry.Load()
		}
	}
	return r
}

// TouchCache records one memory reference on the calling goroutine. It
// is the Go-idiomatic analogue of bf_touch_cache, and is safe to call
// from any goroutine at any time after (or without) a call to
// Initialize.
func TouchCache(baseAddr, numBytes uint64) {
	m, err := registry().ModelForCurrentGoroutine()
	if err != nil {
		panic(err)
	}
	m.Access(baseAddr, numBytes)
}

// CacheAccesses returns the total line-granular access count summed
// across every registered thread. Callers must ensure all
// instrumented goroutines have quiesced before calling any readout
// function.
func CacheAccesses() uint64 {
	var total uint64
	for _, m := range registry().Models() {
		total += m.Accesses()
	}
	return total
}

// ColdMisses returns, summed across every registered thread, the
// number of distinct cache lines each thread touched; a line touched
// by two threads counts twice.
func ColdMisses() uint64 {
	var total uint64
	for _, m := range registry().Models() {
		total += m.ColdMisses()
	}
	return total
}

// SplitAccesses returns the total number of original references that
// crossed a cache-line boundary, summed across every registered
// thread.
func SplitAccesses() uint64 {
	var total uint64
	for _, m := range registry().Models() {
		total += m.SplitAccesses()
	}
	return total
}

// CacheHits merges every registered thread's reuse-distance histogram
// and returns its prefix-sum transform: element i is the hit count
// achievable by a fully-associative LRU cache of i+1 cache lines,
// summed over every thread's own trace (each thread as if it had a
// private cache of that size).
func CacheHits() []uint64 {
	var merged Histogram
	for _, m := range registry().Models() {
		merged.merge(m.Histogram())
	}
	return merged.Cumulative()
}
