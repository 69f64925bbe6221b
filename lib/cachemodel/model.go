// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package cachemodel is the cache-behavior modeling core of an
// instrumentation runtime: it consumes a stream of memory references
// and produces, on readout, the classical LRU stack-distance histogram
// plus auxiliary counters, in O(log H) amortized time per reference
// (H being the number of currently-unreferenced address intervals).
//
// The package is associativity-oblivious: it models a fully
// associative LRU cache of every size simultaneously. Modeling
// set-associativity, non-LRU replacement policies, or write-back
// effects is out of scope.
package cachemodel

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/eanger/byfl/lib/containers"
)

// CacheLineAddress is the floor of a byte address divided by the
// model's line size. All reuse-distance reasoning happens in this
// unit, not in raw byte addresses.
type CacheLineAddress uint64

// Timestamp counts lines referenced by a single thread, monotonically
// increasing by one per distinct line access (not per byte, and not
// per call to Access -- a single straddling Access may advance it by
// more than one).
type Timestamp uint64

// PerThreadModel owns the cache-behavior state for a single observing
// thread: its interval tree of holes, its map of each line's most
// recent use, the running reuse-distance histogram, and the access
// counters. It is exclusively owned by the thread that created it;
// callers must not share a PerThreadModel across goroutines without
// their own synchronization.
type PerThreadModel struct {
	lineSize uint64

	tree    containers.HoleTree
	lastUse map[CacheLineAddress]Timestamp
	clock   Timestamp

	histogram     Histogram
	accesses      uint64
	splitAccesses uint64
}

// NewPerThreadModel constructs a PerThreadModel for a thread, with the
// given cache line size (in bytes). lineSize must be a nonzero power
// of two; this mirrors the configuration-error contract that a
// nonsensical line size is rejected at construction, not discovered
// later as a corrupted model.
func NewPerThreadModel(lineSize uint64) (*PerThreadModel, error) {
	if lineSize == 0 || bits.OnesCount64(lineSize) != 1 {
		return nil, errors.Errorf("cachemodel: line size must be a nonzero power of two, got %d", lineSize)
	}
	return &PerThreadModel{
		lineSize: lineSize,
		lastUse:  make(map[CacheLineAddress]Timestamp),
	}, nil
}

// Access records one memory reference, spanning numBytes bytes
// starting at baseAddr. A reference whose range straddles more than
// one cache line is decomposed into one line-access per line touched;
// each constituent line access is independently looked up, scored
// against the interval tree, and recorded.
func (m *PerThreadModel) Access(baseAddr, numBytes uint64) {
	first := CacheLineAddress(baseAddr / m.lineSize)
	last := CacheLineAddress((baseAddr + numBytes) / m.lineSize)

	var numLines uint64
	for line := first; line <= last; line++ {
		tau := m.clock + Timestamp(numLines)
		m.touch(line, tau)
		numLines++
	}

	m.accesses += numLines
	if numLines != 1 {
		m.splitAccesses++
	}
	m.clock += Timestamp(numLines)
}

// touch scores and records a single cache-line access at timestamp
// tau, which is this particular line-access's pre-increment position
// in the thread's global access order.
func (m *PerThreadModel) touch(line CacheLineAddress, tau Timestamp) {
	prior, ok := m.lastUse[line]
	if !ok {
		m.histogram.grow()
	} else {
		holes := m.tree.Distance(uint64(prior))
		d := uint64(tau) - uint64(prior) - holes
		if d < 1 {
			panic(fmt.Errorf("cachemodel: computed non-positive reuse distance %d for line %d at timestamp %d (prior use %d)", d, line, tau, prior))
		}
		m.histogram.record(d)
	}
	m.lastUse[line] = tau
}

// Accesses returns the total number of line-granular accesses
// recorded by this thread so far.
func (m *PerThreadModel) Accesses() uint64 {
	return m.accesses
}

// ColdMisses returns the number of distinct cache lines this thread
// has ever touched -- equivalently, the length of its histogram.
func (m *PerThreadModel) ColdMisses() uint64 {
	return uint64(len(m.histogram))
}

// SplitAccesses returns the number of Access calls (not line-accesses)
// whose byte range crossed at least one cache-line boundary.
func (m *PerThreadModel) SplitAccesses() uint64 {
	return m.splitAccesses
}

// Histogram returns this thread's raw reuse-distance histogram:
// element i is the number of references whose reuse distance was
// exactly i+1. The returned slice is owned by the caller.
func (m *PerThreadModel) Histogram() Histogram {
	out := make(Histogram, len(m.histogram))
	copy(out, m.histogram)
	return out
}
