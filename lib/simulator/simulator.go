// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package simulator is a parallel, independent path alongside the
// interval-tree reuse-distance model: rather than characterizing the
// entire LRU cache-size spectrum from a single pass, it replays a
// trace against one or more concrete, fixed-capacity cache backends
// and reports their hit rates directly. Its backends model
// associativity, replacement policies other than LRU, and
// implementation-specific eviction quirks that the core's
// associativity-oblivious model deliberately ignores.
package simulator

// Backend is a fixed-capacity cache that can be driven by a trace of
// cache-line accesses. Access reports whether line was already
// resident (a hit). On a miss, Access offers line to the cache, which
// may evict another line to make room; a backend with an admission
// policy (Ristretto) may instead decline to keep line.
type Backend interface {
	Access(line uint64) bool
}

// Stats accumulates hit/miss counts while driving a Backend over a
// trace. It is not itself a Backend; Run wires one up around any
// Backend implementation.
type Stats struct {
	Accesses uint64
	Hits     uint64
}

// Misses returns the number of accesses that were not hits.
func (s Stats) Misses() uint64 {
	return s.Accesses - s.Hits
}

// HitRate returns Hits/Accesses, or 0 if there have been no accesses.
func (s Stats) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses)
}

// Run drives backend with every line in lines, in order, and returns
// the resulting hit/miss statistics.
func Run(backend Backend, lines []uint64) Stats {
	var s Stats
	for _, line := range lines {
		s.Accesses++
		if backend.Access(line) {
			s.Hits++
		}
	}
	return s
}
