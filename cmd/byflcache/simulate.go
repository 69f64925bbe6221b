// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/eanger/byfl/lib/simulator"
)

// simulatorBackends names the concrete, fixed-capacity cache backends
// --simulate can drive over a trace, alongside (not instead of) the
// associativity-oblivious reuse-distance model. Each is an independent
// cross-check: unlike the core model's single pass over every LRU
// cache size at once, each of these commits to one capacity and one
// eviction policy.
var simulatorBackends = map[string]func(size int) simulator.Backend{
	"arc": func(size int) simulator.Backend {
		return simulator.NewLibraryARC(size)
	},
	"ristretto": func(size int) simulator.Backend {
		return simulator.NewRistretto(size)
	},
	"freecache": func(size int) simulator.Backend {
		return simulator.NewFreeCache(size)
	},
}

func sortedBackendNames() []string {
	names := make([]string, 0, len(simulatorBackends))
	for name := range simulatorBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// traceLines decomposes every trace entry in to the cache-line
// sequence it touches, the same way PerThreadModel.Access does, so
// that a simulator.Backend sees exactly the line-granular access
// stream the core model scores.
func traceLines(entries []traceEntry, lineSize uint64) []uint64 {
	var lines []uint64
	for _, e := range entries {
		first := e.base / lineSize
		last := (e.base + e.bytes) / lineSize
		for line := first; line <= last; line++ {
			lines = append(lines, line)
		}
	}
	return lines
}

// simulate drives each named backend, sized to sizeLines resident
// lines, over entries and returns one simulator.Stats per name.
func simulate(entries []traceEntry, lineSize uint64, names []string, sizeLines int) (map[string]simulator.Stats, error) {
	lines := traceLines(entries, lineSize)
	out := make(map[string]simulator.Stats, len(names))
	for _, name := range names {
		newBackend, ok := simulatorBackends[name]
		if !ok {
			return nil, errors.Errorf("unknown simulator backend %q (want one of %v)", name, sortedBackendNames())
		}
		out[name] = simulator.Run(newBackend(sizeLines), lines)
	}
	return out, nil
}

func printSimulation(out func(format string, args ...interface{}), sizeLines int, stats map[string]simulator.Stats) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	out("simulated fixed-capacity backends at %d lines:\n", sizeLines)
	for _, name := range names {
		s := stats[name]
		out("  %-14s hits=%d misses=%d hit-rate=%.4f\n", name, s.Hits, s.Misses(), s.HitRate())
	}
}
