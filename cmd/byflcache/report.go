// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"io"
)

// report is a snapshot of the four readout functions, gathered once
// the instrumented run has quiesced.
type report struct {
	accesses      uint64
	coldMisses    uint64
	splitAccesses uint64
	hits          []uint64
}

func printReport(w io.Writer, r report) {
	fmt.Fprintf(w, "cache accesses:  %d\n", r.accesses)
	fmt.Fprintf(w, "cold misses:     %d\n", r.coldMisses)
	fmt.Fprintf(w, "split accesses:  %d\n", r.splitAccesses)
	fmt.Fprintln(w, "hit counts by LRU capacity (lines -> cumulative hits):")
	for i, h := range r.hits {
		fmt.Fprintf(w, "  %8d -> %d\n", i+1, h)
	}
}
