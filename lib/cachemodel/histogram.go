// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cachemodel

import "fmt"

// Histogram is a reuse-distance histogram: bucket k counts references
// whose reuse distance was exactly k+1. It grows on demand, by one
// element, whenever a cold miss is recorded; a hot hit at distance d
// is recorded in to a bucket that a prior cold miss for some other
// line is guaranteed to have already allocated.
type Histogram []uint64

// grow appends a zero-valued trailing bucket, for a cold miss.
func (h *Histogram) grow() {
	*h = append(*h, 0)
}

// record increments the bucket for reuse distance d.
//
// d must be in [1, len(*h)]; a prior cold miss for some other line is
// what guarantees this bucket already exists. An out-of-range d
// indicates a defect in the surrounding model, not a recoverable
// condition.
func (h *Histogram) record(d uint64) {
	if d < 1 || d > uint64(len(*h)) {
		panic(fmt.Errorf("cachemodel: reuse distance %d out of range for histogram of length %d", d, len(*h)))
	}
	(*h)[d-1]++
}

// merge adds the contents of other into h, extending h if other is
// longer.
func (h *Histogram) merge(other Histogram) {
	if len(other) > len(*h) {
		grown := make(Histogram, len(other))
		copy(grown, *h)
		*h = grown
	}
	for i, v := range other {
		(*h)[i] += v
	}
}

// Cumulative returns the prefix-sum transform of h: the i-th element
// of the result is the total count of references with reuse distance
// <= i+1, which is exactly the hit count of a fully-associative LRU
// cache holding i+1 lines.
func (h Histogram) Cumulative() []uint64 {
	out := make([]uint64, len(h))
	var running uint64
	for i, v := range h {
		running += v
		out[i] = running
	}
	return out
}
