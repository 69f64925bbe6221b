// Copyright (C) 2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cachemodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eanger/byfl/lib/cachemodel"
)

// TestMergeThenSumEqualsSumThenMerge covers invariant 6: merging
// histograms then prefix-summing yields the same elementwise result
// as prefix-summing each first and then elementwise-summing the
// cumulative vectors, a shorter cumulative vector carrying its last
// value forward (a larger cache never loses hits).
func TestMergeThenSumEqualsSumThenMerge(t *testing.T) {
	t.Parallel()

	a := cachemodel.Histogram{3, 1, 0, 2}
	b := cachemodel.Histogram{0, 4, 1}

	viaMerge := mergeHistograms(a, b).Cumulative()
	viaSum := sumVectors(a.Cumulative(), b.Cumulative())

	assert.Equal(t, viaSum, viaMerge)
}

func mergeHistograms(hs ...cachemodel.Histogram) cachemodel.Histogram {
	var maxLen int
	for _, h := range hs {
		if len(h) > maxLen {
			maxLen = len(h)
		}
	}
	out := make(cachemodel.Histogram, maxLen)
	for _, h := range hs {
		for i, v := range h {
			out[i] += v
		}
	}
	return out
}

func sumVectors(vs ...[]uint64) []uint64 {
	var maxLen int
	for _, v := range vs {
		if len(v) > maxLen {
			maxLen = len(v)
		}
	}
	out := make([]uint64, maxLen)
	for _, v := range vs {
		for i := range out {
			switch {
			case i < len(v):
				out[i] += v[i]
			case len(v) > 0:
				out[i] += v[len(v)-1]
			}
		}
	}
	return out
}

func TestCumulativeEmpty(t *testing.T) {
	t.Parallel()
	var h cachemodel.Histogram
	assert.Empty(t, h.Cumulative())
}
