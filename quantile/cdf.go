/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package quantile holds the result structure every sketch in this
// module converges to: a sorted table of distinct values with their
// cumulative weight, queried either by value (rank) or by percentile on
// the 0-100 scale.
package quantile

import (
	"errors"
	"math"
	"slices"

	"github.com/apache/streaming-sketches-go/common"
	"github.com/apache/streaming-sketches-go/internal"
)

// ErrEmptyCdf is returned by NewCdf when it is given no items, so a Cdf
// never exists without data.
var ErrEmptyCdf = errors.New("cdf has no data")

// Cdf is an immutable, coalesced cumulative distribution: one entry per
// distinct value, each carrying the total weight of every item at or
// below it.
type Cdf[C comparable] struct {
	values      []C
	cumWeight   []int64
	totalWeight int64
	cmp         common.CompareFn[C]
}

// NewCdf builds a Cdf from parallel items/weights slices (as produced by
// flattening a sketch's retained levels, each item carrying its level's
// implicit weight). cmp must implement a strict less-than order
// consistent with equality on C.
func NewCdf[C comparable](items []C, weights []int64, cmp common.CompareFn[C]) (*Cdf[C], error) {
	if len(items) != len(weights) {
		return nil, errors.New("items and weights must be the same length")
	}
	if len(items) == 0 {
		return nil, ErrEmptyCdf
	}

	type pair struct {
		value  C
		weight int64
	}
	pairs := make([]pair, len(items))
	for i := range items {
		pairs[i] = pair{items[i], weights[i]}
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if cmp(a.value, b.value) {
			return -1
		}
		if cmp(b.value, a.value) {
			return 1
		}
		return 0
	})

	values := make([]C, 0, len(pairs))
	cumWeight := make([]int64, 0, len(pairs))
	var running int64
	for i, p := range pairs {
		running += p.weight
		if i > 0 && values[len(values)-1] == p.value {
			cumWeight[len(cumWeight)-1] = running
			continue
		}
		values = append(values, p.value)
		cumWeight = append(cumWeight, running)
	}

	return &Cdf[C]{values: values, cumWeight: cumWeight, totalWeight: running, cmp: cmp}, nil
}

// GetValue returns the smallest value whose cumulative share of the
// total weight reaches at least the given percentile, on the 0-100
// scale.
func (c *Cdf[C]) GetValue(percentile float64) (C, error) {
	var zero C
	if percentile < 0 || percentile > 100 {
		return zero, errors.New("percentile must be in [0, 100]")
	}
	threshold := int64(math.Ceil(percentile / 100 * float64(c.totalWeight)))
	idx := internal.FindWithInequality(
		c.cumWeight, 0, len(c.cumWeight)-1, threshold,
		internal.InequalityGE, common.Int64CompareFn(false),
	)
	if idx < 0 {
		idx = len(c.values) - 1
	}
	return c.values[idx], nil
}

// GetPercentile returns the cumulative percentile, on the 0-100 scale,
// of the smallest stored value at or above v; a v above every stored
// value reports the top percentile.
func (c *Cdf[C]) GetPercentile(v C) (float64, error) {
	idx := internal.FindWithInequality(c.values, 0, len(c.values)-1, v, internal.InequalityGE, c.cmp)
	if idx < 0 {
		return 100, nil
	}
	return 100 * float64(c.cumWeight[idx]) / float64(c.totalWeight), nil
}

// TotalWeight returns the total weight represented by the Cdf.
func (c *Cdf[C]) TotalWeight() int64 {
	return c.totalWeight
}
