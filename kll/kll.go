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

// Package kll implements the plain compactor-based quantile sketch: a
// growing stack of levels, each with its own capacity, that compacts by
// sorting and promoting every other item (coin-flip offset) to the next
// level once full. It has no bottom-level sampler; sampledkll builds one
// on top of this same compaction scheme.
package kll

import (
	"slices"

	"github.com/apache/streaming-sketches-go/common"
	"github.com/apache/streaming-sketches-go/entropy"
	"github.com/apache/streaming-sketches-go/quantile"
)

// Sketch is a plain (non-sampled) compactor-based quantile sketch over
// keys of type C, ordered by cmp.
type Sketch[C comparable] struct {
	capacity   uint32
	data       [][]C
	sizeLimits []uint32
	size       uint64
	cmp        common.CompareFn[C]
	src        entropy.Source
}

// New returns an empty sketch sized from capacity: the top level holds up
// to a third of it and each level below two thirds of the one above.
// src supplies the coin flip each compaction consumes; it is owned by
// the caller and must outlive the sketch.
func New[C comparable](capacity uint32, cmp common.CompareFn[C], src entropy.Source) *Sketch[C] {
	return &Sketch[C]{
		capacity:   capacity,
		data:       [][]C{{}},
		sizeLimits: []uint32{uint32(common.RoundEvenAtLeast4(int(capacity / 3)))},
		cmp:        cmp,
		src:        src,
	}
}

// Size returns the total number of items ever inserted (pre-compaction
// count, not the retained item count).
func (s *Sketch[C]) Size() uint64 {
	return s.size
}

// Insert adds key at the given level, recursively compacting and
// promoting into higher levels as needed.
func (s *Sketch[C]) Insert(key C, level int) error {
	s.size++
	return s.insert(key, level)
}

// insert is Insert without the stream-length accounting, shared with the
// compaction promotions and Merge, which are re-homing keys the sketch
// has already counted.
func (s *Sketch[C]) insert(key C, level int) error {
	if level >= len(s.data) {
		s.data = append(s.data, nil)
		// The new limit goes at the front: every existing level shifts up
		// to the next larger limit, so the top level always has the largest
		// and level 0 gets two thirds of the previous smallest, floored at
		// the minimum even capacity a compaction step needs.
		newLimit := common.RoundEvenAtLeast4(int(s.sizeLimits[0]) * 2 / 3)
		s.sizeLimits = append([]uint32{uint32(newLimit)}, s.sizeLimits...)
	}

	if uint32(len(s.data[level])) >= s.sizeLimits[level] {
		if err := s.compact(level); err != nil {
			return err
		}
	}

	s.data[level] = append(s.data[level], key)
	return nil
}

func (s *Sketch[C]) compact(level int) error {
	items := s.data[level]
	// Always sort on overflow, even for a one- or two-item level: some
	// drafts of this compaction skip the sort below three items, but that
	// breaks the unbiased-rank invariant the coin-flip promotion relies on.
	slices.SortFunc(items, func(a, b C) int {
		switch {
		case s.cmp(a, b):
			return -1
		case s.cmp(b, a):
			return 1
		default:
			return 0
		}
	})

	bit, err := s.src.NextBit()
	if err != nil {
		return err
	}
	start := 0
	if bit {
		start = 1
	}

	promoted := make([]C, 0, len(items)/2+1)
	for i := start; i < len(items); i += 2 {
		promoted = append(promoted, items[i])
	}
	s.data[level] = items[:0]

	for _, v := range promoted {
		if err := s.insert(v, level+1); err != nil {
			return err
		}
	}
	return nil
}

// Cdf flattens every level into a weighted value set (each level's items
// carry weight 2^level) and returns the resulting cumulative
// distribution.
func (s *Sketch[C]) Cdf() (*quantile.Cdf[C], error) {
	var values []C
	var weights []int64
	weight := int64(1)
	for _, level := range s.data {
		for _, v := range level {
			values = append(values, v)
			weights = append(weights, weight)
		}
		weight *= 2
	}
	return quantile.NewCdf(values, weights, s.cmp)
}

// Merge folds every retained item of that into s at its original level
// and accumulates that's stream length: the retained items alone
// undercount the donor, since a key at level l stands in for 2^l raw
// inserts.
func (s *Sketch[C]) Merge(that *Sketch[C]) error {
	for level, items := range that.data {
		for _, key := range items {
			if err := s.insert(key, level); err != nil {
				return err
			}
		}
	}
	s.size += that.size
	return nil
}
