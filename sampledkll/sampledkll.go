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

// Package sampledkll implements the sampled compactor-based quantile
// sketch: a fixed-capacity backing array laid out as a stack of levels
// (sized the way kll sizes its own) with a single-item weighted reservoir
// sampler standing in for every level below the lowest one currently
// materialized. Insert, Compress and ShuffleDown mirror kll's compaction
// scheme; the sampler only ever receives an item once the structure has
// run out of room to hold it explicitly.
package sampledkll

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/apache/streaming-sketches-go/common"
	"github.com/apache/streaming-sketches-go/entropy"
	"github.com/apache/streaming-sketches-go/quantile"
)

// Sketch is a fixed-capacity sampled quantile sketch over keys of type C.
type Sketch[C comparable] struct {
	levelStart   []uint32 // len(levelStart) == len(levelSizes)+1
	data         []C      // backing array, len(data) == capacity; data[0] doubles as the sampler slot
	levelSizes   []int32
	heavies      []bool
	sampleWeight int64
	sampleHeight int
	cmp          common.CompareFn[C]
	src          entropy.Source
}

// New returns an empty sketch backed by a capacity-sized array. src
// supplies every coin flip and weighted draw the sketch consumes; it is
// owned by the caller and must outlive the sketch.
func New[C comparable](capacity uint32, cmp common.CompareFn[C], src entropy.Source) *Sketch[C] {
	starts := levelStarts(capacity)
	numLevels := len(starts) - 1
	return &Sketch[C]{
		levelStart:   starts,
		data:         make([]C, capacity),
		levelSizes:   make([]int32, numLevels),
		heavies:      make([]bool, numLevels),
		sampleHeight: 1 - numLevels,
		cmp:          cmp,
		src:          src,
	}
}

// weightForHeight returns the weight a single item at the given implicit
// height represents: 2^height once height is non-negative, 1 below that.
// A sketch that has not yet filled its capacity sits at a negative sample
// height, where an item still stands for exactly one stream element.
func weightForHeight(height int) int64 {
	if height < 0 {
		height = 0
	}
	return int64(1) << uint(height)
}

func (s *Sketch[C]) levelCapacity(level int) int32 {
	return int32(s.levelStart[level+1] - s.levelStart[level])
}

// Insert adds key to the sketch.
func (s *Sketch[C]) Insert(key C) error {
	return s.insert(key, 0)
}

// InsertAtHeight adds key as though it already represented 2^height raw
// stream items, the operation Merge uses to re-home a donor's retained
// keys at their true weight. Callers inserting a fresh stream item should
// use Insert instead.
func (s *Sketch[C]) InsertAtHeight(key C, height int) error {
	return s.insert(key, height)
}

// insert places key at its destination level (keyHeight offset by the
// sketch's current sample height), compacting and shuffling down as
// needed to make room, or folding key into the bottom sampler once the
// destination falls below level 0.
func (s *Sketch[C]) insert(key C, keyHeight int) error {
	// A key heavier than the current top level has no slice to land in;
	// each shuffle raises every level's implicit weight by one power of
	// two until one does. Only merges and explicit heavy inserts can
	// trigger this, never a raw stream item.
	for keyHeight-s.sampleHeight >= len(s.levelSizes) {
		if err := s.shuffleDown(); err != nil {
			return err
		}
	}
	destination := keyHeight - s.sampleHeight
	for destination >= 0 && s.levelSizes[destination] == s.levelCapacity(destination) {
		if err := s.compress(destination, s.levelSizes[destination]); err != nil {
			return err
		}
		if destination == len(s.levelSizes)-1 {
			if err := s.shuffleDown(); err != nil {
				return err
			}
		} else {
			for s.levelSizes[destination] > 0 && s.heavies[destination] {
				last := s.data[int(s.levelStart[destination])+int(s.levelSizes[destination])-1]
				if err := s.insert(last, keyHeight+1); err != nil {
					return err
				}
				s.levelSizes[destination]--
			}
			s.heavies[destination] = false
		}
		destination = keyHeight - s.sampleHeight
	}

	if destination >= 0 {
		s.data[int(s.levelStart[destination])+int(s.levelSizes[destination])] = key
		s.levelSizes[destination]++
		return nil
	}
	return s.combineIntoSampler(key, weightForHeight(keyHeight))
}

// combineIntoSampler folds a key of the given weight into the bottom
// sampler slot, a weighted reservoir of capacity one. Once the sampler's
// accumulated weight reaches the weight budget of the sketch's current
// sample height, its resident item is flushed back into the structure as
// a single representative of everything it absorbed.
func (s *Sketch[C]) combineIntoSampler(key C, keyWeight int64) error {
	limitWeight := weightForHeight(s.sampleHeight)

	if s.sampleWeight+keyWeight <= limitWeight {
		draw, err := drawUniform(s.src, s.sampleWeight+keyWeight)
		if err != nil {
			return err
		}
		if draw < keyWeight {
			s.data[0] = key
		}
		s.sampleWeight += keyWeight
		if s.sampleWeight == limitWeight {
			s.sampleWeight = 0
			flushed := s.data[0]
			return s.insert(flushed, s.sampleHeight)
		}
		return nil
	}

	mutableKey := key
	sw, kw := s.sampleWeight, keyWeight
	if sw > kw {
		sw, kw = kw, sw
		s.data[0], mutableKey = mutableKey, s.data[0]
	}
	s.sampleWeight = sw

	draw, err := drawUniform(s.src, limitWeight)
	if err != nil {
		return err
	}
	if draw < kw {
		return s.insert(mutableKey, s.sampleHeight)
	}
	return nil
}

// compress sorts the first len items of level, keeps every other one
// (coin-flip offset), and marks the level heavy: a level stays heavy
// until the next time it is emptied by a promotion or a shuffle-down,
// which is how insert knows not to compress it twice in a row.
func (s *Sketch[C]) compress(level int, length int32) error {
	start := int(s.levelStart[level])
	keys := s.data[start : start+int(length)]
	slices.SortFunc(keys, func(a, b C) int {
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
	offset := 0
	if bit {
		offset = 1
	}

	j := 0
	for i := offset; i < int(length); i += 2 {
		keys[j] = keys[i]
		j++
	}
	s.heavies[level] = true
	s.levelSizes[level] = length / 2
	return nil
}

// shuffleDown makes room in the top level by raising every level's floor
// by one slot: level 0's non-heavy contents (items never compacted since
// the last shuffle) are set aside in purgatory, every other level is
// compacted and shifted down to fill the gap, and the sample height rises
// by one to reflect that level 0 now represents twice the weight it did.
// Purgatory is reinserted last, at the height level 0 held before this
// call, since those items never had a chance to compact into it.
func (s *Sketch[C]) shuffleDown() error {
	purgatoryCap := int(s.levelStart[1] - s.levelStart[0])
	purgatory := make([]C, purgatoryCap)
	purgatorySize := int32(0)
	if !s.heavies[0] {
		copy(purgatory, s.data[s.levelStart[0]:int(s.levelStart[0])+int(s.levelSizes[0])])
		purgatorySize = s.levelSizes[0]
		s.levelSizes[0] = 0
	}

	for level := 1; level < len(s.levelSizes); level++ {
		if s.heavies[level] {
			continue
		}
		copiedUp := false
		for s.levelSizes[level] > 0 {
			if s.levelSizes[level-1] >= s.levelCapacity(level-1) {
				if err := s.compress(level-1, s.levelSizes[level-1]); err != nil {
					return err
				}
				half := int(s.levelStart[level]-s.levelStart[level-1]) / 2
				dstOffset := int(s.levelStart[level+1]) - half
				copy(s.data[dstOffset:], s.data[s.levelStart[level-1]:int(s.levelStart[level-1])+int(s.levelSizes[level-1])])
				copiedUp = true
				s.levelSizes[level-1] = 0
			}
			s.data[int(s.levelStart[level-1])+int(s.levelSizes[level-1])] = s.data[int(s.levelStart[level])+int(s.levelSizes[level])-1]
			s.levelSizes[level-1]++
			s.levelSizes[level]--
		}
		if copiedUp {
			half := int(s.levelStart[level]-s.levelStart[level-1]) / 2
			srcOffset := int(s.levelStart[level+1]) - half
			copy(s.data[s.levelStart[level]:], s.data[srcOffset:s.levelStart[level+1]])
			s.levelSizes[level] = int32(half)
		}
		s.heavies[level] = true
	}

	s.sampleHeight++
	for i := range s.heavies {
		s.heavies[i] = false
	}
	for i := int32(0); i < purgatorySize; i++ {
		if err := s.insert(purgatory[i], s.sampleHeight-1); err != nil {
			return err
		}
	}
	return nil
}

// Cdf flattens the sampler slot (if occupied) and every retained level
// into a weighted value set and returns the resulting cumulative
// distribution.
func (s *Sketch[C]) Cdf() (*quantile.Cdf[C], error) {
	var values []C
	var weights []int64

	if s.sampleWeight != 0 {
		values = append(values, s.data[0])
		weights = append(weights, s.sampleWeight)
	}

	weight := weightForHeight(s.sampleHeight)
	start := 0
	if -s.sampleHeight > start {
		start = -s.sampleHeight
	}
	for level := start; level < len(s.levelSizes); level++ {
		base := int(s.levelStart[level])
		for i := int32(0); i < s.levelSizes[level]; i++ {
			values = append(values, s.data[base+int(i)])
			weights = append(weights, weight)
		}
		weight *= 2
	}

	return quantile.NewCdf(values, weights, s.cmp)
}

// Merge folds that into s by re-running every retained item of that
// through s's own insert path at its implicit absolute height, and
// folding that's sampler item (at its accumulated weight) into s's
// sampler. Because that's sampler weight is judged against s's current
// sample height rather than that's, the result is an approximation, not
// an exact merge: acceptable given the sketch is already approximate by
// construction. Both sketches must share one capacity; that is left
// unmodified.
func (s *Sketch[C]) Merge(that *Sketch[C]) error {
	if len(s.data) != len(that.data) {
		return fmt.Errorf("cannot merge sketches of different capacities: %d and %d", len(s.data), len(that.data))
	}
	if that.sampleWeight != 0 {
		if err := s.combineIntoSampler(that.data[0], that.sampleWeight); err != nil {
			return err
		}
	}
	for level, size := range that.levelSizes {
		base := int(that.levelStart[level])
		for i := int32(0); i < size; i++ {
			item := that.data[base+int(i)]
			if err := s.insert(item, level+that.sampleHeight); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawUniform draws an integer uniformly from [0, n), assembling whole
// candidates from the bit source and rejecting the out-of-range ones.
// The sampler's weight budgets are powers of two, so in the common case
// no candidate is ever rejected.
func drawUniform(src entropy.Source, n int64) (int64, error) {
	if n <= 1 {
		return 0, nil
	}
	width := bits.Len64(uint64(n - 1))
	for {
		var v int64
		for i := 0; i < width; i++ {
			b, err := src.NextBit()
			if err != nil {
				return 0, err
			}
			v <<= 1
			if b {
				v |= 1
			}
		}
		if v < n {
			return v, nil
		}
	}
}
