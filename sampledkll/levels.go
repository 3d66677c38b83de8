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

package sampledkll

import "github.com/apache/streaming-sketches-go/common"

// round3 shaves a third off a remaining capacity budget: floor x/3 to
// the nearest even number, clamped to the minimum level capacity of 4.
func round3(x uint32) uint32 {
	return uint32(common.RoundEvenAtLeast4(int(x) / 3))
}

// peel repeatedly subtracts round3(c) from c until the remainder drops
// below 4, returning the sequence of subtracted deltas in the order they
// were taken (largest first) along with the final remainder.
func peel(capacity uint32) (deltas []uint32, remainder uint32) {
	c := capacity
	for c >= 4 {
		d := round3(c)
		deltas = append(deltas, d)
		c -= d
	}
	return deltas, c
}

// isTightFit reports whether capacity peels down to exactly zero, in
// which case level 0 would have no room for the bottom-level sampler
// slot and the whole layout must be shifted over by one.
func isTightFit(capacity uint32) bool {
	_, remainder := peel(capacity)
	return remainder == 0
}

// levelStarts computes the level boundary offsets into a CAPACITY-sized
// backing array: levelStarts[i] is where level i begins, and
// levelStarts[len-1] == capacity. Level sizes shrink from the top level
// down to level 0, which is sized by the last (smallest) delta peeled;
// slot 0 of the backing array is reserved for the bottom-level sampler,
// which is why levelStarts[0] is never 0.
func levelStarts(capacity uint32) []uint32 {
	base := capacity
	offset := uint32(0)
	if isTightFit(capacity) {
		base = capacity - 1
		offset = 1
	}

	deltas, remainder := peel(base)
	h := len(deltas)
	starts := make([]uint32, h+1)
	starts[0] = remainder + offset
	for i := 0; i < h; i++ {
		starts[i+1] = starts[i] + deltas[h-1-i]
	}
	return starts
}
