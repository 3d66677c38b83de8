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

package entropy

import "math/rand"

// randWordSource is a wordSource backed by a seeded math/rand generator,
// so it is repeatable across runs for a fixed seed.
type randWordSource struct {
	r *rand.Rand
}

func (s *randWordSource) nextWord() (uint64, error) {
	return s.r.Uint64(), nil
}

// DeterministicBits is a Source whose output is a pure function of the
// construction seed. Tests that need reproducible sketches (the
// end-to-end scenarios of this module, the CDF-inverter determinism
// property) use this instead of OsBits.
type DeterministicBits struct {
	view *bitView
}

// NewDeterministicBits seeds a pseudorandom bit source.
func NewDeterministicBits(seed int64) *DeterministicBits {
	return &DeterministicBits{view: newBitView(&randWordSource{r: rand.New(rand.NewSource(seed))})}
}

func (d *DeterministicBits) NextBit() (bool, error) {
	return d.view.NextBit()
}
