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

package sampler

import (
	"math"

	"github.com/apache/streaming-sketches-go/entropy"
	"github.com/apache/streaming-sketches-go/rational"
)

// Vitter is the entropy-optimal reservoir-of-one: rather than spending a
// random draw on every stream item, it draws how many items to skip
// before the next replacement, via rational.Sample inverting the exact
// CDF of the skip distance. It consumes the information-theoretic
// minimum number of random bits per kept item and never rounds a
// probability to floating point.
type Vitter[T any] struct {
	count int64
	skip  int64
	value T
	have  bool
	src   entropy.Source
}

// NewVitter returns a Vitter sampler drawing its bits from src.
func NewVitter[T any](src entropy.Source) *Vitter[T] {
	return &Vitter[T]{src: src}
}

func (v *Vitter[T]) Step(item T) (bool, error) {
	v.count++
	if v.skip > 0 {
		v.skip--
		return false, nil
	}
	// The window only needs to keep s+count inside the ratio arithmetic's
	// range, so it spans the whole non-negative integer line.
	skip, err := rational.Sample(v.src, vitterCDF, v.count, math.MaxInt64)
	if err != nil {
		return false, err
	}
	v.skip = skip
	v.value = item
	v.have = true
	return true, nil
}

// vitterCDF is P(skip < s) given count items seen so far: the
// probability that the uniform-in-[0,1] variate of the next kept item
// exceeds the corresponding maximum-order-statistic threshold.
func vitterCDF(count, s int64) rational.Ratio {
	return rational.Ratio{P: uint64(s), Q: uint64(s + count)}
}

func (v *Vitter[T]) Value() (T, bool) {
	return v.value, v.have
}

func (v *Vitter[T]) N() int64 {
	return v.count
}
