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

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Li is Kim-Hung Li's exponential-jump sampler specialised to a
// reservoir of size one: instead of drawing a fresh random number per
// stream item, it draws the index of the next item that will replace the
// survivor, so the long runs between replacements cost one exponential
// draw each rather than one uniform draw per skipped item. w tracks the
// running minimum of the survivors' implicit uniform variates; the skip
// length is geometric with parameter w.
type Li[T any] struct {
	n        int64
	nextSwap int64
	w        float64
	value    T
	have     bool
	uni      distuv.Uniform
	expo     distuv.Exponential
}

// NewLi returns a Li sampler driven by src. A nil src uses gonum's
// default global source. No draws happen until the first item arrives:
// the skip window is anchored at the stream index of the keep event
// that opens it, which does not exist yet at construction time.
func NewLi[T any](src rand.Source) *Li[T] {
	return &Li[T]{
		uni:  distuv.Uniform{Min: 0, Max: 1, Src: src},
		expo: distuv.Exponential{Rate: 1, Src: src},
	}
}

// drawPositiveBelow draws uniformly from (0, limit): a draw of exactly
// zero would make scheduleNextSwap divide by log(1).
func (l *Li[T]) drawPositiveBelow(limit float64) float64 {
	for {
		if v := limit * l.uni.Rand(); v > 0 {
			return v
		}
	}
}

// scheduleNextSwap opens a fresh skip window. It must run with l.n
// already advanced to the index of the keep event that triggered it, so
// that exactly floor(-E/log(1-w)) items pass before the next swap.
func (l *Li[T]) scheduleNextSwap() {
	e := l.expo.Rand()
	l.nextSwap = l.n + int64(math.Floor(-e/math.Log1p(-l.w))) + 1
}

func (l *Li[T]) Step(item T) (bool, error) {
	l.n++
	if !l.have {
		l.value = item
		l.have = true
		l.w = l.drawPositiveBelow(1)
		l.scheduleNextSwap()
		return true, nil
	}
	if l.n < l.nextSwap {
		return false, nil
	}
	l.value = item
	l.w = l.drawPositiveBelow(l.w)
	l.scheduleNextSwap()
	return true, nil
}

func (l *Li[T]) Value() (T, bool) {
	return l.value, l.have
}

func (l *Li[T]) N() int64 {
	return l.n
}
