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

package rational

import "github.com/apache/streaming-sketches-go/entropy"

// CDFFunc returns P(X < s), as an exact ratio, for the distribution the
// caller wants to invert. The count argument parametrizes the family (for
// a skip distribution it is how many items the stream has produced so
// far); Sample threads it through unchanged, so the function must be pure
// in both arguments.
type CDFFunc func(count, s int64) Ratio

// Sample draws s in [0, nMax-count) distributed so that each s carries
// probability mass cdf(count, s+1) - cdf(count, s), materializing only as
// many random bits as it takes to pin the drawn uniform down to a single
// CDF bucket.
//
// The fraction r built from the bits drawn so far is a lower bound on the
// uniform variate it is a prefix of; r plus one ulp is a strict upper
// bound. Each round bisects for both bounds' buckets: the lower bound's
// bucket raises lo, the upper bound's bucket lowers hi, and once only one
// bucket remains the draw is decided. Otherwise one more bit halves the
// gap between the bounds and the round repeats. An exact tie against a
// bucket boundary counts as "at or below" in both bisections, so a
// boundary with a finite binary expansion cannot bias the draw; it only
// costs extra bits.
//
// count == 0 is a degenerate distribution with no mass to invert; Sample
// returns 0 without drawing any bits.
func Sample(src entropy.Source, cdf CDFFunc, count, nMax int64) (int64, error) {
	if count == 0 {
		return 0, nil
	}
	lo, hi := int64(0), nMax-count
	if hi <= 1 {
		return 0, nil
	}

	r := make([]bool, 0, 8)
	extend := func() error {
		b, err := src.NextBit()
		if err != nil {
			return err
		}
		r = append(r, b)
		return nil
	}
	if err := extend(); err != nil {
		return 0, err
	}

	for {
		lo = invert(cdf, count, r, lo, hi) - 1
		if lo+1 >= hi {
			return hi - 1, nil
		}
		if !Increment(r) {
			// r was all ones: its successor needs one more bit of
			// precision than r holds. Restore r and refine it instead.
			for i := range r {
				r[i] = true
			}
			if err := extend(); err != nil {
				return 0, err
			}
			continue
		}
		hi = invert(cdf, count, r, lo, hi)
		if hi-lo == 1 {
			return hi - 1, nil
		}
		Decrement(r)
		if err := extend(); err != nil {
			return 0, err
		}
	}
}

// invert bisects for the least s in (lo, hi] whose cdf value is at or
// above the fraction r, returning hi when every probe in the range falls
// below r.
func invert(cdf CDFFunc, count int64, r []bool, lo, hi int64) int64 {
	l, h := lo+1, hi
	for l < h {
		mid := l + (h-l)/2
		if Compare(r, cdf(count, mid)) != GT {
			h = mid
		} else {
			l = mid + 1
		}
	}
	return l
}
