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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/streaming-sketches-go/entropy"
)

// eightBucketCDF puts mass 1/8 on each s in [0, 8): P(X < s) = s/8.
func eightBucketCDF(_, s int64) Ratio {
	return Ratio{P: uint64(s), Q: 8}
}

// vitterCDF mirrors sampler.Vitter's skip distribution: P(skip < s) = s/(s+count).
func vitterCDF(count, s int64) Ratio {
	return Ratio{P: uint64(s), Q: uint64(s + count)}
}

func TestSampleZeroCountReturnsZeroWithoutDrawing(t *testing.T) {
	src := entropy.NewFixedBits(true)
	v, err := Sample(src, eightBucketCDF, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestSampleDegenerateWindowReturnsZero(t *testing.T) {
	src := entropy.NewFixedBits(false)
	v, err := Sample(src, eightBucketCDF, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestSampleIsWithinRange(t *testing.T) {
	src := entropy.NewDeterministicBits(1)
	for i := 0; i < 500; i++ {
		v, err := Sample(src, eightBucketCDF, 8, 16)
		require.NoError(t, err)
		assert.True(t, v >= 0 && v < 8, "drew %d outside [0, 8)", v)
	}
}

func TestSampleIsDeterministicGivenSameStream(t *testing.T) {
	a := entropy.NewDeterministicBits(99)
	b := entropy.NewDeterministicBits(99)
	for i := 0; i < 64; i++ {
		va, err := Sample(a, vitterCDF, int64(i)+1, math.MaxInt64)
		require.NoError(t, err)
		vb, err := Sample(b, vitterCDF, int64(i)+1, math.MaxInt64)
		require.NoError(t, err)
		assert.Equal(t, va, vb)
	}
}

func TestSampleDistributionIsRoughlyUniform(t *testing.T) {
	const buckets = 8
	const draws = 20000
	counts := make([]int, buckets)
	src := entropy.NewDeterministicBits(7)
	for i := 0; i < draws; i++ {
		v, err := Sample(src, eightBucketCDF, buckets, 2*buckets)
		require.NoError(t, err)
		counts[v]++
	}
	expected := float64(draws) / float64(buckets)
	for _, c := range counts {
		assert.InEpsilon(t, expected, float64(c), 0.1)
	}
}

func TestSampleVitterZeroSkipProbability(t *testing.T) {
	// P(skip = 0) at count = 1 is 1/2: the second stream item replaces
	// the first half the time.
	const draws = 20000
	zeros := 0
	src := entropy.NewDeterministicBits(3)
	for i := 0; i < draws; i++ {
		v, err := Sample(src, vitterCDF, 1, math.MaxInt64)
		require.NoError(t, err)
		if v == 0 {
			zeros++
		}
	}
	assert.InEpsilon(t, float64(draws)/2, float64(zeros), 0.05)
}

func TestSampleTerminatesOnAllZeroBits(t *testing.T) {
	// An all-zeros fraction pins the draw to the first bucket after a
	// single bit, well within FixedBits' budget.
	src := entropy.NewFixedBits(false)
	v, err := Sample(src, vitterCDF, 1, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestSamplePropagatesEntropyExhaustion(t *testing.T) {
	// An all-ones fraction always sits exactly on the Vitter CDF's own
	// bucket boundaries (1 - 2^-k = f(2^k - 1)), so a draw only settles
	// once the prefix passes the top of the int64 window, after 63 bits.
	// A second draw from the same source then runs out of the 37 bits
	// left in FixedBits' budget.
	src := entropy.NewFixedBits(true)
	_, err := Sample(src, vitterCDF, 1, math.MaxInt64)
	require.NoError(t, err)
	_, err = Sample(src, vitterCDF, 1, math.MaxInt64)
	assert.ErrorIs(t, err, entropy.ErrEntropyExhausted)
}
