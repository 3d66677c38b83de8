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

import (
	"os"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/apache/streaming-sketches-go/common"
	"github.com/apache/streaming-sketches-go/entropy"
	"github.com/apache/streaming-sketches-go/quantile"
)

// scenarioFixture mirrors testdata/scenarios.yaml: the deterministic
// end-to-end scenarios this module's behavior is pinned against.
type scenarioFixture struct {
	Capacity uint32 `yaml:"capacity"`
	Seed     int64  `yaml:"seed"`

	Empty struct {
		QueryPercentile float64 `yaml:"queryPercentile"`
	} `yaml:"empty"`

	SingleInsert struct {
		Key             string  `yaml:"key"`
		QueryPercentile float64 `yaml:"queryPercentile"`
	} `yaml:"singleInsert"`

	FourDistinct struct {
		Keys             []string `yaml:"keys"`
		MedianCandidates []string `yaml:"medianCandidates"`
	} `yaml:"fourDistinct"`

	SkewedStream struct {
		RepeatedKey         string  `yaml:"repeatedKey"`
		RepeatedCount       int     `yaml:"repeatedCount"`
		RareKey             string  `yaml:"rareKey"`
		QueryPercentile     float64 `yaml:"queryPercentile"`
		RarePercentileFloor float64 `yaml:"rarePercentileFloor"`
	} `yaml:"skewedStream"`

	HeavyInsert struct {
		Key    int64 `yaml:"key"`
		Height int   `yaml:"height"`
	} `yaml:"heavyInsert"`
}

func loadScenarioFixture(t *testing.T) scenarioFixture {
	t.Helper()
	data, err := os.ReadFile("testdata/scenarios.yaml")
	require.NoError(t, err)
	var f scenarioFixture
	require.NoError(t, yaml.Unmarshal(data, &f))
	return f
}

func newStringSketch(f scenarioFixture) *Sketch[string] {
	return New[string](f.Capacity, common.StringCompareFn(false), entropy.NewDeterministicBits(f.Seed))
}

func TestScenarioEmptySketchHasNoData(t *testing.T) {
	f := loadScenarioFixture(t)
	s := newStringSketch(f)
	_, err := s.Cdf()
	assert.ErrorIs(t, err, quantile.ErrEmptyCdf)
}

func TestScenarioSingleInsertIsExact(t *testing.T) {
	f := loadScenarioFixture(t)
	s := newStringSketch(f)
	require.NoError(t, s.Insert(f.SingleInsert.Key))

	c, err := s.Cdf()
	require.NoError(t, err)
	v, err := c.GetValue(f.SingleInsert.QueryPercentile)
	require.NoError(t, err)
	assert.Equal(t, f.SingleInsert.Key, v)

	pct, err := c.GetPercentile(f.SingleInsert.Key)
	require.NoError(t, err)
	assert.Equal(t, 100.0, pct)
}

func TestScenarioFourDistinctKeysMedianIsPlausible(t *testing.T) {
	f := loadScenarioFixture(t)
	s := newStringSketch(f)
	for _, k := range f.FourDistinct.Keys {
		require.NoError(t, s.Insert(k))
	}
	c, err := s.Cdf()
	require.NoError(t, err)
	median, err := c.GetValue(50)
	require.NoError(t, err)
	assert.True(t, slices.Contains(f.FourDistinct.MedianCandidates, median),
		"median %q not among plausible candidates %v", median, f.FourDistinct.MedianCandidates)
}

func TestScenarioSkewedStreamKeepsRareKeyVisible(t *testing.T) {
	f := loadScenarioFixture(t)
	s := newStringSketch(f)
	require.NoError(t, s.Insert(f.SkewedStream.RareKey))
	for i := 0; i < f.SkewedStream.RepeatedCount; i++ {
		require.NoError(t, s.Insert(f.SkewedStream.RepeatedKey))
	}

	c, err := s.Cdf()
	require.NoError(t, err)
	v, err := c.GetValue(f.SkewedStream.QueryPercentile)
	require.NoError(t, err)
	assert.Equal(t, f.SkewedStream.RepeatedKey, v)

	pct, err := c.GetPercentile(f.SkewedStream.RareKey)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pct, f.SkewedStream.RarePercentileFloor)
}

func TestScenarioHeavyInsertPreservesWeightInvariant(t *testing.T) {
	f := loadScenarioFixture(t)
	s := New[int64](f.Capacity, common.Int64CompareFn(false), entropy.NewDeterministicBits(f.Seed))
	require.NoError(t, s.InsertAtHeight(f.HeavyInsert.Key, f.HeavyInsert.Height))

	c, err := s.Cdf()
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<uint(f.HeavyInsert.Height), c.TotalWeight())
}
