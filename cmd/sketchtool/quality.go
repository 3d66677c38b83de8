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

package main

import (
	"encoding/json"
	"flag"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"

	"github.com/apache/streaming-sketches-go/common"
	"github.com/apache/streaming-sketches-go/entropy"
	"github.com/apache/streaming-sketches-go/sampledkll"
	"github.com/apache/streaming-sketches-go/sampling"
)

// qualityConfig names the run, read from a HuJSON (JSON-with-comments)
// file the way calvinalkan-agent-task reads its own .tk.json.
type qualityConfig struct {
	Capacity         uint32    `json:"capacity"`
	ReservoirK       int       `json:"reservoir_k"`
	Seed             int64     `json:"seed"`
	IterationLimit   int       `json:"iteration_limit"`
	QueryPercentiles []float64 `json:"query_percentiles"`
}

func defaultQualityConfig() qualityConfig {
	return qualityConfig{
		Capacity:         200,
		ReservoirK:       200,
		Seed:             42,
		IterationLimit:   1_000_000,
		QueryPercentiles: []float64{5, 25, 50, 75, 95},
	}
}

func loadQualityConfig(path string) (qualityConfig, error) {
	cfg := defaultQualityConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return cfg, errors.Wrapf(err, "invalid HuJSON in %s", path)
	}
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "invalid JSON in %s", path)
	}
	return cfg, nil
}

// qualityReport is the bounded comparison between the sampled KLL
// sketch and a plain reservoir baseline over the same token stream,
// capped at IterationLimit tokens and written to a report file.
type qualityReport struct {
	TokensProcessed  int               `yaml:"tokensProcessed"`
	SketchCapacity   uint32            `yaml:"sketchCapacity"`
	ReservoirK       int               `yaml:"reservoirK"`
	SketchQuantiles  map[string]string `yaml:"sketchQuantiles"`
	BaselineSamples  int               `yaml:"baselineSampleCount"`
	BaselineQuantile map[string]string `yaml:"baselineApproxQuantiles"`
}

func runQuality(args []string) error {
	fs := flag.NewFlagSet("quality", flag.ExitOnError)
	configPath := fs.String("config", "", "HuJSON config file")
	out := fs.String("out", "quality-report.yaml", "report output path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return errors.New("quality requires -config")
	}
	if fs.NArg() != 1 {
		return errors.New("quality requires exactly one file argument")
	}

	cfg, err := loadQualityConfig(*configPath)
	if err != nil {
		return err
	}

	tokens, err := readTokens(fs.Arg(0))
	if err != nil {
		return err
	}
	if len(tokens) > cfg.IterationLimit {
		tokens = tokens[:cfg.IterationLimit]
	}

	src := entropy.NewDeterministicBits(cfg.Seed)
	sketch := sampledkll.New[string](cfg.Capacity, common.StringCompareFn(false), src)

	reservoir, err := sampling.NewReservoirItemsSketch[string](cfg.ReservoirK)
	if err != nil {
		return errors.Wrap(err, "building reservoir baseline")
	}

	for _, tok := range tokens {
		if err := sketch.Insert(tok); err != nil {
			return errors.Wrap(err, "sketch insert")
		}
		reservoir.Update(tok)
	}

	report := qualityReport{
		TokensProcessed: len(tokens),
		SketchCapacity:  cfg.Capacity,
		ReservoirK:      cfg.ReservoirK,
		SketchQuantiles: map[string]string{},
		BaselineSamples: reservoir.NumSamples(),
	}

	cdf, err := sketch.Cdf()
	if err != nil {
		return errors.Wrap(err, "sketch cdf")
	}
	for _, p := range cfg.QueryPercentiles {
		v, err := cdf.GetValue(p)
		if err != nil {
			return errors.Wrap(err, "sketch get value")
		}
		report.SketchQuantiles[percentileKey(p)] = v
	}

	report.BaselineQuantile = baselineQuantiles(reservoir.Samples(), cfg.QueryPercentiles)

	data, err := yaml.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshaling report")
	}
	if err := atomic.WriteFile(*out, strings.NewReader(string(data))); err != nil {
		return errors.Wrapf(err, "writing report to %s", *out)
	}
	return nil
}

// baselineQuantiles approximates quantiles from the reservoir's uniform
// sample by sorting it, the textbook order-statistic estimator the
// sketch's own Cdf is compared against.
func baselineQuantiles(samples []string, percentiles []float64) map[string]string {
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	result := make(map[string]string, len(percentiles))
	for _, p := range percentiles {
		if len(sorted) == 0 {
			result[percentileKey(p)] = ""
			continue
		}
		idx := int(p / 100 * float64(len(sorted)))
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		result[percentileKey(p)] = sorted[idx]
	}
	return result
}

func percentileKey(p float64) string {
	return "p" + strconv.FormatFloat(p, 'f', -1, 64)
}
