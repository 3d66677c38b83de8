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
	"os"
	"path/filepath"
	"testing"
)

func TestLoadQualityConfigAppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quality.hujson")
	// comments are the whole reason this is HuJSON and not plain JSON.
	contents := `{
		// override just the capacity, leave the rest at their defaults
		"capacity": 64,
	}`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := loadQualityConfig(path)
	if err != nil {
		t.Fatalf("loadQualityConfig: %v", err)
	}
	if cfg.Capacity != 64 {
		t.Errorf("Capacity = %d, want 64", cfg.Capacity)
	}
	if cfg.ReservoirK != defaultQualityConfig().ReservoirK {
		t.Errorf("ReservoirK = %d, want default %d", cfg.ReservoirK, defaultQualityConfig().ReservoirK)
	}
}

func TestLoadQualityConfigMissingFile(t *testing.T) {
	if _, err := loadQualityConfig(filepath.Join(t.TempDir(), "missing.hujson")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestBaselineQuantilesEmptySamples(t *testing.T) {
	got := baselineQuantiles(nil, []float64{50})
	if got["p50"] != "" {
		t.Errorf("p50 of empty sample set = %q, want empty string", got["p50"])
	}
}

func TestBaselineQuantilesSortsBeforeIndexing(t *testing.T) {
	samples := []string{"c", "a", "d", "b"}
	got := baselineQuantiles(samples, []float64{0, 99})
	if got["p0"] != "a" {
		t.Errorf("p0 = %q, want %q", got["p0"], "a")
	}
	if got["p99"] != "d" {
		t.Errorf("p99 = %q, want %q", got["p99"], "d")
	}
}

func TestPercentileKeyFormatting(t *testing.T) {
	cases := map[float64]string{
		50:   "p50",
		5:    "p5",
		99.9: "p99.9",
	}
	for p, want := range cases {
		if got := percentileKey(p); got != want {
			t.Errorf("percentileKey(%v) = %q, want %q", p, got, want)
		}
	}
}
