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
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	exprand "golang.org/x/exp/rand"

	"github.com/pkg/errors"

	"github.com/apache/streaming-sketches-go/common"
	"github.com/apache/streaming-sketches-go/entropy"
	"github.com/apache/streaming-sketches-go/sampledkll"
	"github.com/apache/streaming-sketches-go/sampler"
)

var benchPercentiles = []float64{1, 5, 25, 50, 75, 95, 99}

func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	capacity := fs.Uint("capacity", 1000, "sketch capacity")
	seed := fs.Int64("seed", 42, "deterministic bit source seed")
	samplerName := fs.String("sampler", "", "also time a single-item sampler over the stream (simple, li, vitter)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("bench requires exactly one file argument")
	}
	path := fs.Arg(0)

	tokens, err := readTokens(path)
	if err != nil {
		return err
	}
	log.Printf("bench: read %d tokens from %s", len(tokens), path)

	src := entropy.NewDeterministicBits(*seed)
	sketch := sampledkll.New[string](uint32(*capacity), common.StringCompareFn(false), src)

	start := time.Now()
	for _, tok := range tokens {
		if err := sketch.Insert(tok); err != nil {
			return errors.Wrap(err, "insert")
		}
	}
	elapsed := time.Since(start)
	log.Printf("bench: inserted %d items in %s (%.0f items/sec)",
		len(tokens), elapsed, float64(len(tokens))/elapsed.Seconds())

	cdf, err := sketch.Cdf()
	if err != nil {
		return errors.Wrap(err, "cdf")
	}
	for _, p := range benchPercentiles {
		v, err := cdf.GetValue(p)
		if err != nil {
			return errors.Wrap(err, "get value")
		}
		fmt.Printf("p%-5.2f %s\n", p, v)
	}

	if *samplerName != "" {
		return runSamplerBench(*samplerName, tokens, *seed)
	}
	return nil
}

// runSamplerBench runs one of the single-item reservoir samplers over
// the token stream and times it, the cheap way to compare how much each
// variant's randomness strategy costs on real input.
func runSamplerBench(name string, tokens []string, seed int64) error {
	var s sampler.Sampler[string]
	switch name {
	case "simple":
		s = sampler.NewSimple[string](rand.New(rand.NewSource(seed)))
	case "li":
		s = sampler.NewLi[string](exprand.NewSource(uint64(seed)))
	case "vitter":
		s = sampler.NewVitter[string](entropy.NewDeterministicBits(seed))
	default:
		return errors.Errorf("unknown sampler %q (want simple, li, or vitter)", name)
	}

	start := time.Now()
	for _, tok := range tokens {
		if _, err := s.Step(tok); err != nil {
			return errors.Wrapf(err, "%s sampler step", name)
		}
	}
	kept, _ := s.Value()
	log.Printf("bench: %s sampler kept %q out of %d items in %s",
		name, kept, len(tokens), time.Since(start))
	return nil
}
