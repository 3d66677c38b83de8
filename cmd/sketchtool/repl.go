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
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/apache/streaming-sketches-go/common"
	"github.com/apache/streaming-sketches-go/entropy"
	"github.com/apache/streaming-sketches-go/quantile"
	"github.com/apache/streaming-sketches-go/sampledkll"
)

// sketchRepl answers percentile/value queries against a sketch built
// once from a file. The two commands cover exactly what a Cdf can
// answer; anything fancier (ground-truth comparison, error tracking)
// belongs to the quality subcommand.
type sketchRepl struct {
	cdf *quantile.Cdf[string]
	ln  *liner.State
}

func runRepl(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	capacity := fs.Uint("capacity", 1000, "sketch capacity")
	seed := fs.Int64("seed", 42, "deterministic bit source seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("repl requires exactly one file argument")
	}

	tokens, err := readTokens(fs.Arg(0))
	if err != nil {
		return err
	}

	src := entropy.NewDeterministicBits(*seed)
	sketch := sampledkll.New[string](uint32(*capacity), common.StringCompareFn(false), src)
	for _, tok := range tokens {
		if err := sketch.Insert(tok); err != nil {
			return errors.Wrap(err, "insert")
		}
	}
	cdf, err := sketch.Cdf()
	if err != nil {
		return errors.Wrap(err, "cdf")
	}

	r := &sketchRepl{cdf: cdf}
	return r.run()
}

func (r *sketchRepl) run() error {
	r.ln = liner.NewLiner()
	defer r.ln.Close()
	r.ln.SetCtrlCAborts(true)

	fmt.Println("sketchtool repl - query a sampled KLL sketch built from the given file")
	fmt.Println("commands: value <percentile 0-100>, percentile <key>, quit")

	for {
		line, err := r.ln.Prompt("sketchtool> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nbye")
				return nil
			}
			return errors.Wrap(err, "reading input")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.ln.AppendHistory(line)

		fields := strings.Fields(line)
		cmd := strings.ToLower(fields[0])
		cmdArgs := fields[1:]

		switch cmd {
		case "quit", "exit", "q":
			return nil
		case "value":
			r.handleValue(cmdArgs)
		case "percentile":
			r.handlePercentile(cmdArgs)
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func (r *sketchRepl) handleValue(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: value <percentile 0-100>")
		return
	}
	p, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Printf("invalid percentile: %v\n", err)
		return
	}
	v, err := r.cdf.GetValue(p)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println(v)
}

func (r *sketchRepl) handlePercentile(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: percentile <key>")
		return
	}
	p, err := r.cdf.GetPercentile(args[0])
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Printf("%.2f\n", p)
}
