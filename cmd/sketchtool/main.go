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

// sketchtool drives the sampled KLL sketch against a word-tokenized text
// file: bench times insertion and prints quantiles, repl answers ad hoc
// percentile/value queries interactively, and quality compares the
// sketch's accuracy against a plain reservoir baseline. None of this is
// part of the sketch library itself; it exists to exercise it.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sketchtool: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		printUsage()
		return errors.New("missing command")
	}

	switch args[0] {
	case "bench":
		return runBench(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "quality":
		return runQuality(args[1:])
	default:
		printUsage()
		return errors.Errorf("unknown command %q", args[0])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  sketchtool bench   [-capacity N] [-seed N] [-sampler simple|li|vitter] <file>\n")
	fmt.Fprintf(os.Stderr, "  sketchtool repl    [-capacity N] [-seed N] <file>\n")
	fmt.Fprintf(os.Stderr, "  sketchtool quality -config <file.hujson> <file>\n")
}
