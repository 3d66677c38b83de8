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

// Package sampler implements the single-item reservoir family: three
// interchangeable strategies for keeping one uniformly random survivor
// out of an unbounded stream, differing only in how many random bits
// (or calls into a source of randomness) each decision costs.
package sampler

// Sampler is a one-item reservoir. Step feeds it the next item of the
// stream and reports whether that item became (or remains) the current
// survivor. Value reports the current survivor and whether one exists
// yet.
type Sampler[T any] interface {
	Step(item T) (bool, error)
	Value() (T, bool)
	N() int64
}
