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

// Package common holds the small set of types shared by every sketch
// package in this module: the comparator every generic sketch is built
// over, and a few comparator/ordering constructors for common key types.
package common

// CompareFn reports whether a is strictly less than b. Every sketch in
// this module is generic over a comparable key type C plus a CompareFn[C];
// the sketch itself only ever calls CompareFn and ==, never a hash.
type CompareFn[C comparable] func(a, b C) bool

// StringCompareFn returns the natural (or reverse) ordering on strings.
func StringCompareFn(reverseOrder bool) CompareFn[string] {
	if reverseOrder {
		return func(a, b string) bool { return a > b }
	}
	return func(a, b string) bool { return a < b }
}

// Int64CompareFn returns the natural (or reverse) ordering on int64s.
func Int64CompareFn(reverseOrder bool) CompareFn[int64] {
	if reverseOrder {
		return func(a, b int64) bool { return a > b }
	}
	return func(a, b int64) bool { return a < b }
}

// Float64CompareFn returns the natural (or reverse) ordering on float64s.
func Float64CompareFn(reverseOrder bool) CompareFn[float64] {
	if reverseOrder {
		return func(a, b float64) bool { return a > b }
	}
	return func(a, b float64) bool { return a < b }
}
