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

// Package sampling implements plain multi-item reservoir sampling: a
// uniform random subset of a stream of unknown length, the accuracy
// baseline cmd/sketchtool's quality comparison checks the sampled KLL
// sketch against.
package sampling

// ResizeFactor controls how aggressively the reservoir's backing array
// grows once it outgrows its initial allocation.
type ResizeFactor int

const (
	ResizeX1 ResizeFactor = 0
	ResizeX2 ResizeFactor = 1
	ResizeX4 ResizeFactor = 2
	ResizeX8 ResizeFactor = 3
)
