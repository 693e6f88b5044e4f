// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package arrays describes the named arrays accessed by generated kernels.
//
// A descriptor records everything the indexing layer needs to know about
// an array: its element type, shape, storage class, pinned index
// positions, and, for arrays that double as iteration domains, an
// explicit initializer listing the valid indices.
package arrays

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/loopgen-org/loopgen/base/stringseq"
)

// Sentinel marks an invalid slot in a mask array.
const Sentinel int32 = -1

// Dtype is the element type of an array.
type Dtype string

const (
	// Int32 element type. All domain and mask arrays are Int32.
	Int32 Dtype = "int32"
	// Int64 element type.
	Int64 Dtype = "int64"
	// Float64 element type.
	Float64 Dtype = "float64"
)

// IsInteger returns true for integer element types.
func (d Dtype) IsInteger() bool {
	return d == Int32 || d == Int64
}

// Axis is one axis of an array shape: either a literal length or a
// symbolic size name resolved at kernel compile time.
type Axis struct {
	N   int
	Sym string
}

// Dim returns an axis with a literal length.
func Dim(n int) Axis {
	return Axis{N: n}
}

// SymDim returns an axis whose length is a symbolic size name,
// e.g. the problem size of a test-less kernel.
func SymDim(name string) Axis {
	return Axis{Sym: name}
}

// IsSymbolic returns true if the axis length is a symbolic name.
func (a Axis) IsSymbolic() bool { return a.Sym != "" }

// String representation of the axis length.
func (a Axis) String() string {
	if a.IsSymbolic() {
		return a.Sym
	}
	return strconv.Itoa(a.N)
}

// Shape of an array.
type Shape []Axis

// Dims returns a shape made of literal axis lengths.
func Dims(ns ...int) Shape {
	s := make(Shape, len(ns))
	for i, n := range ns {
		s[i] = Dim(n)
	}
	return s
}

// String representation of the shape.
func (s Shape) String() string {
	return fmt.Sprintf("(%s)", stringseq.JoinStringer(slices.Values(s), ", "))
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	return append(Shape{}, s...)
}

// Storage is the storage class of an array.
type Storage int

const (
	// GlobalArg is a kernel argument in global memory.
	GlobalArg Storage = iota
	// GlobalTemporary is generator-owned data in global memory,
	// read-only when initialized.
	GlobalTemporary
	// PrivateTemporary is per-thread scratch storage.
	PrivateTemporary
)

// String representation of the storage class.
func (s Storage) String() string {
	switch s {
	case GlobalArg:
		return "global"
	case GlobalTemporary:
		return "temporary"
	case PrivateTemporary:
		return "private"
	}
	return fmt.Sprintf("storage(%d)", int(s))
}
