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

package arrays

// Values is the generation-time content of an initialized array.
// It is a tagged variant: integer contents for domain, map, mask and
// offset arrays; real contents for numeric parameter tables.
type Values struct {
	dtype Dtype
	shape []int
	ints  []int32
	reals []float64
}

// IntValues returns one-dimensional int32 contents.
func IntValues(vals ...int32) *Values {
	return &Values{dtype: Int32, shape: []int{len(vals)}, ints: vals}
}

// Arange returns the identity contents 0, 1, ..., n-1.
func Arange(n int) *Values {
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(i)
	}
	return IntValues(vals...)
}

// RealValues returns one-dimensional float64 contents.
func RealValues(vals ...float64) *Values {
	return &Values{dtype: Float64, shape: []int{len(vals)}, reals: vals}
}

// WithShape reshapes the contents. The product of dims must match the
// number of elements; the caller guarantees this at construction time.
func (v *Values) WithShape(dims ...int) *Values {
	r := *v
	r.shape = dims
	return &r
}

// Dtype of the contents.
func (v *Values) Dtype() Dtype { return v.dtype }

// Shape of the contents.
func (v *Values) Shape() []int { return v.shape }

// Len returns the total number of elements.
func (v *Values) Len() int {
	if v.dtype.IsInteger() {
		return len(v.ints)
	}
	return len(v.reals)
}

// Ints returns the integer contents, or false for real-valued contents.
func (v *Values) Ints() ([]int32, bool) {
	if !v.dtype.IsInteger() {
		return nil, false
	}
	return v.ints, true
}

// Reals returns the real contents, or false for integer contents.
func (v *Values) Reals() ([]float64, bool) {
	if v.dtype.IsInteger() {
		return nil, false
	}
	return v.reals, true
}

// Clone returns an independent deep copy of the contents.
func (v *Values) Clone() *Values {
	r := &Values{dtype: v.dtype}
	r.shape = append([]int{}, v.shape...)
	r.ints = append([]int32{}, v.ints...)
	r.reals = append([]float64{}, v.reals...)
	return r
}
