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

import (
	"fmt"
	"slices"

	"github.com/loopgen-org/loopgen/base/stringseq"
	"github.com/loopgen-org/loopgen/codegen/generr"
)

// FixedIndex pins one axis of a descriptor to a constant position,
// reducing the arity visible to callers.
type FixedIndex struct {
	Axis  int
	Value int
}

// Descriptor describes one named array accessed by a generated kernel.
// A descriptor is immutable once constructed; derived arrays are made
// through Copy or PinIndex.
type Descriptor struct {
	name        string
	dtype       Dtype
	shape       Shape
	storage     Storage
	fixed       []FixedIndex
	affine      int
	hasAffine   bool
	values      *Values
	inputOutput bool
}

// Option configures a descriptor at construction time.
type Option func(*Descriptor)

// WithStorage sets the storage class.
func WithStorage(s Storage) Option {
	return func(d *Descriptor) { d.storage = s }
}

// WithFixed pins an axis to a constant index.
func WithFixed(axis, value int) Option {
	return func(d *Descriptor) { d.fixed = append(d.fixed, FixedIndex{Axis: axis, Value: value}) }
}

// WithAffine bakes a constant offset into every access of the array.
func WithAffine(k int) Option {
	return func(d *Descriptor) { d.affine, d.hasAffine = k, true }
}

// WithValues attaches generation-time contents. An initialized
// descriptor doubles as an iteration domain.
func WithValues(v *Values) Option {
	return func(d *Descriptor) { d.values = v }
}

// AsInputOutput marks the array as a kernel input or output. Such
// arrays never move to private memory.
func AsInputOutput() Option {
	return func(d *Descriptor) { d.inputOutput = true }
}

// New returns a descriptor for the named array.
func New(name string, dtype Dtype, shape Shape, opts ...Option) (*Descriptor, error) {
	if name == "" {
		return nil, generr.Configurationf("descriptor has no name")
	}
	if len(shape) == 0 {
		return nil, generr.Configurationf("descriptor %s has no shape", name)
	}
	d := &Descriptor{name: name, dtype: dtype, shape: shape.Clone(), storage: GlobalArg}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	if d.values != nil && d.storage == GlobalArg {
		// Initialized data is generator-owned, never a kernel argument.
		d.storage = GlobalTemporary
	}
	return d, nil
}

func (d *Descriptor) validate() error {
	seen := make(map[int]bool)
	for _, fx := range d.fixed {
		if fx.Axis < 0 || fx.Axis >= len(d.shape) {
			return generr.Configurationf("descriptor %s: fixed axis %d outside shape %s", d.name, fx.Axis, d.shape)
		}
		if seen[fx.Axis] {
			return generr.Configurationf("descriptor %s: axis %d fixed twice", d.name, fx.Axis)
		}
		seen[fx.Axis] = true
	}
	if d.values == nil {
		return nil
	}
	if d.values.Dtype() != d.dtype {
		return generr.Configurationf("descriptor %s: initializer dtype %s but declared %s", d.name, d.values.Dtype(), d.dtype)
	}
	dims := d.values.Shape()
	if len(dims) != len(d.shape) {
		return generr.Configurationf("descriptor %s: initializer rank %d but declared %d", d.name, len(dims), len(d.shape))
	}
	for i, axis := range d.shape {
		if axis.IsSymbolic() {
			return generr.Configurationf("descriptor %s: axis %d is symbolic but an initializer is given", d.name, i)
		}
		if axis.N != dims[i] {
			return generr.Configurationf("descriptor %s: initializer shape %v but declared %s", d.name, dims, d.shape)
		}
	}
	return nil
}

// Name of the array.
func (d *Descriptor) Name() string { return d.name }

// Dtype of the array elements.
func (d *Descriptor) Dtype() Dtype { return d.dtype }

// Shape of the array, including pinned axes.
func (d *Descriptor) Shape() Shape { return d.shape }

// Storage class of the array.
func (d *Descriptor) Storage() Storage { return d.storage }

// Fixed returns the pinned index positions.
func (d *Descriptor) Fixed() []FixedIndex { return d.fixed }

// Affine returns the constant offset baked into accesses, if any.
func (d *Descriptor) Affine() (int, bool) { return d.affine, d.hasAffine }

// Values returns the generation-time contents, if any.
func (d *Descriptor) Values() (*Values, bool) {
	return d.values, d.values != nil
}

// IsInputOutput returns true for kernel inputs and outputs.
func (d *Descriptor) IsInputOutput() bool { return d.inputOutput }

// IsInitialized returns true if the descriptor carries contents and
// can therefore be used as an iteration domain.
func (d *Descriptor) IsInitialized() bool { return d.values != nil }

// Domain returns the integer contents defining the array's iteration
// domain, or false if the descriptor is not a one-dimensional integer
// array.
func (d *Descriptor) Domain() ([]int32, bool) {
	if d.values == nil || len(d.values.Shape()) != 1 {
		return nil, false
	}
	return d.values.Ints()
}

// String representation of the descriptor.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s%s %s", d.name, d.shape, d.dtype)
}

// AccessOptions control how an access expression is rendered.
type AccessOptions struct {
	// PrivateMemory requests per-thread storage for eligible arrays.
	PrivateMemory bool
	// BatchIndex is the name of the outer batch index. When private
	// memory is in use, the batch axis is dropped from the access.
	BatchIndex string
}

// Index renders an access expression for the given indices.
//
// Pinned axes are expanded into the full index tuple first; the number
// of supplied indices must match the remaining free axes. If the array
// is eligible for private memory and one index denotes the outer batch
// index, that axis is dropped and a private-storage variant of the
// descriptor is returned in place of the original.
func (d *Descriptor) Index(indices []string, opt AccessOptions) (*Descriptor, string, error) {
	full, err := d.expand(indices)
	if err != nil {
		return nil, "", err
	}
	variable := d
	if opt.PrivateMemory && !d.inputOutput {
		if batch := indexOf(full, opt.BatchIndex); batch >= 0 {
			variable = d.Copy()
			variable.storage = PrivateTemporary
			variable.shape = append(d.shape[:batch:batch].Clone(), d.shape[batch+1:]...)
			full = append(full[:batch], full[batch+1:]...)
		}
	}
	return variable, fmt.Sprintf("%s[%s]", d.name, stringseq.Join(slices.Values(full), ", ")), nil
}

// expand places pinned values and the supplied indices into the full
// index tuple.
func (d *Descriptor) expand(indices []string) ([]string, error) {
	if len(d.fixed) == 0 {
		if len(indices) != len(d.shape) {
			return nil, generr.Arityf("descriptor %s: expected %d indices, got %d", d.name, len(d.shape), len(indices))
		}
		return append([]string{}, indices...), nil
	}
	full := make([]string, len(d.shape))
	for _, fx := range d.fixed {
		full[fx.Axis] = fmt.Sprint(fx.Value)
	}
	free := 0
	for _, slot := range full {
		if slot == "" {
			free++
		}
	}
	if len(indices) != free {
		return nil, generr.Arityf("descriptor %s: expected %d indices, got %d", d.name, free, len(indices))
	}
	next := 0
	for i, slot := range full {
		if slot == "" {
			full[i] = indices[next]
			next++
		}
	}
	return full, nil
}

func indexOf(indices []string, name string) int {
	if name == "" {
		return -1
	}
	for i, ind := range indices {
		if ind == name {
			return i
		}
	}
	return -1
}

// Copy returns a deep, independent clone of the descriptor.
func (d *Descriptor) Copy() *Descriptor {
	r := *d
	r.shape = d.shape.Clone()
	r.fixed = append([]FixedIndex{}, d.fixed...)
	if d.values != nil {
		r.values = d.values.Clone()
	}
	return &r
}

// PinIndex returns a copy of the descriptor with one more axis pinned
// to a constant, e.g. to address the last species of a thermodynamic
// table.
func (d *Descriptor) PinIndex(axis, value int) (*Descriptor, error) {
	r := d.Copy()
	r.fixed = append(r.fixed, FixedIndex{Axis: axis, Value: value})
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Rename returns a copy of the descriptor under a new name, optionally
// with new contents. Used to synthesize derived arrays such as an
// input-remap table.
func (d *Descriptor) Rename(name string, values *Values) (*Descriptor, error) {
	r := d.Copy()
	r.name = name
	if values != nil {
		r.values = values
		r.shape = Dims(values.Shape()...)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}
