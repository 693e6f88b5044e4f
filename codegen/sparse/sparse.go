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

// Package sparse specializes array accesses for matrices stored in
// compressed row or compressed column form.
//
// One matrix axis is direct: a pointer array gives the offset of its
// run in the compressed storage. The other axis must be located within
// that run, either through a bounded lookup routine over
// [ptr[k], ptr[k+1]) or, for the always-dense leading two rows or
// columns, by using the searched index as the position outright.
package sparse

import (
	"fmt"
	"strconv"

	"github.com/loopgen-org/loopgen/codegen/arrays"
	"github.com/loopgen-org/loopgen/codegen/generr"
	"github.com/loopgen-org/loopgen/codegen/genopts"
)

// LookupRoutine is the default name of the external routine locating an
// index within a bounded run of the compressed index array. It returns
// the run-relative position, or the sentinel for an absent entry.
const LookupRoutine = "indirect_lookup"

// Indexer renders accesses to one compressed matrix. The row-major
// generation order selects compressed row storage, the column-major
// order compressed column storage.
type Indexer struct {
	opts    *genopts.Options
	dense   *arrays.Descriptor
	mat     *arrays.Descriptor
	ind     *arrays.Descriptor
	ptr     *arrays.Descriptor
	routine string

	direct   int
	searched int
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLookupRoutine overrides the name of the bounded lookup routine.
func WithLookupRoutine(name string) Option {
	return func(x *Indexer) { x.routine = name }
}

// New returns an indexer for the matrix described by mat, with shape
// (batch, rows, cols). ind holds the compressed indices of the searched
// axis, ptr the per-run offsets into ind; both must be initialized
// integer arrays. Passing nil for both selects the dense fallback,
// where accesses keep the full index tuple.
func New(opts *genopts.Options, mat, ind, ptr *arrays.Descriptor, options ...Option) (*Indexer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if mat == nil {
		return nil, generr.Configurationf("nil matrix descriptor")
	}
	if len(mat.Shape()) != 3 {
		return nil, generr.Arityf("matrix %s: expected shape (batch, rows, cols), got %s", mat.Name(), mat.Shape())
	}
	x := &Indexer{
		opts:    opts,
		dense:   mat,
		routine: LookupRoutine,
		// Row-major storage compresses rows, column-major columns.
		direct:   1,
		searched: 2,
	}
	if opts.Order == genopts.ColumnMajor {
		x.direct, x.searched = 2, 1
	}
	for _, opt := range options {
		opt(x)
	}
	if ind == nil && ptr == nil {
		return x, nil
	}
	if err := x.checkStorage(ind, ptr); err != nil {
		return nil, err
	}
	x.ind, x.ptr = ind, ptr
	copts := []arrays.Option{arrays.WithStorage(mat.Storage())}
	if mat.IsInputOutput() {
		copts = append(copts, arrays.AsInputOutput())
	}
	nnz, _ := ind.Domain()
	compressed, err := arrays.New(mat.Name(), mat.Dtype(),
		arrays.Shape{mat.Shape()[0], arrays.Dim(len(nnz))}, copts...)
	if err != nil {
		return nil, err
	}
	x.mat = compressed
	return x, nil
}

// checkStorage validates the compressed index and pointer arrays
// against the dense matrix shape.
func (x *Indexer) checkStorage(ind, ptr *arrays.Descriptor) error {
	ivals, err := domainValues(ind)
	if err != nil {
		return err
	}
	pvals, err := domainValues(ptr)
	if err != nil {
		return err
	}
	runs := x.dense.Shape()[x.direct]
	if !runs.IsSymbolic() && len(pvals) != runs.N+1 {
		return generr.Arityf("pointer array %s has %d entries, want %d",
			ptr.Name(), len(pvals), runs.N+1)
	}
	if pvals[0] != 0 {
		return generr.DomainBoundsf("pointer array %s does not start at 0", ptr.Name())
	}
	for i := 1; i < len(pvals); i++ {
		if pvals[i] < pvals[i-1] {
			return generr.DomainBoundsf("pointer array %s decreases at %d", ptr.Name(), i)
		}
	}
	if int(pvals[len(pvals)-1]) != len(ivals) {
		return generr.DomainBoundsf("pointer array %s ends at %d, want %d stored entries",
			ptr.Name(), pvals[len(pvals)-1], len(ivals))
	}
	span := x.dense.Shape()[x.searched]
	if !span.IsSymbolic() {
		for i, v := range ivals {
			if v < 0 || int(v) >= span.N {
				return generr.DomainBoundsf("index array %s entry %d (%d) outside axis size %d",
					ind.Name(), i, v, span.N)
			}
		}
	}
	return nil
}

func domainValues(d *arrays.Descriptor) ([]int32, error) {
	if d == nil {
		return nil, generr.Configurationf("nil compressed storage descriptor")
	}
	vals, ok := d.Domain()
	if !ok {
		return nil, generr.Configurationf("descriptor %s is not a one-dimensional integer array", d.Name())
	}
	return vals, nil
}

// IsSparse returns false for the dense fallback.
func (x *Indexer) IsSparse() bool { return x.mat != nil }

// Entry is the decomposition of one compressed access, for callers that
// must test entry existence before committing to a write.
type Entry struct {
	// Axis of the dense shape replaced by the compressed position.
	Axis int
	// Index is the full compressed-position expression.
	Index string
	// Offset of the run in the compressed storage.
	Offset string
	// Lookup locating the searched index within the run: the index
	// itself on the dense fast path, a lookup-routine call otherwise.
	Lookup string
}

// Flags modify how Index renders an access. At most one may be set.
type Flags struct {
	// IgnoreLookups renders the indices verbatim against the compressed
	// storage, e.g. to zero every stored entry in one flat loop.
	IgnoreLookups bool
	// Plain skips rendering and returns the access decomposition.
	Plain bool
}

// Index renders an access to the matrix at the given dense indices
// (batch, row, col). For compressed storage the searched axis is
// replaced by the run offset plus the located position; the dense
// fallback keeps the tuple as is.
func (x *Indexer) Index(indices []string, flags Flags) (*arrays.Descriptor, string, *Entry, error) {
	if flags.IgnoreLookups && flags.Plain {
		return nil, "", nil, generr.Configurationf("matrix %s: ignore-lookups and plain access are mutually exclusive", x.dense.Name())
	}
	if !x.IsSparse() {
		return x.denseIndex(indices, flags)
	}
	if flags.IgnoreLookups {
		v, expr, err := x.mat.Index(indices, x.access())
		return v, expr, nil, err
	}
	if len(indices) != len(x.dense.Shape()) {
		return nil, "", nil, generr.Arityf("matrix %s: expected %d indices, got %d",
			x.dense.Name(), len(x.dense.Shape()), len(indices))
	}
	entry := x.entry(indices[x.direct], indices[x.searched])
	if flags.Plain {
		return x.mat, "", entry, nil
	}
	compressed := []string{indices[0], entry.Index}
	v, expr, err := x.mat.Index(compressed, x.access())
	return v, expr, nil, err
}

// denseIndex renders the finite-difference fallback, where the matrix
// keeps its full shape and the searched axis is used in place.
func (x *Indexer) denseIndex(indices []string, flags Flags) (*arrays.Descriptor, string, *Entry, error) {
	if flags.Plain {
		if len(indices) != len(x.dense.Shape()) {
			return nil, "", nil, generr.Arityf("matrix %s: expected %d indices, got %d",
				x.dense.Name(), len(x.dense.Shape()), len(indices))
		}
		searched := indices[x.searched]
		return x.dense, "", &Entry{Axis: x.searched, Index: searched, Lookup: searched}, nil
	}
	v, expr, err := x.dense.Index(indices, x.access())
	return v, expr, nil, err
}

// entry decomposes a compressed access: the run offset comes from the
// pointer array at the direct index; the position within the run is the
// searched index itself when the run is dense (the leading two rows or
// columns), and a bounded lookup call otherwise.
func (x *Indexer) entry(direct, searched string) *Entry {
	offset := fmt.Sprintf("%s[%s]", x.ptr.Name(), direct)
	lookup := searched
	if !denseRun(direct) {
		lookup = fmt.Sprintf("%s(%s, %s, %s, %s[%s + 1])",
			x.routine, searched, x.ind.Name(), offset, x.ptr.Name(), direct)
	}
	return &Entry{
		Axis:   x.searched,
		Index:  fmt.Sprintf("%s + %s", offset, lookup),
		Offset: offset,
		Lookup: lookup,
	}
}

// denseRun reports whether the direct index denotes one of the two
// leading runs, which store every entry of the searched axis.
func denseRun(direct string) bool {
	k, err := strconv.Atoi(direct)
	return err == nil && k >= 0 && k < 2
}

func (x *Indexer) access() arrays.AccessOptions {
	return arrays.AccessOptions{
		PrivateMemory: x.opts.UsePrivateMemory,
		BatchIndex:    x.opts.BatchIndex,
	}
}
