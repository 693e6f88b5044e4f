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

// Package genopts declares the options driving kernel index generation.
package genopts

import (
	"io"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/loopgen-org/loopgen/codegen/generr"
)

// Mode selects how a kernel iterates its base domain.
type Mode string

const (
	// Map kernels assume a contiguous or affine iteration domain,
	// falling back to a synthesized identity table otherwise.
	Map Mode = "map"
	// Mask kernels span the full index space and track per-array
	// validity through sentinel-marked lookup tables.
	Mask Mode = "mask"
)

// Order is the row/column-major storage order of generated arrays.
type Order string

const (
	// RowMajor (C) order.
	RowMajor Order = "C"
	// ColumnMajor (F) order.
	ColumnMajor Order = "F"
)

// Options for one kernel-generation request.
type Options struct {
	// Mode of the kernel: map or mask.
	Mode Mode `yaml:"mode"`
	// Order of the generated arrays.
	Order Order `yaml:"order"`
	// UsePrivateMemory requests per-thread storage for arrays that are
	// not kernel inputs or outputs.
	UsePrivateMemory bool `yaml:"use_private_memory"`
	// PermissiveFinalize allows registrations after the domain tree has
	// been finalized. Unsafe outside of unit testing: already resolved
	// transforms are not recomputed.
	PermissiveFinalize bool `yaml:"permissive_finalize"`
	// BatchIndex is the loop variable of the outer batch loop.
	BatchIndex string `yaml:"batch_index"`
	// LoopIndex is the loop variable shared by every array access the
	// resolver maps.
	LoopIndex string `yaml:"loop_index"`
}

// Default options: strict map-mode generation in C order over (j, i).
func Default() *Options {
	return &Options{
		Mode:       Map,
		Order:      RowMajor,
		BatchIndex: "j",
		LoopIndex:  "i",
	}
}

// Load options from YAML. Fields absent from the document keep
// their default value.
func Load(r io.Reader) (*Options, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, generr.Configurationf("cannot read options: %v", err)
	}
	opts := Default()
	if err := yaml.Unmarshal(src, opts); err != nil {
		return nil, generr.Configurationf("cannot parse options: %v", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate returns all configuration mistakes found in the options.
func (o *Options) Validate() error {
	var errs error
	switch o.Mode {
	case Map, Mask:
	default:
		errs = multierr.Append(errs, generr.Configurationf("mode %q is not map or mask", o.Mode))
	}
	switch o.Order {
	case RowMajor, ColumnMajor:
	default:
		errs = multierr.Append(errs, generr.Configurationf("order %q is not C or F", o.Order))
	}
	if o.LoopIndex == "" {
		errs = multierr.Append(errs, generr.Configurationf("loop index is empty"))
	}
	if o.BatchIndex == "" {
		errs = multierr.Append(errs, generr.Configurationf("batch index is empty"))
	}
	if o.BatchIndex == o.LoopIndex {
		errs = multierr.Append(errs, generr.Configurationf("batch index %q collides with loop index", o.BatchIndex))
	}
	return errs
}
