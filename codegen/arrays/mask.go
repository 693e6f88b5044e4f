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

import "github.com/loopgen-org/loopgen/codegen/generr"

// MakeMask builds a mask array of the given total size from a map
// array: every slot is the sentinel except the map entries, which are
// set to their rank within the map.
func MakeMask(mapArr []int32, maskSize int) ([]int32, error) {
	mask := make([]int32, maskSize)
	for i := range mask {
		mask[i] = Sentinel
	}
	for rank, entry := range mapArr {
		if entry < 0 || int(entry) >= maskSize {
			return nil, generr.DomainBoundsf("map entry %d outside mask size %d", entry, maskSize)
		}
		mask[entry] = int32(rank)
	}
	return mask, nil
}

// MakeOffsets builds a pointer array from per-row counts: the exclusive
// prefix sum of the counts followed by their total, as used by
// compressed row storage.
func MakeOffsets(counts []int32) []int32 {
	offsets := make([]int32, len(counts)+1)
	var sum int32
	for i, n := range counts {
		offsets[i] = sum
		sum += n
	}
	offsets[len(counts)] = sum
	return offsets
}

// NewMask returns the mask descriptor of a map descriptor, named after
// it with a _mask suffix and spanning maskSize slots.
func NewMask(m *Descriptor, maskSize int) (*Descriptor, error) {
	dom, ok := m.Domain()
	if !ok {
		return nil, generr.Configurationf("descriptor %s is not a one-dimensional integer array", m.Name())
	}
	mask, err := MakeMask(dom, maskSize)
	if err != nil {
		return nil, err
	}
	return New(m.Name()+"_mask", Int32, Dims(maskSize), WithValues(IntValues(mask...)))
}

// NewOffsets returns a pointer descriptor built from per-run counts.
func NewOffsets(name string, counts []int32) (*Descriptor, error) {
	offsets := MakeOffsets(counts)
	return New(name, Int32, Dims(len(offsets)), WithValues(IntValues(offsets...)))
}
