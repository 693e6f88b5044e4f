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

// Package uname provides unique names.
package uname

import "fmt"

// Unique generates unique names.
type Unique struct {
	taken map[string]bool
	next  map[string]int
}

// New name generator. The given names are reserved and will
// never be returned by Name.
func New(reserved ...string) *Unique {
	n := &Unique{taken: make(map[string]bool), next: make(map[string]int)}
	for _, name := range reserved {
		n.Reserve(name)
	}
	return n
}

// Reserve marks a name as taken.
func (n *Unique) Reserve(name string) {
	n.taken[name] = true
}

// Name returns a unique name given a desired base name.
// If the base name is available, it is returned directly.
// Else, a unique suffix is appended: base_0, base_1, ...
func (n *Unique) Name(base string) string {
	if !n.taken[base] {
		n.taken[base] = true
		return base
	}
	for {
		name := fmt.Sprintf("%s_%d", base, n.next[base])
		n.next[base]++
		if !n.taken[name] {
			n.taken[name] = true
			return name
		}
	}
}

// Clone creates an independent copy of the generator.
func (n *Unique) Clone() *Unique {
	r := New()
	for name := range n.taken {
		r.taken[name] = true
	}
	for base, i := range n.next {
		r.next[base] = i
	}
	return r
}
