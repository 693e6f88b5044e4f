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
	"github.com/loopgen-org/loopgen/base/ordered"
	"github.com/loopgen-org/loopgen/codegen/generr"
)

// Registry holds the descriptors a recipe builds, keyed by slot name.
// Several slots may share one underlying array name (e.g. views of the
// state vector pinned to different columns). Callers test presence with
// Lookup instead of relying on a fallthrough value.
type Registry struct {
	slots *ordered.Map[string, *Descriptor]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{slots: ordered.NewMap[string, *Descriptor]()}
}

// Add stores a descriptor under a slot name.
func (r *Registry) Add(slot string, d *Descriptor) error {
	if d == nil {
		return generr.Configurationf("slot %s: nil descriptor", slot)
	}
	if r.slots.Has(slot) {
		return generr.Configurationf("slot %s is already registered", slot)
	}
	r.slots.Store(slot, d)
	return nil
}

// Lookup returns the descriptor stored under a slot name, or false if
// the slot was never filled.
func (r *Registry) Lookup(slot string) (*Descriptor, bool) {
	return r.slots.Load(slot)
}

// Iter ranges over the registered slots in insertion order.
func (r *Registry) Iter() func(func(string, *Descriptor) bool) {
	return r.slots.Iter()
}

// Size returns the number of registered slots.
func (r *Registry) Size() int {
	return r.slots.Size()
}
