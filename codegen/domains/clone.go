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

package domains

import "github.com/loopgen-org/loopgen/base/ordered"

// Clone returns an independent copy of the resolver. The node graph,
// name allocator and interning tables are copied; descriptors are
// immutable after construction and shared. Registrations on the clone
// do not affect the original.
func (r *Resolver) Clone() *Resolver {
	cl := &Resolver{
		opts:         r.opts,
		log:          r.log,
		mapDomain:    r.mapDomain,
		maskDomain:   r.maskDomain,
		nodes:        ordered.NewMap[string, *Node](),
		transformed:  ordered.NewSet[*Node](),
		interned:     r.interned.Clone(),
		names:        r.names.Clone(),
		haveInputMap: r.haveInputMap,
		finalized:    r.finalized,
	}
	copies := make(map[*Node]*Node)
	var cloneNode func(n *Node, parent *Node) *Node
	cloneNode = func(n *Node, parent *Node) *Node {
		c := &Node{
			owner:     cl,
			desc:      n.desc,
			parent:    parent,
			iname:     n.iname,
			insn:      n.insn,
			transform: n.transform,
		}
		copies[n] = c
		for _, child := range n.children {
			c.children = append(c.children, cloneNode(child, c))
		}
		return c
	}
	cloneNode(r.rootNode(), nil)
	cl.tree = copies[r.tree]

	// Rebuild the domain index in the original's registration order.
	for key, n := range r.nodes.Iter() {
		cl.nodes.Store(key, copies[n])
	}
	for _, n := range r.transformed.Elements() {
		cl.transformed.Add(copies[n])
	}
	return cl
}
