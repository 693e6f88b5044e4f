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

import (
	"fmt"
	"strings"

	"github.com/loopgen-org/loopgen/codegen/arrays"
	"github.com/loopgen-org/loopgen/codegen/generr"
)

// Node is one domain in a resolver's tree. It owns a descriptor, a
// parent link and an ordered child list. Once the owning resolver is
// finalized, the node carries its resolved loop-variable name, the
// lookup instruction materialized for it (if any), and the transform
// used for instruction sharing.
type Node struct {
	owner     *Resolver
	desc      *arrays.Descriptor
	parent    *Node
	children  []*Node
	iname     string
	insn      string
	transform *Transform
}

func newNode(owner *Resolver, desc *arrays.Descriptor, parent *Node, iname string) (*Node, error) {
	n := &Node{owner: owner, desc: desc, parent: parent, iname: iname}
	if err := owner.index(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Descriptor wrapped by the node.
func (n *Node) Descriptor() *arrays.Descriptor { return n.desc }

// Parent node, nil for the effective root.
func (n *Node) Parent() *Node { return n.parent }

// Children of the node, in registration order.
func (n *Node) Children() []*Node { return n.children }

// IsLeaf returns true for a concrete consumer array: a childless node
// that is not the tree base.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0 && n != n.owner.tree
}

// Iname is the loop-variable name resolved for the node. Empty before
// the owning resolver is finalized.
func (n *Node) Iname() string { return n.iname }

// Instruction is the lookup instruction materialized for the node, or
// empty when the node inherits or folds its parent's loop variable.
func (n *Node) Instruction() string { return n.insn }

// Transform resolved between the node and its parent, nil for identity.
func (n *Node) Transform() *Transform { return n.transform }

// setIname fixes the node's loop variable. An empty name on a non-root
// node inherits the parent's resolved name (the no-transform case).
func (n *Node) setIname(name string) {
	if name == "" && n.parent != nil {
		n.iname = n.parent.iname
		return
	}
	n.iname = name
}

func (n *Node) setTransform(iname, insn string, t *Transform) {
	n.setIname(iname)
	n.insn = insn
	n.transform = t
}

// addChild returns the existing or newly created child node wrapping
// the descriptor. Idempotent by construction: registering the same
// descriptor twice under one parent returns the same node.
func (n *Node) addChild(desc *arrays.Descriptor) (*Node, error) {
	key := domainKey(desc)
	for _, child := range n.children {
		if domainKey(child.desc) == key {
			return child, nil
		}
	}
	child, err := newNode(n.owner, desc, n, "")
	if err != nil {
		return nil, err
	}
	n.children = append(n.children, child)
	return child, nil
}

// String representation of the node.
func (n *Node) String() string {
	parts := []string{n.desc.Name()}
	if n.iname != "" {
		parts = append(parts, n.iname)
	}
	if n.insn != "" {
		parts = append(parts, n.insn)
	}
	return strings.Join(parts, ", ")
}

// domainKey is the structural identity of a domain: descriptor name,
// pinned axes, intrinsic affine, and the content of its initializer.
// Structurally equal descriptors share one tree node even when they are
// distinct objects.
func domainKey(d *arrays.Descriptor) string {
	var sb strings.Builder
	sb.WriteString(d.Name())
	for _, fx := range d.Fixed() {
		fmt.Fprintf(&sb, "#%d=%d", fx.Axis, fx.Value)
	}
	if vals, ok := d.Values(); ok {
		if ints, ok := vals.Ints(); ok {
			for _, v := range ints {
				fmt.Fprintf(&sb, ",%d", v)
			}
		}
	}
	if k, ok := d.Affine(); ok {
		fmt.Fprintf(&sb, "@%d", k)
	}
	return sb.String()
}

// checkDomain verifies the descriptor can serve as a domain.
func checkDomain(d *arrays.Descriptor) ([]int32, error) {
	if d == nil {
		return nil, generr.Configurationf("nil domain")
	}
	if !d.IsInitialized() {
		return nil, generr.Configurationf("descriptor %s has no initializer and cannot be a domain", d.Name())
	}
	dom, ok := d.Domain()
	if !ok {
		return nil, generr.Configurationf("descriptor %s is not a one-dimensional integer array", d.Name())
	}
	return dom, nil
}
