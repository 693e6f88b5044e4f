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

// Package domains resolves how arrays defined over distinct index
// domains are reached from one shared loop variable.
//
// Callers register each array together with its governing domain. The
// resolver arranges the domains into a tree rooted at the kernel's base
// domain and, on finalization, decides per domain whether the loop
// variable reaches it unchanged, shifted by a constant, or only through
// an explicit lookup table. Identical transforms share one generated
// instruction. After finalization the tree is frozen and access queries
// are pure lookups.
package domains

import (
	"fmt"
	"log/slog"

	"github.com/loopgen-org/loopgen/base/iter"
	"github.com/loopgen-org/loopgen/base/ordered"
	"github.com/loopgen-org/loopgen/base/uname"
	"github.com/loopgen-org/loopgen/codegen/arrays"
	"github.com/loopgen-org/loopgen/codegen/generr"
	"github.com/loopgen-org/loopgen/codegen/genopts"
)

// binding is an interned transform materialization shared by nodes
// whose transforms compare equal.
type binding struct {
	iname string
	insn  string
}

// Resolver owns the domain tree of one generated kernel.
type Resolver struct {
	opts *genopts.Options
	log  *slog.Logger

	mapDomain  *arrays.Descriptor
	maskDomain *arrays.Descriptor

	// tree is the node of the original base domain. When an input map
	// has been synthesized, the effective root is tree.Parent().
	tree  *Node
	nodes *ordered.Map[string, *Node]

	transformed *ordered.Set[*Node]
	interned    *ordered.Map[string, binding]
	names       *uname.Unique

	haveInputMap bool
	finalized    bool
}

// New returns a resolver for one kernel-generation request.
//
// mapDomain is the base domain used by map kernels; maskDomain is the
// full index space spanned by mask kernels. Only the domain matching
// opts.Mode is used as the tree base, but both are validated.
func New(opts *genopts.Options, mapDomain, maskDomain *arrays.Descriptor) (*Resolver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{
		opts:        opts,
		log:         slog.Default(),
		mapDomain:   mapDomain,
		maskDomain:  maskDomain,
		nodes:       ordered.NewMap[string, *Node](),
		transformed: ordered.NewSet[*Node](),
		interned:    ordered.NewMap[string, binding](),
		names:       uname.New(opts.LoopIndex, opts.BatchIndex),
	}
	if err := r.checkValidDomain(mapDomain); err != nil {
		return nil, err
	}
	if err := r.checkValidDomain(maskDomain); err != nil {
		return nil, err
	}
	base, err := newNode(r, r.baseDomain(), nil, opts.LoopIndex)
	if err != nil {
		return nil, err
	}
	r.tree = base
	return r, nil
}

func (r *Resolver) isMap() bool {
	return r.opts.Mode == genopts.Map
}

func (r *Resolver) baseDomain() *arrays.Descriptor {
	if r.isMap() {
		return r.mapDomain
	}
	return r.maskDomain
}

// rootNode returns the effective root: the synthesized input-map node
// when one exists, the base node otherwise.
func (r *Resolver) rootNode() *Node {
	if r.tree.parent != nil {
		return r.tree.parent
	}
	return r.tree
}

// index registers a node with the domain index.
func (r *Resolver) index(n *Node) error {
	key := domainKey(n.desc)
	if prev, ok := r.nodes.Load(key); ok && prev != n {
		return generr.DuplicateDomainf("domain %s", n.desc.Name())
	}
	r.nodes.Store(key, n)
	return nil
}

// checkValidDomain verifies a domain descriptor. In mask mode every
// entry must stay within the governing mask's size.
func (r *Resolver) checkValidDomain(d *arrays.Descriptor) error {
	dom, err := checkDomain(d)
	if err != nil {
		return err
	}
	if r.isMap() {
		return nil
	}
	size, err := checkDomain(r.maskDomain)
	if err != nil {
		return err
	}
	for _, v := range dom {
		if int(v) >= len(size) {
			return generr.DomainBoundsf("domain %s entry %d exceeds mask size %d", d.Name(), v, len(size))
		}
	}
	return nil
}

// Register adds a consumer array and its governing domain to the tree.
//
// The domain is inserted under the base (or located, if a structurally
// equal domain is already present); the array becomes a leaf below it.
// Registering after finalization fails in strict mode; in permissive
// mode it logs a warning and proceeds, leaving previously resolved
// transforms untouched.
func (r *Resolver) Register(variable, domain *arrays.Descriptor) error {
	if r.finalized {
		if !r.opts.PermissiveFinalize {
			return generr.Finalizedf("cannot add domain %s for array %s", domain.Name(), variable.Name())
		}
		r.log.Warn("registering after finalization; resolved transforms may be stale",
			"domain", domain.Name(), "array", variable.Name())
	}
	if err := r.checkValidDomain(domain); err != nil {
		return err
	}
	node, ok := r.nodes.Load(domainKey(domain))
	if !ok {
		var err error
		node, err = r.tree.addChild(domain)
		if err != nil {
			return err
		}
	}
	if prev, ok := r.nodes.Load(domainKey(variable)); ok {
		// The array is already in the tree, either as this domain's
		// node or as a leaf below it.
		if prev == node || prev.parent == node {
			return nil
		}
		return generr.DuplicateDomainf("array %s is already registered elsewhere in the domain tree",
			variable.Name())
	}
	_, err := node.addChild(variable)
	return err
}

// Finalize resolves the domain tree into loop-variable bindings and
// lookup instructions. Idempotent; called automatically on the first
// access query.
func (r *Resolver) Finalize() error {
	if r.finalized {
		return nil
	}
	if r.isMap() {
		if err := r.checkInputMap(); err != nil {
			return err
		}
	}
	root := r.rootNode()
	queue := []*Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node != root {
			r.resolveNode(node)
		}
		queue = append(queue, node.children...)
	}
	r.finalized = true
	return nil
}

// resolveNode resolves one node against its parent.
func (r *Resolver) resolveNode(node *Node) {
	if node.IsLeaf() {
		// Concrete consumer arrays carry their parent's loop variable.
		node.setTransform("", "", nil)
		return
	}
	t := r.transformBetween(node.parent.desc, node.desc)
	if t == nil {
		node.setTransform("", "", nil)
		return
	}
	iname, insn := r.materialize(node, t)
	node.setTransform(iname, insn, t)
	r.transformed.Add(node)
}

// materialize turns a transform into a loop-variable binding. Affine
// transforms fold into the parent's variable without an instruction;
// lookup transforms are interned so equal transforms share one
// instruction and name.
func (r *Resolver) materialize(node *Node, t *Transform) (iname, insn string) {
	if offset, ok := t.Offset(); ok {
		return renderAffine(node.parent.iname, offset), ""
	}
	if b, ok := r.interned.Load(t.key()); ok {
		return b.iname, b.insn
	}
	iname = r.names.Name(r.opts.LoopIndex)
	insn = renderInstruction(node.parent.iname, iname, t.table, 0)
	r.interned.Store(t.key(), binding{iname: iname, insn: insn})
	return iname, insn
}

// transformBetween derives the transform reaching the child domain from
// its parent. Returns nil for element-wise identical domains.
func (r *Resolver) transformBetween(base, child *arrays.Descriptor) *Transform {
	bdom, _ := base.Domain()
	cdom, _ := child.Domain()
	if r.isMap() {
		return mapTransform(bdom, cdom, child.Name())
	}
	return maskTransform(bdom, cdom, child.Name())
}

// mapTransform compares two map-mode domains: equal length is required
// for an affine relation; a uniform element difference folds into a
// constant offset; anything else takes an explicit lookup.
func mapTransform(base, child []int32, table string) *Transform {
	if len(base) != len(child) {
		return &Transform{table: table}
	}
	equal := true
	for i := range base {
		if base[i] != child[i] {
			equal = false
			break
		}
	}
	if equal {
		return nil
	}
	offset := child[0] - base[0]
	for i := range base {
		if child[i]-base[i] != offset {
			return &Transform{table: table}
		}
	}
	return &Transform{table: table, offset: int(offset), hasOffset: true}
}

// maskTransform compares two mask-mode domains by their supports (the
// non-sentinel positions): equal cardinality, sentinel positions that
// align under one constant shift, and matching shifted values make an
// affine mask transform; anything else uses the child domain itself as
// the runtime lookup table.
func maskTransform(base, child []int32, table string) *Transform {
	if len(base) == len(child) {
		equal := true
		for i := range base {
			if base[i] != child[i] {
				equal = false
				break
			}
		}
		if equal {
			return nil
		}
	}
	bset := support(base)
	cset := support(child)
	if len(bset) != len(cset) || len(bset) == 0 {
		return &Transform{table: table}
	}
	offset := cset[0] - bset[0]
	for i := range bset {
		if cset[i]-bset[i] != offset {
			return &Transform{table: table}
		}
	}
	for i := range bset {
		if child[cset[i]] != base[bset[i]] {
			return &Transform{table: table}
		}
	}
	return &Transform{table: table, offset: offset, hasOffset: true}
}

// support returns the positions of the non-sentinel entries.
func support(dom []int32) []int {
	var set []int
	for i, v := range dom {
		if v != arrays.Sentinel {
			set = append(set, i)
		}
	}
	return set
}

// contiguous returns true if the domain can be expressed as a plain
// interval loop.
func contiguous(dom []int32) bool {
	return int(dom[0])+len(dom)-1 == int(dom[len(dom)-1])
}

// checkInputMap decides whether the base domain needs a synthesized
// identity input map: always when the base is non-contiguous, and when
// an immediate child requires a non-affine transform while the base
// does not start at zero.
func (r *Resolver) checkInputMap() error {
	bdom, _ := r.mapDomain.Domain()
	if !contiguous(bdom) {
		return r.addInputMap()
	}
	for _, child := range r.tree.children {
		if child.IsLeaf() {
			continue
		}
		cdom, _ := child.desc.Domain()
		t := mapTransform(bdom, cdom, child.desc.Name())
		if t != nil && !t.IsAffine() && bdom[0] != 0 {
			return r.addInputMap()
		}
	}
	return nil
}

// addInputMap replaces the tree root with a dense identity domain and
// demotes the current base to its child. Grandchildren that reach the
// new root without a lookup are re-parented to it.
func (r *Resolver) addInputMap() error {
	bdom, _ := r.mapDomain.Domain()
	newDomain, err := r.mapDomain.Rename(r.mapDomain.Name()+"_map", arrays.Arange(len(bdom)))
	if err != nil {
		return err
	}
	newBase, err := newNode(r, newDomain, nil, r.opts.LoopIndex)
	if err != nil {
		return err
	}
	newBase.children = append(newBase.children, r.tree)
	r.tree.parent = newBase
	r.tree.setIname("")

	ndom, _ := newDomain.Domain()
	kept := r.tree.children[:0]
	for _, child := range r.tree.children {
		moved := false
		if !child.IsLeaf() {
			cdom, _ := child.desc.Domain()
			t := mapTransform(ndom, cdom, child.desc.Name())
			if t == nil || t.IsAffine() {
				child.parent = newBase
				newBase.children = append(newBase.children, child)
				moved = true
			}
		}
		if !moved {
			kept = append(kept, child)
		}
	}
	r.tree.children = kept

	r.mapDomain = newDomain
	r.haveInputMap = true
	return nil
}

// Apply renders an access expression for the array at the given
// indices, substituting the shared loop variable with the name resolved
// for the array's domain and folding any intrinsic affine constant.
// Finalizes the tree if it has not been finalized yet.
func (r *Resolver) Apply(v *arrays.Descriptor, indices ...string) (*arrays.Descriptor, string, error) {
	return r.ApplyOffset(v, Offset{}, indices...)
}

// Offset is a caller-supplied affine offset folded into an access,
// combined additively with the array's intrinsic affine constant.
type Offset struct {
	// Shift applies to the sole index of the access. With more than one
	// index the attribution is ambiguous and rejected.
	Shift int
	// ByIndex attributes offsets to named indices.
	ByIndex map[string]int
}

// ApplyOffset is Apply with an explicit affine offset.
func (r *Resolver) ApplyOffset(v *arrays.Descriptor, offset Offset, indices ...string) (*arrays.Descriptor, string, error) {
	if !r.finalized {
		if err := r.Finalize(); err != nil {
			return nil, "", err
		}
	}

	// The intrinsic affine constant attaches to the loop-variable index
	// when the access has several; a lone index always qualifies.
	intrinsic, _ := v.Affine()
	loopCount := 0
	for _, ind := range indices {
		if ind == r.opts.LoopIndex {
			loopCount++
		}
	}
	if intrinsic != 0 && len(indices) > 1 && loopCount != 1 {
		return nil, "", generr.AmbiguousAffinef(
			"array %s: cannot attribute affine constant %d to one of the indices %v",
			v.Name(), intrinsic, indices)
	}
	if offset.Shift != 0 && len(indices) > 1 {
		return nil, "", generr.AmbiguousAffinef(
			"array %s: cannot attribute offset %d to one of the indices %v; use ByIndex",
			v.Name(), offset.Shift, indices)
	}

	node, ok := r.nodes.Load(domainKey(v))
	if !ok {
		// Arrays never used as domains resolve at the base, which
		// carries any synthesized input map.
		node = r.tree
	}
	sub := node.iname
	if !node.IsLeaf() && node != r.tree {
		// An interior node's own name denotes the index after its
		// transform; accesses to the node's array itself use the
		// parent's variable.
		sub = node.parent.iname
	}

	mapped := make([]string, len(indices))
	for i, ind := range indices {
		isLoop := ind == r.opts.LoopIndex
		if isLoop {
			ind = sub
		}
		off := offset.Shift + offset.ByIndex[indices[i]]
		if isLoop || len(indices) == 1 {
			off += intrinsic
		}
		mapped[i] = renderAffine(ind, off)
	}
	return v.Index(mapped, arrays.AccessOptions{
		PrivateMemory: r.opts.UsePrivateMemory,
		BatchIndex:    r.opts.BatchIndex,
	})
}

// TransformInstructions returns the deduplicated lookup instructions in
// resolution order.
func (r *Resolver) TransformInstructions() []string {
	seen := ordered.NewSet[string]()
	materialized := func(n *Node) bool { return n.insn != "" }
	for node := range iter.Filter(materialized, r.transformed.Elements()) {
		seen.Add(node.insn)
	}
	return seen.Elements()
}

// LoopBounds returns the primary loop variable and its inclusive range
// expression: the base domain's first and last values for map kernels,
// the full mask size for mask kernels.
func (r *Resolver) LoopBounds() (iname, bounds string) {
	dom, _ := r.baseDomain().Domain()
	iname = r.opts.LoopIndex
	if r.isMap() {
		return iname, fmt.Sprintf("%d <= %s <= %d", dom[0], iname, dom[len(dom)-1])
	}
	return iname, fmt.Sprintf("0 <= %s <= %d", iname, len(dom)-1)
}

// Mode of the kernel the resolver serves.
func (r *Resolver) Mode() genopts.Mode { return r.opts.Mode }

// Finalized returns true once the tree has been resolved and frozen.
func (r *Resolver) Finalized() bool { return r.finalized }

// HaveInputMap returns true if an identity input map was synthesized at
// the root.
func (r *Resolver) HaveInputMap() bool { return r.haveInputMap }

// Root returns the effective root of the resolved tree.
func (r *Resolver) Root() *Node { return r.rootNode() }

// Base returns the node of the kernel's base domain. This is the root
// unless an input map was synthesized above it.
func (r *Resolver) Base() *Node { return r.tree }
