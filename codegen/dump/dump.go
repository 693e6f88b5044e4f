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

// Package dump renders a resolved domain tree as JSON, for inspecting
// why a given array was mapped the way it was.
package dump

import (
	"io"
	"sort"

	"github.com/goccy/go-json"
	"golang.org/x/exp/maps"

	"github.com/loopgen-org/loopgen/codegen/domains"
)

// Node is the snapshot of one domain-tree node.
type Node struct {
	Array       string  `json:"array"`
	Iname       string  `json:"iname,omitempty"`
	Instruction string  `json:"instruction,omitempty"`
	Leaf        bool    `json:"leaf,omitempty"`
	Children    []*Node `json:"children,omitempty"`
}

// Tree is the snapshot of one resolved domain tree.
type Tree struct {
	Mode         string   `json:"mode"`
	LoopVariable string   `json:"loop_variable"`
	Bounds       string   `json:"bounds"`
	InputMap     bool     `json:"input_map,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
	Tables       []string `json:"tables,omitempty"`
	Root         *Node    `json:"root"`
}

// Snapshot captures the resolver's tree, finalizing it first if needed.
func Snapshot(r *domains.Resolver) (*Tree, error) {
	if err := r.Finalize(); err != nil {
		return nil, err
	}
	iname, bounds := r.LoopBounds()
	tables := map[string]bool{}
	return &Tree{
		Mode:         string(r.Mode()),
		LoopVariable: iname,
		Bounds:       bounds,
		InputMap:     r.HaveInputMap(),
		Instructions: r.TransformInstructions(),
		Root:         snapshotNode(r.Root(), tables),
		Tables:       sortedKeys(tables),
	}, nil
}

func snapshotNode(n *domains.Node, tables map[string]bool) *Node {
	s := &Node{
		Array:       n.Descriptor().Name(),
		Iname:       n.Iname(),
		Instruction: n.Instruction(),
		Leaf:        n.IsLeaf(),
	}
	if t := n.Transform(); t != nil && !t.IsAffine() {
		tables[t.Table()] = true
	}
	for _, child := range n.Children() {
		s.Children = append(s.Children, snapshotNode(child, tables))
	}
	return s
}

func sortedKeys(set map[string]bool) []string {
	keys := maps.Keys(set)
	sort.Strings(keys)
	return keys
}

// Write encodes the resolver's tree snapshot as indented JSON.
func Write(w io.Writer, r *domains.Resolver) error {
	tree, err := Snapshot(r)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}
