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

package dump_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/loopgen-org/loopgen/codegen/arrays"
	"github.com/loopgen-org/loopgen/codegen/domains"
	"github.com/loopgen-org/loopgen/codegen/dump"
	"github.com/loopgen-org/loopgen/codegen/genopts"
)

func intDomain(t *testing.T, name string, vals ...int32) *arrays.Descriptor {
	t.Helper()
	d, err := arrays.New(name, arrays.Int32, arrays.Dims(len(vals)),
		arrays.WithValues(arrays.IntValues(vals...)))
	if err != nil {
		t.Fatalf("cannot build domain %s: %v", name, err)
	}
	return d
}

func resolver(t *testing.T) *domains.Resolver {
	t.Helper()
	base := intDomain(t, "net", 0, 1, 2, 3, 4)
	r, err := domains.New(genopts.Default(), base, base)
	if err != nil {
		t.Fatalf("cannot build resolver: %v", err)
	}
	x, err := arrays.New("x", arrays.Float64, arrays.Dims(4, 3))
	if err != nil {
		t.Fatalf("cannot build array: %v", err)
	}
	if err := r.Register(x, intDomain(t, "dom", 0, 2, 4)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return r
}

func TestSnapshot(t *testing.T) {
	tree, err := dump.Snapshot(resolver(t))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	want := &dump.Tree{
		Mode:         "map",
		LoopVariable: "i",
		Bounds:       "0 <= i <= 4",
		Instructions: []string{"i_0 = dom[i]"},
		Tables:       []string{"dom"},
		Root: &dump.Node{
			Array: "net",
			Iname: "i",
			Children: []*dump.Node{{
				Array:       "dom",
				Iname:       "i_0",
				Instruction: "i_0 = dom[i]",
				Children: []*dump.Node{{
					Array: "x",
					Iname: "i_0",
					Leaf:  true,
				}},
			}},
		},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	r := resolver(t)
	var buf bytes.Buffer
	if err := dump.Write(&buf, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got dump.Tree
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want, err := dump.Snapshot(r)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if diff := cmp.Diff(want, &got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
