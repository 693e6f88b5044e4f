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

import "fmt"

// Transform relates a child domain to its parent's resolved loop
// variable: through a lookup table, a constant offset, or both. A nil
// transform is the identity. Transforms are immutable values compared
// structurally; nodes whose transforms compare equal share one
// generated instruction.
type Transform struct {
	table     string
	offset    int
	hasOffset bool
}

// Table is the name of the lookup-table array, empty for a purely
// affine transform.
func (t *Transform) Table() string { return t.table }

// Offset returns the constant offset, if any.
func (t *Transform) Offset() (int, bool) { return t.offset, t.hasOffset }

// IsAffine returns true when the transform folds into the access
// expression without a separate instruction.
func (t *Transform) IsAffine() bool { return t.hasOffset }

// Equal returns true if both transforms use the same lookup table and
// the same offset.
func (t *Transform) Equal(o *Transform) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.table == o.table && t.offset == o.offset && t.hasOffset == o.hasOffset
}

func (t *Transform) key() string {
	if t.hasOffset {
		return fmt.Sprintf("%s%+d", t.table, t.offset)
	}
	return t.table
}

// String representation of the transform.
func (t *Transform) String() string {
	if t == nil {
		return "identity"
	}
	return t.key()
}

// renderInstruction renders the single-assignment lookup line mapping
// oldname to newname through the table, with an optional offset.
func renderInstruction(oldname, newname, table string, offset int) string {
	insn := fmt.Sprintf("%s = %s[%s]", newname, table, oldname)
	if offset != 0 {
		insn += renderOffset(offset)
	}
	return insn
}

// renderAffine folds a constant offset into a loop-variable expression.
func renderAffine(iname string, offset int) string {
	if offset == 0 {
		return iname
	}
	return iname + renderOffset(offset)
}

func renderOffset(offset int) string {
	if offset < 0 {
		return fmt.Sprintf(" - %d", -offset)
	}
	return fmt.Sprintf(" + %d", offset)
}
