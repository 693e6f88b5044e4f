package ordered_test

import (
	"testing"

	"github.com/loopgen-org/loopgen/base/ordered"
)

type entry struct {
	k string
	v int
}

func TestMap(t *testing.T) {
	tests := []struct {
		entries []entry
		want    []entry
	}{
		{
			entries: []entry{
				{k: "a", v: 1},
				{k: "b", v: 2},
				{k: "c", v: 3},
			},
			want: []entry{
				{k: "a", v: 1},
				{k: "b", v: 2},
				{k: "c", v: 3},
			},
		},
		{
			entries: []entry{
				{k: "a", v: 1},
				{k: "b", v: 2},
				{k: "a", v: 3},
			},
			want: []entry{
				{k: "a", v: 3},
				{k: "b", v: 2},
			},
		},
		{
			entries: []entry{
				{k: "a", v: 1},
				{k: "a", v: 2},
				{k: "a", v: 3},
				{k: "a", v: 4},
			},
			want: []entry{
				{k: "a", v: 4},
			},
		},
	}
	for ti, test := range tests {
		m := ordered.NewMap[string, int]()
		for _, entry := range test.entries {
			m.Store(entry.k, entry.v)
		}
		if m.Size() != len(test.want) {
			t.Errorf("test %d: map has %d entries but want %d", ti, m.Size(), len(test.want))
			continue
		}

		// Clone the map before the tests.
		m = m.Clone()

		i := 0
		for gotK, gotV := range m.Iter() {
			wantK, wantV := test.want[i].k, test.want[i].v
			if gotK != wantK || gotV != wantV {
				t.Errorf("test %d entry %d: got %s->%d but want %s->%d", ti, i, gotK, gotV, wantK, wantV)
			}
			i++
		}
	}
}

func TestMapDelete(t *testing.T) {
	m := ordered.NewMap[string, int]()
	for i, k := range []string{"a", "b", "c", "d"} {
		m.Store(k, i)
	}
	m.Delete("b")
	m.Delete("nothere")
	if m.Has("b") {
		t.Errorf("key b still present after Delete")
	}
	want := []string{"a", "c", "d"}
	i := 0
	for k := range m.Keys() {
		if k != want[i] {
			t.Errorf("key %d: got %s but want %s", i, k, want[i])
		}
		i++
	}
	if i != len(want) {
		t.Errorf("got %d keys but want %d", i, len(want))
	}
}

func TestSet(t *testing.T) {
	s := ordered.NewSet("a", "b", "a", "c")
	if s.Size() != 3 {
		t.Errorf("set has %d elements but want 3", s.Size())
	}
	if !s.Has("b") {
		t.Errorf("set is missing element b")
	}
	s.Remove("b")
	if s.Has("b") {
		t.Errorf("element b still present after Remove")
	}
	got := s.Clone().Elements()
	want := []string{"a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %d elements but want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: got %s but want %s", i, got[i], want[i])
		}
	}
}
