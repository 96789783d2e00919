package cluster

import (
	"slices"
	"testing"
)

func TestDisjointSetUnionAndGroups(t *testing.T) {
	ds := newDisjointSet(6)
	if !ds.union(0, 1) {
		t.Fatal("expected first union to merge")
	}
	if !ds.union(2, 1) {
		t.Fatal("expected second union to merge")
	}
	if ds.union(0, 2) {
		t.Fatal("expected repeated union to be a no-op")
	}
	ds.union(4, 5)

	groups := ds.groups(2)
	for _, g := range groups {
		slices.Sort(g)
	}
	slices.SortFunc(groups, func(a, b []int) int { return slices.Compare(a, b) })
	want := [][]int{{0, 1, 2}, {4, 5}}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %v", len(want), groups)
	}
	for i := range want {
		if !slices.Equal(groups[i], want[i]) {
			t.Fatalf("group %d: got %v want %v", i, groups[i], want[i])
		}
	}
	if ds.find(3) != 3 {
		t.Fatal("expected untouched element to remain its own root")
	}
}

func TestDisjointSetPathCompression(t *testing.T) {
	ds := newDisjointSet(5)
	for i := 1; i < 5; i++ {
		ds.union(i-1, i)
	}
	root := ds.find(4)
	for i := range 5 {
		if ds.find(i) != root {
			t.Fatalf("element %d not in root set", i)
		}
		if ds.parent[i] != root {
			t.Fatalf("expected element %d to point directly at root after find", i)
		}
	}
	if ds.size[root] != 5 {
		t.Fatalf("expected root size 5, got %d", ds.size[root])
	}
}
