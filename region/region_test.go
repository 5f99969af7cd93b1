package region

import "testing"

func TestIntersect(t *testing.T) {
	a := New(0, 0, 10, 10)
	b := New(5, 5, 10, 10)
	got := Intersect(a, b)
	want := New(5, 5, 5, 5)
	if got != want {
		t.Errorf("Intersect(%v, %v) = %v, want %v", a, b, got, want)
	}

	c := New(20, 20, 5, 5)
	if got := Intersect(a, c); !got.Empty() {
		t.Errorf("Intersect of disjoint regions = %v, want Empty", got)
	}

	if Intersect(a, b) != Intersect(b, a) {
		t.Errorf("Intersect is not commutative")
	}
}

func TestUnionAbsorbsEmpty(t *testing.T) {
	a := New(1, 1, 3, 3)
	empty := Region{}
	if got := Union(a, empty); got != a {
		t.Errorf("Union(a, empty) = %v, want %v", got, a)
	}
	if got := Union(empty, a); got != a {
		t.Errorf("Union(empty, a) = %v, want %v", got, a)
	}
}

func TestUnionEncloses(t *testing.T) {
	a := New(0, 0, 4, 4)
	b := New(8, 8, 4, 4)
	got := Union(a, b)
	want := New(0, 0, 12, 12)
	if got != want {
		t.Errorf("Union(%v, %v) = %v, want %v", a, b, got, want)
	}
}

func TestAlign(t *testing.T) {
	r := New(3, 3, 10, 10)
	got := r.Align(16)
	want := New(0, 0, 16, 16)
	if got != want {
		t.Errorf("Align(16) = %v, want %v", got, want)
	}
}

func TestDivideBlocksClipsEdges(t *testing.T) {
	r := New(0, 0, 20, 10)
	tiles := r.DivideBlocks(16)
	if len(tiles) != 2 {
		t.Fatalf("got %d tiles, want 2", len(tiles))
	}
	if tiles[0] != New(0, 0, 16, 10) {
		t.Errorf("tile 0 = %v, want {0,0,16,10}", tiles[0])
	}
	if tiles[1] != New(16, 0, 4, 10) {
		t.Errorf("tile 1 = %v, want {16,0,4,10}", tiles[1])
	}
}

func TestDivideBlocksEmptyRegion(t *testing.T) {
	if tiles := (Region{}).DivideBlocks(16); tiles != nil {
		t.Errorf("DivideBlocks on empty region = %v, want nil", tiles)
	}
}
