// Package region implements the integer rectangle model used throughout
// the engine: intersection, union, tile division, and a row-major point
// iterator.
package region

// Region is {x, y, width, height}: a signed 16-bit origin and unsigned
// 16-bit extent.
type Region struct {
	X, Y          int16
	Width, Height uint16
}

// New builds a Region from plain ints, truncating to the wire's signed
// 16-bit / unsigned 16-bit ranges.
func New(x, y int, w, h int) Region {
	return Region{X: int16(x), Y: int16(y), Width: uint16(w), Height: uint16(h)}
}

// Invalid is the sentinel "no region" value: x = y = -1 and empty.
var Invalid = Region{X: -1, Y: -1}

// Empty reports whether the region covers zero area.
func (r Region) Empty() bool { return r.Width == 0 || r.Height == 0 }

// IsInvalid reports whether r is the invalid sentinel.
func (r Region) IsInvalid() bool { return r.X == -1 && r.Y == -1 && r.Empty() }

// Right and Bottom return the exclusive edges of the region.
func (r Region) Right() int  { return int(r.X) + int(r.Width) }
func (r Region) Bottom() int { return int(r.Y) + int(r.Height) }

// Area returns width*height as an int to avoid uint16 overflow on 65535^2.
func (r Region) Area() int { return int(r.Width) * int(r.Height) }

// Contains reports whether the point (x, y) lies within the region.
func (r Region) Contains(x, y int) bool {
	return x >= int(r.X) && x < r.Right() && y >= int(r.Y) && y < r.Bottom()
}

// Intersect returns the overlapping region of a and b. The result is empty
// (not necessarily the Invalid sentinel) when there is no overlap.
// Intersect(a, b) == Intersect(b, a).
func Intersect(a, b Region) Region {
	x0 := max16(a.X, b.X)
	y0 := max16(a.Y, b.Y)
	x1 := minInt(a.Right(), b.Right())
	y1 := minInt(a.Bottom(), b.Bottom())
	if int(x0) >= x1 || int(y0) >= y1 {
		return Region{}
	}
	return Region{X: x0, Y: y0, Width: uint16(x1 - int(x0)), Height: uint16(y1 - int(y0))}
}

// Union returns the smallest region enclosing both a and b. Union treats an
// empty operand as absorbing: the other operand is returned unchanged.
func Union(a, b Region) Region {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}
	x0 := min16(a.X, b.X)
	y0 := min16(a.Y, b.Y)
	x1 := maxInt(a.Right(), b.Right())
	y1 := maxInt(a.Bottom(), b.Bottom())
	return Region{X: x0, Y: y0, Width: uint16(x1 - int(x0)), Height: uint16(y1 - int(y0))}
}

// Align expands the region so x, y, width and height all become multiples
// of n (used by RandR-driven screen sizing, which requires width to be a
// multiple of 8).
func (r Region) Align(n int) Region {
	if n <= 1 {
		return r
	}
	x0 := floorN(int(r.X), n)
	y0 := floorN(int(r.Y), n)
	x1 := ceilN(r.Right(), n)
	y1 := ceilN(r.Bottom(), n)
	return Region{X: int16(x0), Y: int16(y0), Width: uint16(x1 - x0), Height: uint16(y1 - y0)}
}

func floorN(v, n int) int {
	if v >= 0 {
		return (v / n) * n
	}
	return -(((-v) + n - 1) / n) * n
}

func ceilN(v, n int) int { return ((v + n - 1) / n) * n }

// DivideBlocks partitions r into tiles of size x size, row-major, clipping
// the final column/row to the region's edge.
func (r Region) DivideBlocks(size int) []Region {
	if size <= 0 || r.Empty() {
		return nil
	}
	var tiles []Region
	for ty := int(r.Y); ty < r.Bottom(); ty += size {
		th := minInt(size, r.Bottom()-ty)
		for tx := int(r.X); tx < r.Right(); tx += size {
			tw := minInt(size, r.Right()-tx)
			tiles = append(tiles, New(tx, ty, tw, th))
		}
	}
	return tiles
}

func max16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}

func min16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
