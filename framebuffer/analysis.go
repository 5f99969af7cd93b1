package framebuffer

import (
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
)

// PixelLengthRun is (pixel, length) for RLE streams.
type PixelLengthRun struct {
	Pixel  uint32
	Length int
}

// ToRLE performs a row-major traversal of r, merging consecutive equal
// pixels. Runs never cross rows: each row begins a fresh run. The total of
// all run lengths always equals r.Width * r.Height.
func (fb *Framebuffer) ToRLE(r region.Region) []PixelLengthRun {
	r = region.Intersect(r, fb.reg)
	var runs []PixelLengthRun
	for y := int(r.Y); y < r.Bottom(); y++ {
		var cur uint32
		count := 0
		for x := int(r.X); x < r.Right(); x++ {
			v := fb.readNative(x, y)
			if count > 0 && v == cur {
				count++
				continue
			}
			if count > 0 {
				runs = append(runs, PixelLengthRun{Pixel: cur, Length: count})
			}
			cur, count = v, 1
		}
		if count > 0 {
			runs = append(runs, PixelLengthRun{Pixel: cur, Length: count})
		}
	}
	return runs
}

// PixelMapPalette returns a map from native pixel value to a dense index
// 0..n-1. Insertion order is irrelevant; only that indices are contiguous.
func (fb *Framebuffer) PixelMapPalette(r region.Region) map[uint32]int {
	r = region.Intersect(r, fb.reg)
	out := make(map[uint32]int)
	for y := int(r.Y); y < r.Bottom(); y++ {
		for x := int(r.X); x < r.Right(); x++ {
			v := fb.readNative(x, y)
			if _, ok := out[v]; !ok {
				out[v] = len(out)
			}
		}
	}
	return out
}

// PixelMapWeight returns a histogram of native pixel value -> occurrence count.
func (fb *Framebuffer) PixelMapWeight(r region.Region) map[uint32]int {
	r = region.Intersect(r, fb.reg)
	out := make(map[uint32]int)
	for y := int(r.Y); y < r.Bottom(); y++ {
		for x := int(r.X); x < r.Right(); x++ {
			out[fb.readNative(x, y)]++
		}
	}
	return out
}

// MaxWeightPixel returns the most frequent pixel value in weights, and
// whether weights was non-empty.
func MaxWeightPixel(weights map[uint32]int) (uint32, bool) {
	var best uint32
	bestCount := -1
	found := false
	for p, n := range weights {
		if n > bestCount || (n == bestCount && p < best) {
			best, bestCount, found = p, n, true
		}
	}
	return best, found
}

// AllOfPixel reports whether every point of r holds exactly pixel.
func (fb *Framebuffer) AllOfPixel(pixel uint32, r region.Region) bool {
	r = region.Intersect(r, fb.reg)
	for y := int(r.Y); y < r.Bottom(); y++ {
		for x := int(r.X); x < r.Right(); x++ {
			if fb.readNative(x, y) != pixel {
				return false
			}
		}
	}
	return true
}

// ColourMap returns the distinct set of Colors present across the whole
// framebuffer.
func (fb *Framebuffer) ColourMap() map[pixfmt.Color]struct{} {
	out := make(map[pixfmt.Color]struct{})
	for y := 0; y < int(fb.reg.Height); y++ {
		for x := 0; x < int(fb.reg.Width); x++ {
			out[fb.format.Color(fb.readNative(x, y))] = struct{}{}
		}
	}
	return out
}
