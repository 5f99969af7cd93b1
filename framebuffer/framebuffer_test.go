package framebuffer

import (
	"testing"

	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
)

func rgb888() pixfmt.PixelFormat {
	f, err := pixfmt.New(32, 24, false, true,
		pixfmt.Channel{Max: 255, Shift: 16},
		pixfmt.Channel{Max: 255, Shift: 8},
		pixfmt.Channel{Max: 255, Shift: 0},
		pixfmt.Channel{Max: 0, Shift: 0},
	)
	if err != nil {
		panic(err)
	}
	return f
}

func TestSetPixelGetPixel(t *testing.T) {
	fb := New(rgb888(), 4, 4)
	fb.SetColor(1, 2, pixfmt.Color{R: 0x10, G: 0x20, B: 0x30})
	got := fb.Format().Color(fb.Pixel(1, 2))
	if got.R != 0x10 || got.G != 0x20 || got.B != 0x30 {
		t.Errorf("Color after SetColor = %+v, want {0x10,0x20,0x30}", got)
	}
}

func TestFillColor(t *testing.T) {
	fb := New(rgb888(), 4, 4)
	fb.FillColor(region.New(0, 0, 4, 4), pixfmt.Color{R: 5, G: 6, B: 7})
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := fb.Format().Color(fb.Pixel(x, y))
			if c.R != 5 || c.G != 6 || c.B != 7 {
				t.Fatalf("Pixel(%d,%d) = %+v, want {5,6,7}", x, y, c)
			}
		}
	}
}

func TestViewSharesParentStorage(t *testing.T) {
	parent := New(rgb888(), 8, 8)
	view := parent.View(region.New(2, 2, 4, 4))
	view.SetColor(0, 0, pixfmt.Color{R: 9, G: 9, B: 9})

	c := parent.Format().Color(parent.Pixel(2, 2))
	if c.R != 9 || c.G != 9 || c.B != 9 {
		t.Errorf("write through view not visible in parent: got %+v", c)
	}
	if view.Owner() {
		t.Errorf("View().Owner() = true, want false")
	}
}

func TestBlitRegionSameFormat(t *testing.T) {
	src := New(rgb888(), 2, 2)
	src.FillColor(region.New(0, 0, 2, 2), pixfmt.Color{R: 1, G: 2, B: 3})
	dst := New(rgb888(), 4, 4)
	dst.BlitRegion(src, region.New(0, 0, 2, 2), 1, 1)

	c := dst.Format().Color(dst.Pixel(1, 1))
	if c.R != 1 || c.G != 2 || c.B != 3 {
		t.Errorf("BlitRegion dst(1,1) = %+v, want {1,2,3}", c)
	}
	c = dst.Format().Color(dst.Pixel(0, 0))
	if c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("BlitRegion wrote outside destination rect: dst(0,0) = %+v", c)
	}
}

func TestToRLEMergesRunsWithinRowOnly(t *testing.T) {
	fb := New(rgb888(), 4, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			fb.SetColor(x, y, pixfmt.Color{R: uint8(y), G: 0, B: 0})
		}
	}
	runs := fb.ToRLE(fb.Region())
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2 (one per row)", len(runs))
	}
	for _, r := range runs {
		if r.Length != 4 {
			t.Errorf("run length = %d, want 4", r.Length)
		}
	}
}

func TestPixelMapWeightAndMaxWeightPixel(t *testing.T) {
	fb := New(rgb888(), 3, 1)
	fb.SetColor(0, 0, pixfmt.Color{R: 1})
	fb.SetColor(1, 0, pixfmt.Color{R: 1})
	fb.SetColor(2, 0, pixfmt.Color{R: 2})

	weights := fb.PixelMapWeight(fb.Region())
	best, found := MaxWeightPixel(weights)
	if !found {
		t.Fatalf("MaxWeightPixel found = false")
	}
	want := fb.Format().Pixel(pixfmt.Color{R: 1})
	if best != want {
		t.Errorf("MaxWeightPixel = %#x, want %#x", best, want)
	}
}

func TestMaxWeightPixelEmpty(t *testing.T) {
	if _, found := MaxWeightPixel(map[uint32]int{}); found {
		t.Errorf("MaxWeightPixel on empty map found = true")
	}
}

func TestDrawRectDegenerateLines(t *testing.T) {
	fb := New(rgb888(), 5, 5)
	fb.DrawRect(region.New(0, 0, 1, 3), pixfmt.Color{R: 1})
	painted := 0
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if fb.Format().Color(fb.Pixel(x, y)).R == 1 {
				painted++
			}
		}
	}
	if painted != 2 {
		t.Errorf("painted %d pixels for a width-1 rect, want 2 (corners only)", painted)
	}
}
