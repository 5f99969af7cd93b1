package encoding

import (
	"context"
	"testing"

	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
)

func TestEncodeParallelPreservesOrder(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 8, 8)
	for i, c := range []pixfmt.Color{{R: 1}, {R: 2}, {R: 3}, {R: 4}} {
		fb.FillColor(region.New(i*2, 0, 2, 2), c)
	}
	rects := []region.Region{
		region.New(0, 0, 2, 2),
		region.New(2, 0, 2, 2),
		region.New(4, 0, 2, 2),
		region.New(6, 0, 2, 2),
	}

	results, err := EncodeParallel(context.Background(), fb, rects, format, func() Encoder { return RawEncoder{} }, 0)
	if err != nil {
		t.Fatalf("EncodeParallel: %v", err)
	}
	if len(results) != len(rects) {
		t.Fatalf("got %d results, want %d", len(results), len(rects))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d, want %d", i, r.Index, i)
		}
		if r.Rect != rects[i] {
			t.Errorf("results[%d].Rect = %v, want %v", i, r.Rect, rects[i])
		}
		if len(r.Body) != 4*4 { // 2x2 pixels, 4 bytes each
			t.Errorf("results[%d].Body length = %d, want 16", i, len(r.Body))
		}
	}
}

func TestEncodeParallelRespectsWorkerLimit(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 4, 4)
	rects := []region.Region{
		region.New(0, 0, 1, 1),
		region.New(1, 0, 1, 1),
		region.New(2, 0, 1, 1),
	}
	results, err := EncodeParallel(context.Background(), fb, rects, format, func() Encoder { return RawEncoder{} }, 1)
	if err != nil {
		t.Fatalf("EncodeParallel with maxWorkers=1: %v", err)
	}
	if len(results) != len(rects) {
		t.Fatalf("got %d results, want %d", len(results), len(rects))
	}
}
