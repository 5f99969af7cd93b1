// Package framebuffer implements an owning or borrowing pixel buffer with
// per-row access, fills, blits, sub-views, RLE/palette/weight extraction,
// and a built-in bitmap font renderer.
package framebuffer

import (
	"fmt"

	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
)

// Framebuffer is {pixelFormat, pitch, buffer, region, owner flag}. A
// sub-view shares its parent's buffer and pitch; row addresses are computed
// relative to the parent's origin.
type Framebuffer struct {
	format pixfmt.PixelFormat
	pitch  int // bytes per row; >= width*bytesPerPixel
	buf    []byte
	reg    region.Region
	owner  bool

	// originX/originY locate this view's (0,0) within buf, for sub-views
	// that share a parent's storage. An owning framebuffer always has
	// originX = originY = 0 and reg.X = reg.Y = 0.
	originX, originY int
}

// New allocates an owning, zeroed framebuffer covering w x h pixels in the
// given format.
func New(format pixfmt.PixelFormat, w, h int) *Framebuffer {
	pitch := w * format.BytesPerPixel()
	return &Framebuffer{
		format: format,
		pitch:  pitch,
		buf:    make([]byte, pitch*h),
		reg:    region.New(0, 0, w, h),
		owner:  true,
	}
}

// Borrow wraps externally-owned storage. The caller guarantees buf outlives
// the Framebuffer. pitch must be >= w*bytesPerPixel.
func Borrow(format pixfmt.PixelFormat, buf []byte, pitch, w, h int) (*Framebuffer, error) {
	if pitch < w*format.BytesPerPixel() {
		return nil, fmt.Errorf("framebuffer: pitch %d too small for width %d at %d bytes/px", pitch, w, format.BytesPerPixel())
	}
	return &Framebuffer{
		format: format,
		pitch:  pitch,
		buf:    buf,
		reg:    region.New(0, 0, w, h),
		owner:  false,
	}, nil
}

// Format returns the framebuffer's pixel format.
func (fb *Framebuffer) Format() pixfmt.PixelFormat { return fb.format }

// Region returns the (0,0)-origin region covering this framebuffer's extent.
func (fb *Framebuffer) Region() region.Region { return fb.reg }

// Pitch returns bytes per row.
func (fb *Framebuffer) Pitch() int { return fb.pitch }

// Owner reports whether this framebuffer owns its backing storage.
func (fb *Framebuffer) Owner() bool { return fb.owner }

// rowOffset returns the byte offset of row y (local coordinates) within buf.
func (fb *Framebuffer) rowOffset(y int) int {
	return fb.pitch*(y+fb.originY) + fb.originX*fb.format.BytesPerPixel()
}

// Row returns a slice over row y's pixel bytes (width*bytesPerPixel long).
func (fb *Framebuffer) Row(y int) []byte {
	bpp := fb.format.BytesPerPixel()
	off := fb.rowOffset(y)
	return fb.buf[off : off+int(fb.reg.Width)*bpp]
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < int(fb.reg.Width) && y < int(fb.reg.Height)
}

// readNative reads a format.BytesPerPixel()-wide value at (x,y), honoring
// the format's declared endianness explicitly (never a host-endian store),
// including the 24-bit case where three bytes must be assembled by hand.
func (fb *Framebuffer) readNative(x, y int) uint32 {
	bpp := fb.format.BytesPerPixel()
	row := fb.Row(y)
	b := row[x*bpp : x*bpp+bpp]
	var v uint32
	if fb.format.BigEndian {
		for i := 0; i < bpp; i++ {
			v = v<<8 | uint32(b[i])
		}
	} else {
		for i := bpp - 1; i >= 0; i-- {
			v = v<<8 | uint32(b[i])
		}
	}
	return v
}

func (fb *Framebuffer) writeNative(x, y int, v uint32) {
	bpp := fb.format.BytesPerPixel()
	row := fb.Row(y)
	b := row[x*bpp : x*bpp+bpp]
	if fb.format.BigEndian {
		for i := bpp - 1; i >= 0; i-- {
			b[i] = byte(v)
			v >>= 8
		}
	} else {
		for i := 0; i < bpp; i++ {
			b[i] = byte(v)
			v >>= 8
		}
	}
}

// Pixel reads the native-format pixel value at point (x,y).
func (fb *Framebuffer) Pixel(x, y int) uint32 {
	if !fb.inBounds(x, y) {
		panic(fmt.Sprintf("framebuffer: Pixel(%d,%d) out of bounds %v", x, y, fb.reg))
	}
	return fb.readNative(x, y)
}

// SetPixel writes a pixel at (x,y). If srcFormat is non-nil and differs
// from this framebuffer's format, the value is converted first.
func (fb *Framebuffer) SetPixel(x, y int, v uint32, srcFormat *pixfmt.PixelFormat) {
	if !fb.inBounds(x, y) {
		panic(fmt.Sprintf("framebuffer: SetPixel(%d,%d) out of bounds %v", x, y, fb.reg))
	}
	if srcFormat != nil && *srcFormat != fb.format {
		v = pixfmt.Convert(v, *srcFormat, fb.format)
	}
	fb.writeNative(x, y, v)
}

// SetColor writes a Color, packed via this framebuffer's own format.
func (fb *Framebuffer) SetColor(x, y int, c pixfmt.Color) {
	fb.SetPixel(x, y, fb.format.Pixel(c), nil)
}

// FillPixel fills every point of r with a native-format pixel value.
func (fb *Framebuffer) FillPixel(r region.Region, v uint32, srcFormat *pixfmt.PixelFormat) {
	if srcFormat != nil && *srcFormat != fb.format {
		v = pixfmt.Convert(v, *srcFormat, fb.format)
	}
	r = region.Intersect(r, fb.reg)
	for y := int(r.Y); y < r.Bottom(); y++ {
		for x := int(r.X); x < r.Right(); x++ {
			fb.writeNative(x, y, v)
		}
	}
}

// FillColor fills every point of r with c.
func (fb *Framebuffer) FillColor(r region.Region, c pixfmt.Color) {
	fb.FillPixel(r, fb.format.Pixel(c), nil)
}

// DrawLine fills a single-pixel-thick horizontal or vertical run. It is the
// primitive DrawRect composes into a one-pixel outline, grounded on
// LTSM's ltsm_render_primitives.cpp decomposition of a rect outline into
// four line fills.
func (fb *Framebuffer) DrawLine(x, y, w, h int, c pixfmt.Color) {
	fb.FillColor(region.New(x, y, w, h), c)
}

// DrawRect draws a 1-pixel outline of r in color c. A rectangle degenerate
// in one extent only plots its two corner pixels, not a full edge: exactly
// 2 pixels are painted (not w or h) when exactly one of r.Width/r.Height is 1.
func (fb *Framebuffer) DrawRect(r region.Region, c pixfmt.Color) {
	x, y, w, h := int(r.X), int(r.Y), int(r.Width), int(r.Height)
	switch {
	case w == 0 || h == 0:
		return
	case w == 1 && h == 1:
		fb.SetColor(x, y, c)
	case w == 1:
		fb.SetColor(x, y, c)
		fb.SetColor(x, y+h-1, c)
	case h == 1:
		fb.SetColor(x, y, c)
		fb.SetColor(x+w-1, y, c)
	default:
		fb.DrawLine(x, y, w, 1, c)         // top
		fb.DrawLine(x, y+h-1, w, 1, c)     // bottom
		fb.DrawLine(x, y+1, 1, h-2, c)     // left
		fb.DrawLine(x+w-1, y+1, 1, h-2, c) // right
	}
}

// BlitRegion copies srcRegion from src into this framebuffer at dstPoint.
// When formats match this is a per-row memcpy honoring both pitches;
// otherwise it converts pixel-by-pixel.
func (fb *Framebuffer) BlitRegion(src *Framebuffer, srcRegion region.Region, dstX, dstY int) {
	w := minInt(int(srcRegion.Width), int(fb.reg.Width)-dstX)
	h := minInt(int(srcRegion.Height), int(fb.reg.Height)-dstY)
	if w <= 0 || h <= 0 {
		return
	}
	sameFormat := src.format == fb.format
	bpp := fb.format.BytesPerPixel()
	for row := 0; row < h; row++ {
		sy := int(srcRegion.Y) + row
		dy := dstY + row
		if sameFormat {
			srow := src.Row(sy)
			drow := fb.Row(dy)
			copy(drow[dstX*bpp:(dstX+w)*bpp], srow[int(srcRegion.X)*bpp:(int(srcRegion.X)+w)*bpp])
			continue
		}
		for col := 0; col < w; col++ {
			sx := int(srcRegion.X) + col
			v := src.readNative(sx, sy)
			fb.SetPixel(dstX+col, dy, v, &src.format)
		}
	}
}

// CopyRegion returns an owning sub-framebuffer of r in the same format.
func (fb *Framebuffer) CopyRegion(r region.Region) *Framebuffer {
	return fb.CopyRegionFormat(r, fb.format)
}

// CopyRegionFormat returns an owning sub-framebuffer of r, possibly
// converted to a different pixel format.
func (fb *Framebuffer) CopyRegionFormat(r region.Region, format pixfmt.PixelFormat) *Framebuffer {
	r = region.Intersect(r, fb.reg)
	out := New(format, int(r.Width), int(r.Height))
	out.BlitRegion(fb, r, 0, 0)
	return out
}

// View returns a non-owning sub-framebuffer sharing this framebuffer's
// storage and pitch. The parent must outlive the returned view.
func (fb *Framebuffer) View(r region.Region) *Framebuffer {
	r = region.Intersect(r, fb.reg)
	return &Framebuffer{
		format:  fb.format,
		pitch:   fb.pitch,
		buf:     fb.buf,
		reg:     region.New(0, 0, int(r.Width), int(r.Height)),
		owner:   false,
		originX: fb.originX + int(r.X),
		originY: fb.originY + int(r.Y),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
