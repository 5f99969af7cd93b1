package framebuffer

import (
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
)

// Font is a fixed-width bitmap font baked into the binary as a read-only
// blob. Glyph i occupies bytes[i*height : i*height+height], one byte per
// row, MSB first column.
type Font struct {
	Width, Height int
	Bytes         []byte
}

// DefaultFont is the built-in 8x16 PSF1-style banner font covering the
// printable ASCII range (0x20..0x7e). Non-printable code points render as
// a no-op.
var DefaultFont = Font{Width: 8, Height: 16, Bytes: psf8x16}

func (f Font) glyph(ch rune) ([]byte, bool) {
	if ch < 0x20 || ch > 0x7e {
		return nil, false
	}
	idx := int(ch - 0x20)
	off := idx * f.Height
	if off+f.Height > len(f.Bytes) {
		return nil, false
	}
	return f.Bytes[off : off+f.Height], true
}

// RenderChar draws one glyph at point (x,y) in color c. Non-printable
// characters are a no-op.
func (fb *Framebuffer) RenderChar(font Font, ch rune, c pixfmt.Color, x, y int) {
	rows, ok := font.glyph(ch)
	if !ok {
		return
	}
	for row, bits := range rows {
		py := y + row
		if py < 0 || py >= int(fb.reg.Height) {
			continue
		}
		for col := 0; col < font.Width; col++ {
			if bits&(0x80>>uint(col)) == 0 {
				continue
			}
			px := x + col
			if px < 0 || px >= int(fb.reg.Width) {
				continue
			}
			fb.SetColor(px, py, c)
		}
	}
}

// RenderText draws a string starting at origin, advancing font.Width pixels
// per character.
func (fb *Framebuffer) RenderText(font Font, text string, c pixfmt.Color, x, y int) {
	cx := x
	for _, ch := range text {
		fb.RenderChar(font, ch, c, cx, y)
		cx += font.Width
	}
}

// regionForText returns the bounding region a banner of text would occupy,
// useful for callers that want to damage just the drawn area.
func regionForText(font Font, text string, x, y int) region.Region {
	return region.New(x, y, font.Width*len([]rune(text)), font.Height)
}
