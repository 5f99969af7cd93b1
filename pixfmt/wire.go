package pixfmt

import "github.com/ltsm/rfbcore/stream"

// WireSize is the fixed 16-byte wire representation of a PixelFormat.
// RFB's wire format carries no alpha channel; Alpha is an
// engine-internal concept used for the server's own ARGB framebuffers.
const WireSize = 16

// Marshal writes the 16-byte wire PixelFormat. Multi-byte integers are
// always big-endian on the wire, regardless of the format's
// own BigEndian flag (which instead governs pixel *data*, not this header).
func (f PixelFormat) Marshal(s *stream.Stream) error {
	trueColor := uint8(0)
	if f.TrueColor {
		trueColor = 1
	}
	bigEndian := uint8(0)
	if f.BigEndian {
		bigEndian = 1
	}
	if err := s.SendU8(f.BitsPerPixel); err != nil {
		return err
	}
	if err := s.SendU8(f.Depth); err != nil {
		return err
	}
	if err := s.SendU8(bigEndian); err != nil {
		return err
	}
	if err := s.SendU8(trueColor); err != nil {
		return err
	}
	if err := s.SendU16BE(f.Red.Max); err != nil {
		return err
	}
	if err := s.SendU16BE(f.Green.Max); err != nil {
		return err
	}
	if err := s.SendU16BE(f.Blue.Max); err != nil {
		return err
	}
	if err := s.SendU8(f.Red.Shift); err != nil {
		return err
	}
	if err := s.SendU8(f.Green.Shift); err != nil {
		return err
	}
	if err := s.SendU8(f.Blue.Shift); err != nil {
		return err
	}
	return s.SendBytes([]byte{0, 0, 0})
}

// Unmarshal reads a 16-byte wire PixelFormat and validates it via New.
func Unmarshal(s *stream.Stream) (PixelFormat, error) {
	bpp, err := s.RecvU8()
	if err != nil {
		return PixelFormat{}, err
	}
	depth, err := s.RecvU8()
	if err != nil {
		return PixelFormat{}, err
	}
	bigEndianFlag, err := s.RecvU8()
	if err != nil {
		return PixelFormat{}, err
	}
	trueColorFlag, err := s.RecvU8()
	if err != nil {
		return PixelFormat{}, err
	}
	redMax, err := s.RecvU16BE()
	if err != nil {
		return PixelFormat{}, err
	}
	greenMax, err := s.RecvU16BE()
	if err != nil {
		return PixelFormat{}, err
	}
	blueMax, err := s.RecvU16BE()
	if err != nil {
		return PixelFormat{}, err
	}
	redShift, err := s.RecvU8()
	if err != nil {
		return PixelFormat{}, err
	}
	greenShift, err := s.RecvU8()
	if err != nil {
		return PixelFormat{}, err
	}
	blueShift, err := s.RecvU8()
	if err != nil {
		return PixelFormat{}, err
	}
	if err := s.Skip(3); err != nil {
		return PixelFormat{}, err
	}
	return New(bpp, depth, bigEndianFlag != 0, trueColorFlag != 0,
		Channel{Max: redMax, Shift: redShift},
		Channel{Max: greenMax, Shift: greenShift},
		Channel{Max: blueMax, Shift: blueShift},
		Channel{},
	)
}

// Standard returns the conventional server pixel format for a given bpp:
// true-color, native channel layout, little-endian on the wire (matching
// what most RFB servers advertise by default).
func Standard(bpp uint8) PixelFormat {
	switch bpp {
	case 8:
		f, _ := New(8, 8, false, true, Channel{7, 0}, Channel{7, 3}, Channel{3, 6}, Channel{})
		return f
	case 16:
		f, _ := New(16, 16, false, true, Channel{31, 11}, Channel{63, 5}, Channel{31, 0}, Channel{})
		return f
	case 32:
		f, _ := New(32, 24, false, true, Channel{255, 16}, Channel{255, 8}, Channel{255, 0}, Channel{})
		return f
	default:
		f, _ := New(32, 24, false, true, Channel{255, 16}, Channel{255, 8}, Channel{255, 0}, Channel{})
		return f
	}
}
