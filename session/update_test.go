package session

import (
	"testing"

	"github.com/ltsm/rfbcore/encoding"
	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/region"
)

func TestSplitForEncoderLeavesOtherEncodersAlone(t *testing.T) {
	rects := []region.Region{region.New(0, 0, 600, 300)}
	for _, enc := range []encoding.Encoder{encoding.RawEncoder{}, encoding.RREEncoder{}, encoding.HextileEncoder{}} {
		got := splitForEncoder(enc, rects)
		if len(got) != 1 || got[0] != rects[0] {
			t.Errorf("%v: splitForEncoder = %v, want unchanged %v", enc.Type(), got, rects)
		}
	}
}

func TestSplitForEncoderBoundsCoRRERectangles(t *testing.T) {
	rects := []region.Region{region.New(0, 0, 600, 300)}
	split := splitForEncoder(encoding.CoRREEncoder{}, rects)
	if len(split) <= 1 {
		t.Fatalf("len(split) = %d, want more than 1 for a 600x300 rect", len(split))
	}
	for _, r := range split {
		if int(r.Width) > encoding.CoRREMaxExtent || int(r.Height) > encoding.CoRREMaxExtent {
			t.Errorf("split rect %dx%d exceeds %dx%d", r.Width, r.Height, encoding.CoRREMaxExtent, encoding.CoRREMaxExtent)
		}
	}
}

func TestNewEncoderForCoRREAndZlib(t *testing.T) {
	enc, ok := newEncoderFor(encodings.CoRRE)
	if !ok {
		t.Fatalf("newEncoderFor(CoRRE): not ok")
	}
	if _, isCoRRE := enc.(encoding.CoRREEncoder); !isCoRRE {
		t.Errorf("newEncoderFor(CoRRE) = %T, want encoding.CoRREEncoder", enc)
	}

	enc, ok = newEncoderFor(encodings.Zlib)
	if !ok {
		t.Fatalf("newEncoderFor(Zlib): not ok")
	}
	if _, isZlib := enc.(*encoding.ZlibEncoder); !isZlib {
		t.Errorf("newEncoderFor(Zlib) = %T, want *encoding.ZlibEncoder", enc)
	}
}
