package encoding

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/stream"
)

// EncodedRect is one rectangle's fully-serialized wire bytes, tagged with
// its origin index so the sender can replay results in the original order
// even though the workers that produced them finished out of order.
type EncodedRect struct {
	Index int
	Rect  region.Region
	Body  []byte
}

// EncodeParallel fans rectangles out across a worker pool, each worker
// encoding into its own private buffer, and returns results re-ordered to
// match the input slice. Each worker gets an independent Encoder value
// (via newEncoder) since stateful encoders like *ZRLEEncoder carry a
// persistent deflate context that must not be shared across goroutines;
// the caller is responsible for serializing ZRLE output through a single
// encoder instance if wire-level dictionary continuity across rectangles
// matters more than parallelism.
// maxWorkers caps concurrent tile encoders; 0 or negative means
// unlimited (one goroutine per rectangle).
func EncodeParallel(ctx context.Context, fb *framebuffer.Framebuffer, rects []region.Region, format pixfmt.PixelFormat, newEncoder func() Encoder, maxWorkers int) ([]EncodedRect, error) {
	out := make([]EncodedRect, len(rects))
	g, ctx := errgroup.WithContext(ctx)
	if maxWorkers > 0 {
		g.SetLimit(maxWorkers)
	}
	for i, r := range rects {
		i, r := i, r
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var buf bytes.Buffer
			s := stream.New(&buf)
			enc := newEncoder()
			if err := enc.Encode(s, fb, r, format); err != nil {
				return err
			}
			out[i] = EncodedRect{Index: i, Rect: r, Body: buf.Bytes()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
