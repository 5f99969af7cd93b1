package transport

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// WrapZlib decorates an existing Transport with a persistent zlib deflate
// context on the write side and a persistent inflate context on the read
// side, as used by encoding.ZlibEncoder: the deflate stream spans the
// wrapped Transport's whole lifetime, not just one rectangle, so the
// dictionary built up by earlier rectangles compresses later ones.
func WrapZlib(inner *Transport) *Transport {
	zrw := &zlibReadWriter{inner: inner}
	t := New(zrw, inner)
	return t.withExtraInput(func() bool { return zrw.inflated.Len() > 0 })
}

// zlibReadWriter multiplexes a single persistent deflate context (writes)
// and a single persistent inflate context (reads) over inner's raw byte
// stream. Each Write call flushes with Z_SYNC_FLUSH so the peer can
// decompress exactly the bytes written so far without waiting for more.
type zlibReadWriter struct {
	inner *Transport

	deflate    *zlib.Writer
	deflateBuf bytes.Buffer

	inflate  io.ReadCloser
	inflated bytes.Buffer
	inSrc    *chunkReader
}

func (z *zlibReadWriter) Write(p []byte) (int, error) {
	if z.deflate == nil {
		z.deflate = zlib.NewWriter(&z.deflateBuf)
	}
	n, err := z.deflate.Write(p)
	if err != nil {
		return n, fmt.Errorf("transport: zlib deflate: %w", err)
	}
	// Z_SYNC_FLUSH semantics: emit everything buffered so the peer's
	// inflate context can make progress without a second write.
	if err := z.deflate.Flush(); err != nil {
		return n, fmt.Errorf("transport: zlib flush: %w", err)
	}
	out := z.deflateBuf.Bytes()
	if len(out) > 0 {
		if _, err := z.inner.Stream.SendBytes(out); err != nil {
			return n, err
		}
		if err := z.inner.Stream.Flush(); err != nil {
			return n, err
		}
		z.deflateBuf.Reset()
	}
	return n, nil
}

func (z *zlibReadWriter) Read(p []byte) (int, error) {
	for z.inflated.Len() == 0 {
		if err := z.fillInflate(); err != nil {
			return 0, err
		}
	}
	return z.inflated.Read(p)
}

// fillInflate pulls whatever raw compressed bytes are currently available
// off the wire and feeds them through the inflate context, appending any
// decompressed output to z.inflated. It blocks for at least one byte.
func (z *zlibReadWriter) fillInflate() error {
	if z.inSrc == nil {
		z.inSrc = &chunkReader{src: z.inner.Stream}
	}
	b, err := z.inner.Stream.RecvU8()
	if err != nil {
		return err
	}
	z.inSrc.push(b)
	if z.inflate == nil {
		r, err := zlib.NewReader(z.inSrc)
		if err != nil {
			return fmt.Errorf("transport: zlib inflate init: %w", err)
		}
		z.inflate = r
	}
	buf := make([]byte, 4096)
	n, err := z.inflate.Read(buf)
	if n > 0 {
		z.inflated.Write(buf[:n])
	}
	if err != nil && err != io.EOF {
		return fmt.Errorf("transport: zlib inflate: %w", err)
	}
	return nil
}

// chunkReader feeds a zlib.Reader from bytes pushed one at a time, since
// the only framing the wire protocol gives us for a persistent deflate
// stream is "keep reading until the decoder is satisfied".
type chunkReader struct {
	src  interface{ RecvU8() (uint8, error) }
	pend []byte
}

func (c *chunkReader) push(b byte) { c.pend = append(c.pend, b) }

func (c *chunkReader) Read(p []byte) (int, error) {
	for len(c.pend) == 0 {
		b, err := c.src.RecvU8()
		if err != nil {
			return 0, err
		}
		c.pend = append(c.pend, b)
	}
	n := copy(p, c.pend)
	c.pend = c.pend[n:]
	return n, nil
}
