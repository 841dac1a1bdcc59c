// Package chunkbuf presents a sequence of input byte chunks as a single
// scannable window.
//
// The tokenizer scans the window from a mark that it only moves forward at
// safe resume points (construct boundaries). While the current construct lies
// inside one input chunk the window is a subslice of that chunk and nothing
// is copied; when a construct straddles a chunk boundary the retained tail is
// spilled into an owned buffer and later chunks are appended to it. Spill
// buffers are never reused, so slices handed out from a window stay valid
// after the buffer moves on.
package chunkbuf

import (
	"errors"
	"io"
)

// Source supplies input chunks. NextChunk returns the next chunk of the
// document, or io.EOF when the input is exhausted. A returned chunk must not
// be mutated afterwards.
type Source interface {
	NextChunk() ([]byte, error)
}

// Buffer joins chunks pulled from a Source into a scan window.
type Buffer struct {
	src Source

	cur    []byte // unconsumed tail of the most recent chunk, nil once spilled
	spill  []byte // owned join buffer, set when a construct straddles chunks
	offset int64  // absolute offset of the start of the window
	final  bool   // src returned io.EOF
	srcErr error  // non-EOF source failure, sticky
}

// New returns a Buffer reading from src.
func New(src Source) *Buffer {
	return &Buffer{src: src}
}

// NewBytes returns a Buffer over a single in-memory document.
func NewBytes(buf []byte) *Buffer {
	return &Buffer{cur: buf, final: true}
}

// Window returns every loaded byte from the mark to the end of available
// input. The slice stays valid after later calls to Advance and More: the
// bytes it covers are never overwritten.
func (b *Buffer) Window() []byte {
	if b.spill != nil {
		return b.spill
	}
	return b.cur
}

// Offset returns the absolute byte offset of the start of the window.
func (b *Buffer) Offset() int64 {
	return b.offset
}

// Final reports whether the source is exhausted: once true, an incomplete
// construct in the window can never be completed.
func (b *Buffer) Final() bool {
	return b.final
}

// Err returns the sticky non-EOF source error, if any.
func (b *Buffer) Err() error {
	return b.srcErr
}

// Advance moves the mark n bytes forward, declaring everything before it a
// safe resume point. Bytes before the mark may be dropped.
func (b *Buffer) Advance(n int) {
	if b.spill != nil {
		b.spill = b.spill[n:]
		if len(b.spill) == 0 {
			b.spill = nil
		}
	} else {
		b.cur = b.cur[n:]
	}
	b.offset += int64(n)
}

// More pulls the next chunk from the source and extends the window with it.
// It reports whether the window grew. Empty chunks from the source are
// skipped. After the source reports io.EOF, More returns false and Final
// turns true. A non-EOF source error is sticky and reported by Err.
func (b *Buffer) More() bool {
	if b.final || b.srcErr != nil || b.src == nil {
		b.final = true
		return false
	}
	for {
		chunk, err := b.src.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				b.final = true
			} else {
				b.srcErr = err
				b.final = true
			}
			return false
		}
		if len(chunk) == 0 {
			continue
		}
		b.extend(chunk)
		return true
	}
}

func (b *Buffer) extend(chunk []byte) {
	if b.spill == nil {
		if len(b.cur) == 0 {
			// Nothing retained: adopt the chunk directly, zero-copy.
			b.cur = chunk
			return
		}
		// A construct straddles the boundary: spill the retained tail into a
		// fresh owned buffer. A fresh allocation each time keeps previously
		// returned windows valid.
		joined := make([]byte, 0, len(b.cur)+len(chunk))
		joined = append(joined, b.cur...)
		joined = append(joined, chunk...)
		b.cur = nil
		b.spill = joined
		return
	}
	next := make([]byte, 0, len(b.spill)+len(chunk))
	next = append(next, b.spill...)
	next = append(next, chunk...)
	b.spill = next
}

// ChunkSlice adapts a fixed [][]byte to a Source.
type ChunkSlice struct {
	chunks [][]byte
	next   int
}

// NewChunkSlice returns a Source yielding the given chunks in order.
func NewChunkSlice(chunks [][]byte) *ChunkSlice {
	return &ChunkSlice{chunks: chunks}
}

// NextChunk implements Source.
func (s *ChunkSlice) NextChunk() ([]byte, error) {
	if s.next >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.next]
	s.next++
	return c, nil
}

// ReaderSource adapts an io.Reader to a Source by reading fixed-size chunks.
type ReaderSource struct {
	r    io.Reader
	size int
}

// NewReaderSource returns a Source reading size-byte chunks from r. A
// non-positive size defaults to 16 KiB.
func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = 16 * 1024
	}
	return &ReaderSource{r: r, size: size}
}

// NextChunk implements Source. Each call allocates a fresh chunk because the
// consumer may retain slices into it.
func (s *ReaderSource) NextChunk() ([]byte, error) {
	buf := make([]byte, s.size)
	n, err := s.r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}
