package fnxml

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/text/transform"
)

// LineEndingNormalizer rewrites CR and CRLF to LF. It implements
// transform.Transformer, so it can front any io.Reader via
// transform.NewReader. A CR at the end of the source window is held back
// until the next byte shows whether it heads a CRLF pair.
type LineEndingNormalizer struct{}

// Transform implements transform.Transformer.
func (LineEndingNormalizer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		b := src[nSrc]
		if b != '\r' {
			dst[nDst] = b
			nDst++
			nSrc++
			continue
		}
		if nSrc == len(src)-1 && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		dst[nDst] = '\n'
		nDst++
		nSrc++
		if nSrc < len(src) && src[nSrc] == '\n' {
			nSrc++
		}
	}
	return nDst, nSrc, nil
}

// Reset implements transform.Transformer. The transformer carries no state.
func (LineEndingNormalizer) Reset() {}

// NormalizeLineEndings returns buf with CR and CRLF rewritten to LF. When
// buf contains no CR it is returned as-is, so the operation is idempotent
// and allocation-free on already-normalized input.
func NormalizeLineEndings(buf []byte) []byte {
	if bytes.IndexByte(buf, '\r') < 0 {
		return buf
	}
	out := make([]byte, 0, len(buf))
	for i := 0; i < len(buf); i++ {
		if buf[i] != '\r' {
			out = append(out, buf[i])
			continue
		}
		out = append(out, '\n')
		if i+1 < len(buf) && buf[i+1] == '\n' {
			i++
		}
	}
	return out
}

// NormalizeChunks wraps a ChunkSource so every chunk comes out with CR and
// CRLF rewritten to LF. A CR at the tail of one chunk followed by an LF at
// the head of the next collapses to a single LF: the CR is held until the
// next chunk arrives or end of input is signaled.
func NormalizeChunks(src ChunkSource) ChunkSource {
	return &normalizingSource{src: src}
}

type normalizingSource struct {
	src       ChunkSource
	pendingCR bool
}

func (n *normalizingSource) NextChunk() ([]byte, error) {
	chunk, err := n.src.NextChunk()
	if err != nil {
		if errors.Is(err, io.EOF) && n.pendingCR {
			n.pendingCR = false
			return []byte{'\n'}, nil
		}
		return nil, err
	}
	heldCR := n.pendingCR
	n.pendingCR = false
	if heldCR && len(chunk) > 0 && chunk[0] == '\n' {
		chunk = chunk[1:]
	}
	if len(chunk) > 0 && chunk[len(chunk)-1] == '\r' {
		n.pendingCR = true
		chunk = chunk[:len(chunk)-1]
	}
	body := NormalizeLineEndings(chunk)
	if !heldCR {
		return body, nil
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, '\n')
	return append(out, body...), nil
}
