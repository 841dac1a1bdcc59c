package fnxml

import (
	"errors"
	"fmt"
	"io"

	"github.com/fnxml/fnxml/internal/sortattr"
)

// RenderOptions configure event-stream serialization.
type RenderOptions struct {
	// SortAttributes writes each element's attributes in canonical order
	// (namespace declarations first, then by name) instead of document
	// order.
	SortAttributes bool

	// ExpandEmpty writes self-closing elements as an open/close pair
	// instead of an empty-element tag.
	ExpandEmpty bool
}

// Render serializes the event stream back to XML bytes. Character data is
// escaped (see escapeText). The tokenizer leaves references in character
// data undecoded, so a text run containing '&', '>' or a CR re-tokenizes to
// its escaped form rather than to the same bytes; other events of a
// tokenized well-formed document re-tokenize to the same events.
func Render(w io.Writer, r EventReader, opts RenderOptions) error {
	ew := &errWriter{w: w}
	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ew.err
			}
			return err
		}
		renderEvent(ew, ev, opts)
		if ew.err != nil {
			return ew.err
		}
	}
}

// RenderEvent serializes a single event. KindStartDocument, KindEndDocument
// and KindError render nothing.
func RenderEvent(w io.Writer, ev Event, opts RenderOptions) error {
	ew := &errWriter{w: w}
	renderEvent(ew, ev, opts)
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func renderEvent(w *errWriter, ev Event, opts RenderOptions) {
	switch ev.Kind {
	case KindProlog:
		w.printf("<?xml")
		for _, a := range ev.Attrs {
			w.printf(" %s=\"", a.Name)
			w.write(a.Value)
			w.printf("\"")
		}
		w.printf("?>")
	case KindDirective:
		w.printf("<!DOCTYPE")
		w.write(ev.Data)
		w.printf(">")
	case KindStartElement:
		w.printf("<%s", ev.Name)
		attrs := ev.Attrs
		if opts.SortAttributes && len(attrs) > 1 {
			attrs = append([]Attr(nil), attrs...)
			sortattr.Sort(attrSort(attrs))
		}
		for _, a := range attrs {
			w.printf(" %s=\"", a.Name)
			w.write(escapeAttr(a.Value))
			w.printf("\"")
		}
		if ev.SelfClosing && !opts.ExpandEmpty {
			w.printf("/>")
		} else {
			w.printf(">")
		}
	case KindEndElement:
		if ev.SelfClosing && !opts.ExpandEmpty {
			return
		}
		w.printf("</%s>", ev.Name)
	case KindCharacters, KindSpace:
		w.write(escapeText(ev.Data))
	case KindCData:
		w.printf("<![CDATA[")
		w.write(ev.Data)
		w.printf("]]>")
	case KindComment:
		w.printf("<!--")
		w.write(ev.Data)
		w.printf("-->")
	case KindProcInst:
		w.printf("<?%s", ev.Name)
		if len(ev.Data) > 0 {
			w.printf(" ")
			w.write(ev.Data)
		}
		w.printf("?>")
	}
}

// attrSort adapts []Attr to the canonical attribute ordering.
type attrSort []Attr

func (s attrSort) Len() int            { return len(s) }
func (s attrSort) Swap(i, j int)       { s[i], s[j] = s[j], s[i] }
func (s attrSort) Prefix(i int) string { return string(s[i].Name.Prefix) }
func (s attrSort) Local(i int) string  { return string(s[i].Name.Local) }

// escapeText rewrites character data for output: all ampersands become &amp;, open angle brackets &lt;, closing angle brackets
// &gt;, and #xD characters &#xD;.
func escapeText(b []byte) []byte {
	return escape(b, false)
}

// escapeAttr rewrites an attribute value for double-quoted output: the
// ampersand, open angle bracket and quote escapes plus character references
// for the whitespace characters #x9, #xA and #xD, so normalization does not
// eat them on the way back in.
func escapeAttr(b []byte) []byte {
	return escape(b, true)
}

func escape(b []byte, attr bool) []byte {
	needs := false
	for _, c := range b {
		switch c {
		case '&', '<', '>', '\r':
			needs = true
		case '"', '\t', '\n':
			needs = needs || attr
		}
		if needs {
			break
		}
	}
	if !needs {
		return b
	}
	out := make([]byte, 0, len(b)+8)
	for _, c := range b {
		switch c {
		case '&':
			out = append(out, escAmp...)
		case '<':
			out = append(out, escLt...)
		case '>':
			if attr {
				out = append(out, c)
			} else {
				out = append(out, escGt...)
			}
		case '\r':
			out = append(out, escCr...)
		case '"':
			if attr {
				out = append(out, escQuot...)
			} else {
				out = append(out, c)
			}
		case '\t':
			if attr {
				out = append(out, escTab...)
			} else {
				out = append(out, c)
			}
		case '\n':
			if attr {
				out = append(out, escNl...)
			} else {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// These are used in rendering character data and attribute values.
var (
	escAmp  = []byte("&amp;")
	escLt   = []byte("&lt;")
	escGt   = []byte("&gt;")
	escCr   = []byte("&#xD;")
	escQuot = []byte("&quot;")
	escTab  = []byte("&#x9;")
	escNl   = []byte("&#xA;")
)
