package fnxml

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/fnxml/fnxml/internal/xmlchar"
)

// Policy selects what a validator does when it finds a violation.
type Policy uint8

const (
	// PolicyRaise aborts the stream: Next returns the *SyntaxError.
	PolicyRaise Policy = iota
	// PolicyEmit inserts a KindError event and keeps going.
	PolicyEmit
	// PolicySkip drops the offending event or content and keeps going.
	PolicySkip
)

// queue is the shared pending-event plumbing of the validators.
type queue struct {
	pending []Event
}

func (q *queue) push(ev Event) {
	q.pending = append(q.pending, ev)
}

func (q *queue) pushErr(e *SyntaxError) {
	q.pending = append(q.pending, Event{Kind: KindError, Err: e, Pos: e.Pos})
}

func (q *queue) pop() (Event, bool) {
	if len(q.pending) == 0 {
		return Event{}, false
	}
	ev := q.pending[0]
	q.pending = q.pending[1:]
	if len(q.pending) == 0 {
		q.pending = nil
	}
	return ev, true
}

// WellFormedValidator checks that opening and closing tags match and that
// every element opened is closed by end of input.
type WellFormedValidator struct {
	r      EventReader
	policy Policy
	queue
	open    []string
	lastPos Position
	atEOF   bool
}

// NewWellFormedValidator returns a WellFormedValidator reading from r.
func NewWellFormedValidator(r EventReader, policy Policy) *WellFormedValidator {
	return &WellFormedValidator{r: r, policy: policy}
}

// WellFormed is the Transform form of NewWellFormedValidator.
func WellFormed(policy Policy) Transform {
	return func(r EventReader) EventReader { return NewWellFormedValidator(r, policy) }
}

// Depth returns the number of currently open elements.
func (v *WellFormedValidator) Depth() int {
	return len(v.open)
}

// Next implements EventReader.
func (v *WellFormedValidator) Next() (Event, error) {
	for {
		if ev, ok := v.pop(); ok {
			return ev, nil
		}
		if v.atEOF {
			return Event{}, io.EOF
		}
		ev, err := v.r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) && len(v.open) > 0 {
				e := &SyntaxError{Kind: ErrUnclosedElements, Open: append([]string(nil), v.open...), Pos: v.lastPos}
				v.open = nil
				v.atEOF = true
				switch v.policy {
				case PolicyRaise:
					return Event{}, e
				case PolicyEmit:
					v.pushErr(e)
					continue
				default:
					continue
				}
			}
			return Event{}, err
		}
		v.lastPos = ev.Pos
		switch ev.Kind {
		case KindStartElement:
			v.open = append(v.open, ev.Name.String())
		case KindEndElement:
			name := ev.Name.String()
			if len(v.open) == 0 {
				e := &SyntaxError{Kind: ErrUnexpectedClose, Name: name, Pos: ev.Pos}
				if _, err := v.violation(e, ev); err != nil {
					return Event{}, err
				}
				continue
			}
			expected := v.open[len(v.open)-1]
			if expected != name {
				e := &SyntaxError{Kind: ErrTagMismatch, Expected: expected, Name: name, Pos: ev.Pos}
				dropped, err := v.violation(e, ev)
				if err != nil {
					return Event{}, err
				}
				if !dropped {
					// The close still unwinds one level so the walk keeps
					// tracking the document.
					v.open = v.open[:len(v.open)-1]
				}
				continue
			}
			v.open = v.open[:len(v.open)-1]
		}
		v.push(ev)
	}
}

// violation applies the policy: under PolicyRaise it returns the error,
// under PolicyEmit it queues the diagnostic and the event, under PolicySkip
// it reports the event dropped.
func (v *WellFormedValidator) violation(e *SyntaxError, ev Event) (dropped bool, err error) {
	switch v.policy {
	case PolicyRaise:
		return false, e
	case PolicyEmit:
		v.pushErr(e)
		v.push(ev)
		return false, nil
	default:
		return true, nil
	}
}

// AttrValidator checks that no start element carries two attributes with the
// same qualified name.
type AttrValidator struct {
	r      EventReader
	policy Policy
	queue
}

// NewAttrValidator returns an AttrValidator reading from r.
func NewAttrValidator(r EventReader, policy Policy) *AttrValidator {
	return &AttrValidator{r: r, policy: policy}
}

// UniqueAttrs is the Transform form of NewAttrValidator.
func UniqueAttrs(policy Policy) Transform {
	return func(r EventReader) EventReader { return NewAttrValidator(r, policy) }
}

// Next implements EventReader.
func (v *AttrValidator) Next() (Event, error) {
	for {
		if ev, ok := v.pop(); ok {
			return ev, nil
		}
		ev, err := v.r.Next()
		if err != nil {
			return Event{}, err
		}
		if ev.Kind != KindStartElement || len(ev.Attrs) < 2 {
			v.push(ev)
			continue
		}
		seen := make(map[string]struct{}, len(ev.Attrs))
		var kept []Attr // set on the first duplicate under PolicySkip
		for i, a := range ev.Attrs {
			qname := a.Name.String()
			if _, dup := seen[qname]; !dup {
				seen[qname] = struct{}{}
				if kept != nil {
					kept = append(kept, a)
				}
				continue
			}
			switch v.policy {
			case PolicyRaise:
				return Event{}, &SyntaxError{Kind: ErrDuplicateAttr, Name: qname, Pos: ev.Pos}
			case PolicyEmit:
				v.pushErr(&SyntaxError{Kind: ErrDuplicateAttr, Name: qname, Pos: ev.Pos})
			default:
				if kept == nil {
					kept = append([]Attr(nil), ev.Attrs[:i]...)
				}
			}
		}
		if kept != nil {
			ev.Attrs = kept
		}
		v.push(ev)
	}
}

// CharOptions configure a CharValidator beyond its policy.
type CharOptions struct {
	// Edition selects the Char production variant; zero means Edition5.
	Edition Edition

	// Replacement, when non-zero, substitutes invalid codepoints instead of
	// eliding them under PolicySkip.
	Replacement rune
}

// CharValidator checks character data, CDATA, comments, processing
// instruction data and attribute values against the Char production.
// Ill-formed UTF-8 counts as invalid.
type CharValidator struct {
	r      EventReader
	policy Policy
	opts   CharOptions
	queue
}

// NewCharValidator returns a CharValidator reading from r.
func NewCharValidator(r EventReader, policy Policy, opts CharOptions) *CharValidator {
	return &CharValidator{r: r, policy: policy, opts: opts}
}

// ValidChars is the Transform form of NewCharValidator.
func ValidChars(policy Policy, opts CharOptions) Transform {
	return func(r EventReader) EventReader { return NewCharValidator(r, policy, opts) }
}

// Next implements EventReader.
func (v *CharValidator) Next() (Event, error) {
	for {
		if ev, ok := v.pop(); ok {
			return ev, nil
		}
		ev, err := v.r.Next()
		if err != nil {
			return Event{}, err
		}
		switch ev.Kind {
		case KindCharacters, KindSpace, KindCData, KindComment, KindProcInst:
			out, changed, err := v.checkContent(ev.Data, ev.Pos)
			if err != nil {
				return Event{}, err
			}
			if changed {
				ev.Data = out
			}
		case KindStartElement:
			var rewritten []Attr
			for i, a := range ev.Attrs {
				out, changed, err := v.checkContent(a.Value, ev.Pos)
				if err != nil {
					return Event{}, err
				}
				if changed {
					if rewritten == nil {
						rewritten = append([]Attr(nil), ev.Attrs...)
					}
					rewritten[i].Value = out
				}
			}
			if rewritten != nil {
				ev.Attrs = rewritten
			}
		}
		v.push(ev)
	}
}

// checkContent scans content codepoints. Under PolicySkip the returned slice
// has invalid codepoints elided (or substituted, when a Replacement is set)
// and changed is true; otherwise the input comes back untouched.
func (v *CharValidator) checkContent(content []byte, pos Position) (out []byte, changed bool, err error) {
	edition := xmlchar.Edition5
	if v.opts.Edition == Edition4 {
		edition = xmlchar.Edition4
	}
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		bad := r == utf8.RuneError && size == 1 || !xmlchar.IsChar(r, edition)
		if bad {
			e := &SyntaxError{Kind: ErrInvalidChar, Rune: r, ContentOffset: int64(i), Pos: pos}
			switch v.policy {
			case PolicyRaise:
				return nil, false, e
			case PolicyEmit:
				v.pushErr(e)
			default:
				if !changed {
					out = append([]byte(nil), content[:i]...)
					changed = true
				}
				if v.opts.Replacement != 0 {
					out = utf8.AppendRune(out, v.opts.Replacement)
				}
				i += size
				continue
			}
		}
		if changed {
			out = append(out, content[i:i+size]...)
		}
		i += size
	}
	if !changed {
		out = content
	}
	return out, changed, nil
}

// CommentValidator re-checks comment bodies for "--", for consumers whose
// events did not come from the tokenizer (which reports this itself).
type CommentValidator struct {
	r      EventReader
	policy Policy
	queue
}

// NewCommentValidator returns a CommentValidator reading from r.
func NewCommentValidator(r EventReader, policy Policy) *CommentValidator {
	return &CommentValidator{r: r, policy: policy}
}

// ValidComments is the Transform form of NewCommentValidator.
func ValidComments(policy Policy) Transform {
	return func(r EventReader) EventReader { return NewCommentValidator(r, policy) }
}

// Next implements EventReader.
func (v *CommentValidator) Next() (Event, error) {
	for {
		if ev, ok := v.pop(); ok {
			return ev, nil
		}
		ev, err := v.r.Next()
		if err != nil {
			return Event{}, err
		}
		if ev.Kind == KindComment {
			if d := bytes.Index(ev.Data, []byte("--")); d >= 0 {
				e := &SyntaxError{Kind: ErrCommentDash, ContentOffset: int64(d), Pos: ev.Pos}
				switch v.policy {
				case PolicyRaise:
					return Event{}, e
				case PolicyEmit:
					v.pushErr(e)
				default:
					continue
				}
			}
		}
		v.push(ev)
	}
}
