package fnxml

import (
	"bytes"
	"fmt"
	"strings"
)

// Kind identifies the type of an Event.
type Kind uint8

const (
	// KindInvalid is the zero value for Kind and is not a valid event.
	KindInvalid Kind = iota

	// KindStartDocument and KindEndDocument bracket a stream. The tokenizer
	// does not synthesize them; they exist for consumers that assemble event
	// streams of their own. The renderer ignores them.
	KindStartDocument
	KindEndDocument

	// KindProlog is the XML declaration, e.g. <?xml version="1.0"?>. The
	// event's Name.Local carries the literal target "xml" and Attrs carry the
	// declaration's pseudo-attributes in order.
	KindProlog

	// KindDirective is a <!DOCTYPE ...> passthrough. Data holds the raw bytes
	// between "<!DOCTYPE" and the matching ">", with one level of [...]
	// internal subset kept intact. The content is not interpreted.
	KindDirective

	// KindStartElement is an opening tag. A self-closing tag is reported as a
	// KindStartElement with SelfClosing set, immediately followed by a
	// matching KindEndElement.
	KindStartElement

	// KindEndElement is a closing tag.
	KindEndElement

	// KindCharacters is a text run between markup. Data never contains '<',
	// except for the content of an HTML-mode raw-text element.
	KindCharacters

	// KindSpace is a text run consisting only of whitespace. Disabling
	// KindSpace in the tokenizer configuration folds such runs back into
	// KindCharacters rather than dropping them.
	KindSpace

	// KindCData is a <![CDATA[...]]> section; Data holds the raw bytes
	// between the delimiters.
	KindCData

	// KindComment is a <!--...--> comment; Data holds the bytes between the
	// delimiters.
	KindComment

	// KindProcInst is a processing instruction; Name.Local holds the target
	// and Data the instruction with surrounding whitespace trimmed.
	KindProcInst

	// KindError carries a diagnostic produced by the tokenizer, the
	// namespace resolver, or a validator running under PolicyEmit. Err is
	// always non-nil.
	KindError
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindStartDocument:
		return "StartDocument"
	case KindEndDocument:
		return "EndDocument"
	case KindProlog:
		return "Prolog"
	case KindDirective:
		return "Directive"
	case KindStartElement:
		return "StartElement"
	case KindEndElement:
		return "EndElement"
	case KindCharacters:
		return "Characters"
	case KindSpace:
		return "Space"
	case KindCData:
		return "CData"
	case KindComment:
		return "Comment"
	case KindProcInst:
		return "ProcInst"
	case KindError:
		return "Error"
	default:
		panic("unknown event kind")
	}
}

// Position locates a byte in the input. Line is 1-based; LineStart is the
// absolute offset of the first byte of that line, so the column falls out of
// the two offsets.
type Position struct {
	Line      int
	LineStart int64
	Offset    int64
}

// Column returns the 0-based column of the position within its line.
func (p Position) Column() int64 {
	return p.Offset - p.LineStart
}

// String implements fmt.Stringer as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column())
}

// Name is a possibly-prefixed XML name. The tokenizer fills Prefix and Local;
// Space is the namespace URI and is only set by the Resolver.
type Name struct {
	Prefix []byte
	Local  []byte
	Space  []byte
}

// String renders the qualified name as it appeared in the document.
func (n Name) String() string {
	if len(n.Prefix) == 0 {
		return string(n.Local)
	}
	return string(n.Prefix) + ":" + string(n.Local)
}

// Equal reports whether two names have the same prefix and local part.
func (n Name) Equal(o Name) bool {
	return bytes.Equal(n.Prefix, o.Prefix) && bytes.Equal(n.Local, o.Local)
}

// splitName cuts a qualified name at its first colon.
func splitName(b []byte) Name {
	prefix, local, ok := bytes.Cut(b, []byte{':'})
	if !ok {
		return Name{Local: b}
	}
	return Name{Prefix: prefix, Local: local}
}

// Attr is a single attribute of a start element. Value is a slice into the
// input when the attribute lies within one chunk, no entity was decoded and
// no tab, LF or CR was normalized, and an owned buffer otherwise.
type Attr struct {
	Name  Name
	Value []byte
	Pos   Position
}

// Event is one tokenizer output. Which fields are meaningful depends on
// Kind; unused fields are zero.
type Event struct {
	Kind Kind

	// Name is set for KindStartElement, KindEndElement, KindProcInst and
	// KindProlog.
	Name Name

	// Attrs is set for KindStartElement and KindProlog. Order is the
	// document order; duplicates are preserved (rejecting them is the
	// attribute validator's job).
	Attrs []Attr

	// Data is set for KindCharacters, KindSpace, KindCData, KindComment,
	// KindProcInst and KindDirective. It is a slice into the input when the
	// content lies within one chunk.
	Data []byte

	// SelfClosing marks the KindStartElement/KindEndElement pair produced by
	// an empty-element tag.
	SelfClosing bool

	// Err is set for KindError.
	Err *SyntaxError

	// Pos is the position of the first byte of the construct that produced
	// the event. It is zero when position tracking is disabled.
	Pos Position
}

// ErrKind identifies a diagnostic. Messages are formatted from the kind and
// its detail fields when the error is surfaced, not pre-baked.
type ErrKind uint8

const (
	// ErrInvalidElement: markup that cannot be tokenized, such as a '<' not
	// followed by any recognizable construct, a malformed attribute or end
	// tag, or a processing instruction without a target.
	ErrInvalidElement ErrKind = iota + 1

	// Input ended inside a construct.
	ErrEOFInTag
	ErrEOFInComment
	ErrEOFInCData
	ErrEOFInProcInst
	ErrEOFInDirective

	// ErrCommentDash: "--" inside a comment body.
	ErrCommentDash

	// ErrInvalidChar: a codepoint outside the Char production.
	ErrInvalidChar

	// ErrDuplicateAttr: two attributes with the same qualified name.
	ErrDuplicateAttr

	// ErrTagMismatch, ErrUnexpectedClose, ErrUnclosedElements: structural
	// violations found by the well-formedness validator.
	ErrTagMismatch
	ErrUnexpectedClose
	ErrUnclosedElements

	// Namespace constraint violations.
	ErrUndeclaredPrefix
	ErrEmptyPrefixBinding
	ErrReservedPrefix
	ErrReservedNamespace
	ErrDuplicateExpandedAttr
	ErrColonInProcInstTarget

	// ErrReservedTarget: a processing instruction targeting "xml" (any case)
	// outside the document prolog.
	ErrReservedTarget
)

// String returns the name of the error kind.
func (k ErrKind) String() string {
	switch k {
	case ErrInvalidElement:
		return "invalid element"
	case ErrEOFInTag:
		return "unexpected end of input in tag"
	case ErrEOFInComment:
		return "unexpected end of input in comment"
	case ErrEOFInCData:
		return "unexpected end of input in CDATA section"
	case ErrEOFInProcInst:
		return "unexpected end of input in processing instruction"
	case ErrEOFInDirective:
		return "unexpected end of input in DOCTYPE"
	case ErrCommentDash:
		return "'--' inside comment"
	case ErrInvalidChar:
		return "invalid character"
	case ErrDuplicateAttr:
		return "duplicate attribute"
	case ErrTagMismatch:
		return "mismatched closing tag"
	case ErrUnexpectedClose:
		return "closing tag without opening tag"
	case ErrUnclosedElements:
		return "unclosed elements at end of input"
	case ErrUndeclaredPrefix:
		return "undeclared namespace prefix"
	case ErrEmptyPrefixBinding:
		return "namespace prefix bound to empty URI"
	case ErrReservedPrefix:
		return "reserved namespace prefix"
	case ErrReservedNamespace:
		return "reserved namespace URI"
	case ErrDuplicateExpandedAttr:
		return "duplicate attribute after namespace expansion"
	case ErrColonInProcInstTarget:
		return "colon in processing instruction target"
	case ErrReservedTarget:
		return "reserved processing instruction target"
	default:
		return "unknown error"
	}
}

// SyntaxError is a diagnostic with a position and kind-dependent detail
// fields. Under PolicyRaise it is returned from Next; under PolicyEmit it
// rides in a KindError event.
type SyntaxError struct {
	Kind ErrKind
	Pos  Position

	// ContentOffset is the byte offset of the offending bytes within the
	// construct's content, for ErrCommentDash and ErrInvalidChar.
	ContentOffset int64

	// Rune is the offending codepoint for ErrInvalidChar.
	Rune rune

	// Name names the offending attribute, tag, prefix, URI or target,
	// depending on Kind.
	Name string

	// Expected is the open tag name a mismatched close should have matched.
	Expected string

	// Open lists the names still open at end of input for
	// ErrUnclosedElements, outermost first.
	Open []string
}

// Error formats a human-readable message from the kind, position and detail
// fields.
func (e *SyntaxError) Error() string {
	msg := e.Kind.String()
	switch e.Kind {
	case ErrCommentDash:
		msg = fmt.Sprintf("%s at content offset %d", msg, e.ContentOffset)
	case ErrInvalidChar:
		msg = fmt.Sprintf("%s U+%04X at content offset %d", msg, e.Rune, e.ContentOffset)
	case ErrDuplicateAttr, ErrDuplicateExpandedAttr, ErrUndeclaredPrefix,
		ErrEmptyPrefixBinding, ErrReservedPrefix, ErrReservedNamespace,
		ErrUnexpectedClose, ErrColonInProcInstTarget, ErrReservedTarget:
		msg = fmt.Sprintf("%s: %q", msg, e.Name)
	case ErrTagMismatch:
		msg = fmt.Sprintf("%s: expected </%s>, got </%s>", msg, e.Expected, e.Name)
	case ErrUnclosedElements:
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Open, ", "))
	}
	return fmt.Sprintf("%s at %s", msg, e.Pos)
}

// Is reports whether err is a *SyntaxError of the same kind, so callers can
// match with errors.Is against a kind-only template.
func (e *SyntaxError) Is(err error) bool {
	o, ok := err.(*SyntaxError)
	return ok && o.Kind == e.Kind
}
