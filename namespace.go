package fnxml

import (
	"bytes"

	"github.com/fnxml/fnxml/internal/nsstack"
)

// XMLNamespace is the URI permanently bound to the "xml" prefix.
const XMLNamespace = nsstack.XMLNamespace

// XMLNSNamespace is the URI in which xmlns and xmlns:* declarations live.
const XMLNSNamespace = nsstack.XMLNSNamespace

// ResolverOptions configure a Resolver. The zero value resolves names,
// keeps xmlns declarations in the output, and drops original prefixes from
// expanded names.
type ResolverOptions struct {
	// StripDeclarations omits xmlns and xmlns:* attributes from output
	// events.
	StripDeclarations bool

	// IncludePrefix keeps the original prefix on expanded names instead of
	// clearing it.
	IncludePrefix bool

	// XML11 selects XML 1.1 semantics for xmlns:p="": the prefix is
	// undeclared instead of the binding being an error.
	XML11 bool
}

// Resolver expands element and attribute names against the in-scope
// namespace bindings. It is a stream transform: element and attribute names
// on output events carry the namespace URI in Name.Space, and namespace
// constraint violations come through as KindError events ahead of the
// original event, which always passes through so downstream consumers still
// see the document structure.
type Resolver struct {
	r       EventReader
	opts    ResolverOptions
	stack   nsstack.Stack
	pending []Event
}

// NewResolver returns a Resolver reading from r.
func NewResolver(r EventReader, opts ResolverOptions) *Resolver {
	return &Resolver{r: r, opts: opts}
}

// Resolve is the Transform form of NewResolver, for Pipeline.
func Resolve(opts ResolverOptions) Transform {
	return func(r EventReader) EventReader { return NewResolver(r, opts) }
}

// Next implements EventReader.
func (z *Resolver) Next() (Event, error) {
	for {
		if len(z.pending) > 0 {
			ev := z.pending[0]
			z.pending = z.pending[1:]
			if len(z.pending) == 0 {
				z.pending = nil
			}
			return ev, nil
		}
		ev, err := z.r.Next()
		if err != nil {
			return Event{}, err
		}
		switch ev.Kind {
		case KindStartElement:
			z.startElement(ev)
		case KindEndElement:
			z.endElement(ev)
		case KindProcInst:
			if bytes.IndexByte(ev.Name.Local, ':') >= 0 {
				z.emitErr(&SyntaxError{
					Kind: ErrColonInProcInstTarget,
					Name: ev.Name.String(),
					Pos:  ev.Pos,
				})
			}
			z.pending = append(z.pending, ev)
		default:
			z.pending = append(z.pending, ev)
		}
	}
}

func (z *Resolver) emitErr(e *SyntaxError) {
	z.pending = append(z.pending, Event{Kind: KindError, Err: e, Pos: e.Pos})
}

// declaredPrefix returns the prefix an attribute declares, and whether it is
// a namespace declaration at all. xmlns="..." declares the empty prefix.
func declaredPrefix(a Attr) (string, bool) {
	if len(a.Name.Prefix) == 0 && bytes.Equal(a.Name.Local, []byte("xmlns")) {
		return "", true
	}
	if bytes.Equal(a.Name.Prefix, []byte("xmlns")) {
		return string(a.Name.Local), true
	}
	return "", false
}

func (z *Resolver) startElement(ev Event) {
	decls := map[string]string{}
	for _, a := range ev.Attrs {
		prefix, ok := declaredPrefix(a)
		if !ok {
			continue
		}
		uri := string(a.Value)
		switch {
		case prefix == "xmlns":
			z.emitErr(&SyntaxError{Kind: ErrReservedPrefix, Name: prefix, Pos: ev.Pos})
		case prefix == "xml" && uri != XMLNamespace:
			z.emitErr(&SyntaxError{Kind: ErrReservedPrefix, Name: prefix, Pos: ev.Pos})
		case uri == XMLNSNamespace:
			z.emitErr(&SyntaxError{Kind: ErrReservedNamespace, Name: uri, Pos: ev.Pos})
		case uri == XMLNamespace && prefix != "xml":
			z.emitErr(&SyntaxError{Kind: ErrReservedNamespace, Name: uri, Pos: ev.Pos})
		case prefix != "" && uri == "":
			if z.opts.XML11 {
				decls[prefix] = ""
			} else {
				z.emitErr(&SyntaxError{Kind: ErrEmptyPrefixBinding, Name: prefix, Pos: ev.Pos})
			}
		default:
			decls[prefix] = uri
		}
	}
	z.stack.Push(decls)

	out := ev
	out.Name = z.expandElement(ev.Name, ev.Pos)
	out.Attrs = z.expandAttrs(ev)
	z.pending = append(z.pending, out)
}

func (z *Resolver) endElement(ev Event) {
	out := ev
	out.Name = z.expandElement(ev.Name, ev.Pos)
	if z.stack.Len() > 0 {
		z.stack.Pop()
	}
	z.pending = append(z.pending, out)
}

// expandElement resolves an element name. Elements with no prefix take the
// default namespace.
func (z *Resolver) expandElement(n Name, pos Position) Name {
	out := n
	if len(n.Prefix) == 0 {
		if uri, ok := z.stack.Default(); ok {
			out.Space = []byte(uri)
		}
	} else if uri, ok := z.stack.Lookup(string(n.Prefix)); ok {
		out.Space = []byte(uri)
	} else {
		z.emitErr(&SyntaxError{Kind: ErrUndeclaredPrefix, Name: n.String(), Pos: pos})
	}
	if !z.opts.IncludePrefix {
		out.Prefix = nil
	}
	return out
}

// expandAttrs resolves attribute names. Unprefixed attributes take no
// namespace; declarations live in the xmlns namespace. Attributes that share
// an expanded (URI, local) pair are reported.
func (z *Resolver) expandAttrs(ev Event) []Attr {
	if len(ev.Attrs) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(ev.Attrs))
	type expanded struct{ space, local string }
	seen := make(map[expanded]struct{}, len(ev.Attrs))
	for _, a := range ev.Attrs {
		if _, isDecl := declaredPrefix(a); isDecl {
			if z.opts.StripDeclarations {
				continue
			}
			// Declarations keep their original spelling so they stay
			// recognizable, but are marked as living in the xmlns namespace.
			a.Name.Space = []byte(XMLNSNamespace)
			out = append(out, a)
			continue
		}
		if len(a.Name.Prefix) > 0 {
			if uri, ok := z.stack.Lookup(string(a.Name.Prefix)); ok {
				a.Name.Space = []byte(uri)
				key := expanded{space: uri, local: string(a.Name.Local)}
				if _, dup := seen[key]; dup {
					z.emitErr(&SyntaxError{
						Kind: ErrDuplicateExpandedAttr,
						Name: uri + " " + string(a.Name.Local),
						Pos:  ev.Pos,
					})
				}
				seen[key] = struct{}{}
			} else {
				z.emitErr(&SyntaxError{Kind: ErrUndeclaredPrefix, Name: a.Name.String(), Pos: ev.Pos})
			}
			if !z.opts.IncludePrefix {
				a.Name.Prefix = nil
			}
		} else {
			key := expanded{local: string(a.Name.Local)}
			if _, dup := seen[key]; dup {
				z.emitErr(&SyntaxError{
					Kind: ErrDuplicateExpandedAttr,
					Name: string(a.Name.Local),
					Pos:  ev.Pos,
				})
			}
			seen[key] = struct{}{}
		}
		out = append(out, a)
	}
	return out
}
