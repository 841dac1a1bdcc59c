// Package fnxml implements a streaming tokenizer for XML 1.0.
//
// The Tokenizer converts raw XML bytes, either a whole document or a
// sequence of chunks, into a lazy stream of typed events: element opens and
// closes, text, CDATA, comments, processing instructions, the XML
// declaration, DOCTYPE passthrough, and diagnostics. Layers compose over the
// same one-method EventReader interface: the Resolver expands names against
// in-scope namespace bindings, and the validators check structure, attribute
// uniqueness, character ranges and comment bodies, each under a configurable
// error policy.
//
// Everything is pull-driven: nothing happens until a consumer asks for the
// next event, and producing one event is a bounded amount of work. A
// tokenizer owns its state exclusively, so independent documents can be
// tokenized on independent goroutines.
package fnxml

import (
	"errors"
	"io"
)

// Tokenize runs a default-configuration Tokenizer over doc and collects
// every event.
func Tokenize(doc []byte) ([]Event, error) {
	return ReadAll(NewTokenizer(doc, Config{}))
}

// Check tokenizes doc with the full validator stack and the namespace
// resolver in diagnostic mode and collects every problem found. A nil slice
// means the document tokenized clean.
func Check(doc []byte, cfg Config) ([]*SyntaxError, error) {
	r := Pipeline(NewTokenizer(doc, cfg),
		UniqueAttrs(PolicyEmit),
		ValidChars(PolicyEmit, CharOptions{Edition: cfg.Edition}),
		WellFormed(PolicyEmit),
		Resolve(ResolverOptions{}),
	)
	var errs []*SyntaxError
	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errs, nil
			}
			return errs, err
		}
		if ev.Kind == KindError {
			errs = append(errs, ev.Err)
		}
	}
}
