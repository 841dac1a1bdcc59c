package fnxml

import (
	"errors"
	"io"
)

// EventReader is the event stream every layer of this library produces and
// consumes. Next returns the next event, or io.EOF once the stream is
// exhausted. Next must not return a valid event and an error simultaneously.
//
// The Tokenizer implements EventReader, as do the Resolver and every
// validator, so layers compose by wrapping.
type EventReader interface {
	Next() (Event, error)
}

// Transform is a stage that wraps one event stream in another. The Resolver
// and validator constructors can be partially applied into Transforms and
// composed with Pipeline.
type Transform func(EventReader) EventReader

// Pipeline applies stages to r in order: the first stage wraps the tokenizer
// side, the last produces the stream the caller reads.
func Pipeline(r EventReader, stages ...Transform) EventReader {
	for _, stage := range stages {
		r = stage(r)
	}
	return r
}

// ReadAll drains r and returns every event. On a stream error the events
// collected so far are returned alongside it; io.EOF is not reported as an
// error.
func ReadAll(r EventReader) ([]Event, error) {
	var events []Event
	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, err
		}
		events = append(events, ev)
	}
}
