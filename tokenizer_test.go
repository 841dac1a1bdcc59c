package fnxml_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fnxml/fnxml"
)

// summarize flattens an event list into comparable strings.
func summarize(events []fnxml.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		var b strings.Builder
		switch ev.Kind {
		case fnxml.KindStartElement:
			fmt.Fprintf(&b, "start %s", ev.Name)
			for _, a := range ev.Attrs {
				fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
			}
		case fnxml.KindEndElement:
			fmt.Fprintf(&b, "end %s", ev.Name)
		case fnxml.KindCharacters:
			fmt.Fprintf(&b, "text %q", ev.Data)
		case fnxml.KindSpace:
			fmt.Fprintf(&b, "space %q", ev.Data)
		case fnxml.KindCData:
			fmt.Fprintf(&b, "cdata %q", ev.Data)
		case fnxml.KindComment:
			fmt.Fprintf(&b, "comment %q", ev.Data)
		case fnxml.KindProcInst:
			fmt.Fprintf(&b, "pi %s %q", ev.Name, ev.Data)
		case fnxml.KindProlog:
			fmt.Fprintf(&b, "prolog %s", ev.Name)
			for _, a := range ev.Attrs {
				fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
			}
		case fnxml.KindDirective:
			fmt.Fprintf(&b, "dtd %q", ev.Data)
		case fnxml.KindError:
			fmt.Fprintf(&b, "error %s", ev.Err.Kind)
		default:
			fmt.Fprintf(&b, "%s", ev.Kind)
		}
		out = append(out, b.String())
	}
	return out
}

func tokenizeAll(t *testing.T, doc string, cfg fnxml.Config) []fnxml.Event {
	t.Helper()
	events, err := fnxml.ReadAll(fnxml.NewTokenizer([]byte(doc), cfg))
	assert.NoError(t, err)
	return events
}

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		cfg  fnxml.Config
		want []string
	}{
		{
			name: "simple nesting",
			doc:  `<root><child>hi</child></root>`,
			want: []string{
				"start root",
				"start child",
				`text "hi"`,
				"end child",
				"end root",
			},
		},
		{
			name: "self-closing with attributes",
			doc:  `<a x="1" y='2'/>`,
			want: []string{
				`start a x="1" y="2"`,
				"end a",
			},
		},
		{
			name: "whitespace runs are space events",
			doc:  "<a>\n  <b/>\n</a>",
			want: []string{
				"start a",
				"space \"\\n  \"",
				"start b",
				"end b",
				"space \"\\n\"",
				"end a",
			},
		},
		{
			name: "space disabled folds into characters",
			doc:  "<a> </a>",
			cfg:  fnxml.Config{Disable: fnxml.SetOf(fnxml.KindSpace)},
			want: []string{
				"start a",
				`text " "`,
				"end a",
			},
		},
		{
			name: "prolog",
			doc:  `<?xml version="1.0" encoding="UTF-8"?><r/>`,
			want: []string{
				`prolog xml version="1.0" encoding="UTF-8"`,
				"start r",
				"end r",
			},
		},
		{
			name: "processing instruction with data",
			doc:  `<r><?target  some data ?></r>`,
			want: []string{
				"start r",
				`pi target "some data"`,
				"end r",
			},
		},
		{
			name: "processing instruction without data",
			doc:  `<r><?target?></r>`,
			want: []string{
				"start r",
				`pi target ""`,
				"end r",
			},
		},
		{
			name: "processing instruction without target",
			doc:  `<r><?></r>`,
			want: []string{
				"start r",
				"error invalid element",
				"end r",
			},
		},
		{
			name: "reserved pi target outside prolog",
			doc:  `<r><?xml version="1.0"?></r>`,
			want: []string{
				"start r",
				"error reserved processing instruction target",
				"end r",
			},
		},
		{
			name: "comment",
			doc:  `<r><!-- note --></r>`,
			want: []string{
				"start r",
				`comment " note "`,
				"end r",
			},
		},
		{
			name: "comment with double hyphen",
			doc:  `<!-- a -- b --><r/>`,
			want: []string{
				`comment " a -- b "`,
				"error '--' inside comment",
				"start r",
				"end r",
			},
		},
		{
			name: "unterminated comment",
			doc:  `<!--`,
			want: []string{
				`comment ""`,
				"error unexpected end of input in comment",
			},
		},
		{
			name: "cdata",
			doc:  `<r><![CDATA[a < b & c]]></r>`,
			want: []string{
				"start r",
				`cdata "a < b & c"`,
				"end r",
			},
		},
		{
			name: "unterminated cdata",
			doc:  `<r><![CDATA[partial`,
			want: []string{
				"start r",
				`cdata "partial"`,
				"error unexpected end of input in CDATA section",
			},
		},
		{
			name: "doctype with internal subset",
			doc:  `<!DOCTYPE r [<!ENTITY x "y">]><r/>`,
			want: []string{
				`dtd " r [<!ENTITY x \"y\">]"`,
				"start r",
				"end r",
			},
		},
		{
			name: "attribute entity decoding",
			doc:  `<a x="a&amp;b &#65;&#x41;"/>`,
			want: []string{
				`start a x="a&b AA"`,
				"end a",
			},
		},
		{
			name: "attribute entities kept raw when configured",
			doc:  `<a x="a&amp;b"/>`,
			cfg:  fnxml.Config{RawAttributeValues: true},
			want: []string{
				`start a x="a&amp;b"`,
				"end a",
			},
		},
		{
			name: "attribute whitespace normalization",
			doc:  "<a x=\"l1\nl2\tl3\"/>",
			want: []string{
				`start a x="l1 l2 l3"`,
				"end a",
			},
		},
		{
			name: "unrecognized entity passes through",
			doc:  `<a x="&unknown; &amp;"/>`,
			want: []string{
				`start a x="&unknown; &"`,
				"end a",
			},
		},
		{
			name: "invalid markup resyncs to next tag",
			doc:  `<a>< =bogus<b/></a>`,
			want: []string{
				"start a",
				"error invalid element",
				"start b",
				"end b",
				"end a",
			},
		},
		{
			name: "end tag with whitespace",
			doc:  `<a></a  >`,
			want: []string{
				"start a",
				"end a",
			},
		},
		{
			name: "structural only",
			doc:  `<?xml version="1.0"?><a><!-- c --><b>text<?pi d?></b> </a>`,
			cfg: fnxml.Config{Disable: fnxml.SetOf(
				fnxml.KindProlog, fnxml.KindComment, fnxml.KindCharacters,
				fnxml.KindSpace, fnxml.KindCData, fnxml.KindProcInst,
			)},
			want: []string{
				"start a",
				"start b",
				"end b",
				"end a",
			},
		},
		{
			name: "empty input",
			doc:  "",
			want: []string{},
		},
		{
			name: "prefixed names",
			doc:  `<n:a n:x="1"></n:a>`,
			want: []string{
				`start n:a n:x="1"`,
				"end n:a",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := tokenizeAll(t, tt.doc, tt.cfg)
			assert.Equal(t, tt.want, summarize(events))
		})
	}
}

func TestTokenizerHTMLMode(t *testing.T) {
	cfg := fnxml.Config{Mode: fnxml.ModeHTML}

	t.Run("unquoted and boolean attributes", func(t *testing.T) {
		events := tokenizeAll(t, `<input disabled value=x>`, cfg)
		assert.Equal(t, []string{
			`start input disabled="" value="x"`,
		}, summarize(events))
	})

	t.Run("raw text element", func(t *testing.T) {
		events := tokenizeAll(t, `<script>if (a<b) { f(); }</script>`, cfg)
		assert.Equal(t, []string{
			"start script",
			`text "if (a<b) { f(); }"`,
			"end script",
		}, summarize(events))
	})

	t.Run("raw text end tag is case-insensitive", func(t *testing.T) {
		events := tokenizeAll(t, `<SCRIPT>x</script >`, cfg)
		assert.Equal(t, []string{
			"start SCRIPT",
			`text "x"`,
			"end script",
		}, summarize(events))
	})

	t.Run("custom raw text set", func(t *testing.T) {
		custom := fnxml.Config{Mode: fnxml.ModeHTML, RawTextElements: []string{"textarea"}}
		events := tokenizeAll(t, `<textarea><not-a-tag></textarea>`, custom)
		assert.Equal(t, []string{
			"start textarea",
			`text "<not-a-tag>"`,
			"end textarea",
		}, summarize(events))
	})

	t.Run("self-closing raw text element stays in markup", func(t *testing.T) {
		events := tokenizeAll(t, `<script/><b/>`, cfg)
		assert.Equal(t, []string{
			"start script",
			"end script",
			"start b",
			"end b",
		}, summarize(events))
	})
}

func TestTokenizerPositions(t *testing.T) {
	doc := "<a>\n  <b x=\"1\"/>\n</a>"
	events := tokenizeAll(t, doc, fnxml.Config{})

	assert.Equal(t, "1:0", events[0].Pos.String()) // <a>
	assert.Equal(t, "1:3", events[1].Pos.String()) // the newline run
	assert.Equal(t, "2:2", events[2].Pos.String()) // <b .../>
	assert.Equal(t, "2:2", events[3].Pos.String()) // synthesized </b>
	assert.Equal(t, "3:0", events[5].Pos.String()) // </a>

	// Absolute offsets are monotonic.
	var last int64
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.Pos.Offset, last)
		last = ev.Pos.Offset
	}
}

func TestTokenizerNoPositions(t *testing.T) {
	events := tokenizeAll(t, "<a>\n<b/></a>", fnxml.Config{NoPositions: true})
	for _, ev := range events {
		assert.Equal(t, fnxml.Position{}, ev.Pos)
	}
}

func TestTokenizerCharactersNeverContainLt(t *testing.T) {
	doc := `<r>a&lt;b<c>d</c>e</r>`
	for _, ev := range tokenizeAll(t, doc, fnxml.Config{}) {
		if ev.Kind == fnxml.KindCharacters {
			assert.NotContains(t, string(ev.Data), "<")
		}
	}
}

func TestTokenizerChunked(t *testing.T) {
	t.Run("chunk boundary inside a tag", func(t *testing.T) {
		tok := fnxml.NewStreamTokenizer(fnxml.Chunks([]byte("<roo"), []byte("t attr=\"v\"/>")), fnxml.Config{})
		events, err := fnxml.ReadAll(tok)
		assert.NoError(t, err)
		assert.Equal(t, []string{
			`start root attr="v"`,
			"end root",
		}, summarize(events))
	})

	t.Run("every split position yields identical events", func(t *testing.T) {
		doc := `<?xml version="1.0"?><a x="1"><!-- c --><b>text</b><![CDATA[cd]]> <?pi d?></a>`
		whole := tokenizeAll(t, doc, fnxml.Config{})
		for cut := 0; cut <= len(doc); cut++ {
			tok := fnxml.NewStreamTokenizer(fnxml.Chunks([]byte(doc[:cut]), []byte(doc[cut:])), fnxml.Config{})
			chunked, err := fnxml.ReadAll(tok)
			assert.NoError(t, err)
			assert.Equal(t, whole, chunked, "split at byte %d", cut)
		}
	})

	t.Run("byte at a time", func(t *testing.T) {
		doc := `<a y="2"><b/>hi</a>`
		whole := tokenizeAll(t, doc, fnxml.Config{})
		chunks := make([][]byte, len(doc))
		for i := range doc {
			chunks[i] = []byte{doc[i]}
		}
		chunked, err := fnxml.ReadAll(fnxml.NewStreamTokenizer(fnxml.Chunks(chunks...), fnxml.Config{}))
		assert.NoError(t, err)
		assert.Equal(t, whole, chunked)
	})

	t.Run("reader source", func(t *testing.T) {
		doc := `<root><child>hi</child></root>`
		tok := fnxml.NewStreamTokenizer(fnxml.ReaderChunks(strings.NewReader(doc), 7), fnxml.Config{})
		chunked, err := fnxml.ReadAll(tok)
		assert.NoError(t, err)
		assert.Equal(t, summarize(tokenizeAll(t, doc, fnxml.Config{})), summarize(chunked))
	})
}

func TestTokenizerEOFInTag(t *testing.T) {
	events := tokenizeAll(t, `<a x="1"`, fnxml.Config{})
	assert.Equal(t, []string{
		"error unexpected end of input in tag",
	}, summarize(events))
}
