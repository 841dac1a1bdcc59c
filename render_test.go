package fnxml_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fnxml/fnxml"
)

func render(t *testing.T, doc string, opts fnxml.RenderOptions) string {
	t.Helper()
	var buf bytes.Buffer
	err := fnxml.Render(&buf, fnxml.NewTokenizer([]byte(doc), fnxml.Config{}), opts)
	assert.NoError(t, err)
	return buf.String()
}

func TestRenderRoundTrip(t *testing.T) {
	docs := []string{
		`<root><child>hi</child></root>`,
		`<a x="1" y="2"/>`,
		`<?xml version="1.0"?><r><!-- c --><![CDATA[raw]]><?pi data?></r>`,
		`<!DOCTYPE r><r>text</r>`,
		"<a>\n  <b/>\n</a>",
	}
	for _, doc := range docs {
		out := render(t, doc, fnxml.RenderOptions{})
		assert.Equal(t, doc, out)

		// Re-tokenizing the rendered form yields the same events.
		first := tokenizeAll(t, doc, fnxml.Config{})
		second := tokenizeAll(t, out, fnxml.Config{})
		assert.Equal(t, summarize(first), summarize(second))
	}
}

func TestRenderEscaping(t *testing.T) {
	t.Run("attribute values", func(t *testing.T) {
		ev := fnxml.Event{
			Kind: fnxml.KindStartElement,
			Name: fnxml.Name{Local: []byte("a")},
			Attrs: []fnxml.Attr{
				{Name: fnxml.Name{Local: []byte("x")}, Value: []byte(`a&b<c"d`)},
			},
		}
		var buf bytes.Buffer
		assert.NoError(t, fnxml.RenderEvent(&buf, ev, fnxml.RenderOptions{}))
		assert.Equal(t, `<a x="a&amp;b&lt;c&quot;d">`, buf.String())
	})

	t.Run("character data", func(t *testing.T) {
		ev := fnxml.Event{Kind: fnxml.KindCharacters, Data: []byte("a&b<c>d\re")}
		var buf bytes.Buffer
		assert.NoError(t, fnxml.RenderEvent(&buf, ev, fnxml.RenderOptions{}))
		assert.Equal(t, "a&amp;b&lt;c&gt;d&#xD;e", buf.String())
	})

	t.Run("decoded attribute round-trips", func(t *testing.T) {
		doc := `<a x="1&amp;2"/>`
		assert.Equal(t, doc, render(t, doc, fnxml.RenderOptions{}))
	})
}

func TestRenderSortAttributes(t *testing.T) {
	doc := `<a z="1" b="2" xmlns:n="u" n:a="3" xmlns="d"/>`
	out := render(t, doc, fnxml.RenderOptions{SortAttributes: true})
	assert.Equal(t, `<a xmlns="d" xmlns:n="u" b="2" z="1" n:a="3"/>`, out)
}

func TestRenderExpandEmpty(t *testing.T) {
	out := render(t, `<a x="1"/>`, fnxml.RenderOptions{ExpandEmpty: true})
	assert.Equal(t, `<a x="1"></a>`, out)
}
