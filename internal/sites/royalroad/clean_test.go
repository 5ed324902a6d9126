package royalroad

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePage(t *testing.T, page string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestRemoveHiddenWarnings(t *testing.T) {
	page := `<html><head>
<style>.foo{display:none}</style>
<style>.bar { color: red; display: none; font-size: 0; }</style>
<style>.visible { color: blue; }</style>
</head><body>
<div class="chapter-content">
<p>Real text.</p>
<p class="foo">This story was stolen.</p>
<span class="bar">Report this theft.</span>
<p class="visible">Also real.</p>
</div>
</body></html>`

	doc := parsePage(t, page)
	content := doc.Find("div.chapter-content")

	removeHiddenWarnings(content, doc)

	out, err := goquery.OuterHtml(content)
	require.NoError(t, err)

	assert.Contains(t, out, "Real text.")
	assert.Contains(t, out, "Also real.")
	assert.NotContains(t, out, "This story was stolen.")
	assert.NotContains(t, out, "Report this theft.")
}

func TestRemoveHiddenWarningsNoMatchingRule(t *testing.T) {
	page := `<html><head>
<style>p { margin: 0; }</style>
<style>.shown { display: block; }</style>
</head><body>
<div class="chapter-content"><p class="shown">Keep me.</p></div>
</body></html>`

	doc := parsePage(t, page)
	content := doc.Find("div.chapter-content")

	before, err := goquery.OuterHtml(content)
	require.NoError(t, err)

	removeHiddenWarnings(content, doc)

	after, err := goquery.OuterHtml(content)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemoveHiddenWarningsIdempotent(t *testing.T) {
	page := `<html><head>
<style>.foo{display:none;}</style>
</head><body>
<div class="chapter-content"><p>Text.</p><p class="foo">junk</p></div>
</body></html>`

	doc := parsePage(t, page)
	content := doc.Find("div.chapter-content")

	removeHiddenWarnings(content, doc)
	once, err := goquery.OuterHtml(content)
	require.NoError(t, err)

	removeHiddenWarnings(content, doc)
	twice, err := goquery.OuterHtml(content)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.NotContains(t, once, "junk")
}

const spoilerContent = `<html><body>
<div class="chapter-content">
<p>Before the spoiler.</p>
<div class="spoiler">
<div class="smalltext">Hint</div>
<input type="checkbox" class="spoiler-toggle"/>
<div class="spoilerContent" style="display: none">
<div class="spoiler-inner" style="display: none"><p>the answer is 42</p></div>
</div>
</div>
<p>After the spoiler.</p>
</div>
</body></html>`

func TestNormalizeSpoilers(t *testing.T) {
	doc := parsePage(t, spoilerContent)
	content := doc.Find("div.chapter-content")

	normalizeSpoilers(content)

	header := content.Find("strong.spoiler-header")
	require.Equal(t, 1, header.Length())
	assert.Equal(t, "[SPOILER - Hint]", header.Text())

	// The inner block follows the header directly and is no longer hidden.
	next := header.Next()
	assert.True(t, next.HasClass("spoiler-inner"))
	_, hasStyle := next.Attr("style")
	assert.False(t, hasStyle)
	assert.Equal(t, "the answer is 42", strings.TrimSpace(next.Text()))

	// Nothing of the interactive wrapper survives.
	assert.Equal(t, 0, content.Find("div.spoiler").Length())
	assert.Equal(t, 0, content.Find("div.spoilerContent").Length())
	assert.Equal(t, 0, content.Find("input").Length())

	out, err := goquery.OuterHtml(content)
	require.NoError(t, err)
	headerIdx := strings.Index(out, "[SPOILER - Hint]")
	innerIdx := strings.Index(out, "the answer is 42")
	require.True(t, headerIdx >= 0 && innerIdx >= 0)
	assert.Less(t, strings.Index(out, "Before the spoiler."), headerIdx)
	assert.Less(t, headerIdx, innerIdx)
	assert.Less(t, innerIdx, strings.Index(out, "After the spoiler."))
}

func TestNormalizeSpoilersEmptyLabel(t *testing.T) {
	page := `<html><body>
<div class="chapter-content">
<div class="spoiler">
<div class="smalltext">   </div>
<div class="spoilerContent"><div class="spoiler-inner"><p>secret</p></div></div>
</div>
</div>
</body></html>`

	doc := parsePage(t, page)
	content := doc.Find("div.chapter-content")

	normalizeSpoilers(content)

	assert.Equal(t, "[SPOILER -  ]", content.Find("strong.spoiler-header").Text())
}

func TestNormalizeSpoilersUnexpectedLayoutLeftAlone(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{
			"no spoilerContent wrapper",
			`<html><body><div class="chapter-content">
<div class="spoiler"><div class="smalltext">Hint</div><p>loose text</p></div>
</div></body></html>`,
		},
		{
			"no spoiler-inner block",
			`<html><body><div class="chapter-content">
<div class="spoiler"><div class="smalltext">Hint</div>
<div class="spoilerContent"><p>loose text</p></div>
</div></div></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parsePage(t, tt.page)
			content := doc.Find("div.chapter-content")

			normalizeSpoilers(content)

			assert.Equal(t, 1, content.Find("div.spoiler").Length())
			assert.Equal(t, 0, content.Find("strong.spoiler-header").Length())
			assert.Contains(t, content.Text(), "loose text")
		})
	}
}

func TestNormalizeSpoilersMultiple(t *testing.T) {
	page := `<html><body>
<div class="chapter-content">
<div class="spoiler"><div class="smalltext">One</div>
<div class="spoilerContent"><div class="spoiler-inner">first secret</div></div></div>
<div class="spoiler"><div class="smalltext">Two</div>
<div class="spoilerContent"><div class="spoiler-inner">second secret</div></div></div>
</div>
</body></html>`

	doc := parsePage(t, page)
	content := doc.Find("div.chapter-content")

	normalizeSpoilers(content)

	headers := content.Find("strong.spoiler-header")
	require.Equal(t, 2, headers.Length())
	assert.Equal(t, "[SPOILER - One]", headers.Eq(0).Text())
	assert.Equal(t, "[SPOILER - Two]", headers.Eq(1).Text())
	assert.Equal(t, 0, content.Find("div.spoiler").Length())

	out, err := goquery.OuterHtml(content)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "first secret"), strings.Index(out, "second secret"))
}
