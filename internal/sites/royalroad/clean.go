package royalroad

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The site periodically injects "this content was stolen" notices into
// chapter bodies and hides them with a page-level style rule rather than
// an inline style, so the shared cleaner cannot see them. The rules are
// currently trivial single-class declarations, so find those and drop
// every element of the class from the content.
var hiddenRule = regexp.MustCompile(`^\s*\.(\w+)\s*\{[^}]*display:\s*none;?[^}]*\}`)

func removeHiddenWarnings(content *goquery.Selection, page *goquery.Document) {
	page.Find("style").Each(func(_ int, style *goquery.Selection) {
		if m := hiddenRule.FindStringSubmatch(style.Text()); m != nil {
			content.Find("." + m[1]).Remove()
		}
	})
}

// normalizeSpoilers rewrites each spoiler toggle as visible inline text
// prefixed with a bracketed header. Spoilers whose inner markup does not
// match the expected nested layout are left untouched.
func normalizeSpoilers(content *goquery.Selection) {
	content.Find(".spoiler").Each(func(_ int, spoiler *goquery.Selection) {
		label := strings.TrimSpace(spoiler.Find("div.smalltext").First().Text())
		if label == "" {
			label = " "
		}

		wrapper := spoiler.Find("div.spoilerContent").First()
		if wrapper.Length() == 0 {
			return
		}
		inner := wrapper.Find("div.spoiler-inner").First()
		if inner.Length() == 0 {
			return
		}

		spoiler.BeforeHtml(`<strong class="spoiler-header">` +
			html.EscapeString("[SPOILER - "+label+"]") + `</strong>`)

		// The header is now the spoiler's previous sibling; pull the inner
		// block out right after it and unhide it.
		header := spoiler.Prev()
		header.AfterSelection(inner)
		inner.RemoveAttr("style")

		spoiler.Find("div, input").Remove()
		spoiler.Remove()
	})
}
