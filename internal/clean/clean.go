// Package clean implements the shared content sanitizer applied to every
// extracted chapter before site-specific post-processing. Site plugins
// layer their own deltas on top of it.
package clean

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Cleaner sanitizes chapter content in place. It also accumulates
// footnote fragments encountered during a run; the plugin attaches them
// to the story once all chapters are processed.
type Cleaner struct {
	footnotes []string
}

// New returns a Cleaner with an empty footnote accumulator.
func New() *Cleaner {
	return &Cleaner{}
}

// Element sanitizes the selection's subtree in place: executable and
// interactive cruft is dropped, hidden elements are removed, and footnote
// blocks are captured into the accumulator.
//
// Hidden elements are detected through the hidden/aria-hidden attributes
// only. Inline styles are left alone: spoiler-style toggles keep their
// hidden-by-default inner blocks in the tree for the site plugins to
// rework, and sites hiding junk through page-level CSS need site-specific
// countermeasures anyway.
func (c *Cleaner) Element(sel *goquery.Selection) {
	sel.Find("script, noscript, iframe, ins, button, select, textarea").Remove()

	sel.Find(`[hidden], [aria-hidden="true"]`).Remove()

	stripEventHandlers(sel)

	sel.Find(".footnote").Each(func(_ int, el *goquery.Selection) {
		if h, err := goquery.OuterHtml(el); err == nil {
			c.footnotes = append(c.footnotes, strings.TrimSpace(h))
		}
		el.Remove()
	})
}

// Footnotes returns the fragments accumulated so far.
func (c *Cleaner) Footnotes() []string {
	return c.footnotes
}

// Reset clears the accumulator for the next run.
func (c *Cleaner) Reset() {
	c.footnotes = nil
}

func stripEventHandlers(sel *goquery.Selection) {
	walk(sel, func(n *html.Node) {
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if !strings.HasPrefix(strings.ToLower(a.Key), "on") {
				kept = append(kept, a)
			}
		}
		n.Attr = kept
	})
}

func walk(sel *goquery.Selection, fn func(*html.Node)) {
	for _, root := range sel.Nodes {
		var rec func(n *html.Node)
		rec = func(n *html.Node) {
			if n.Type == html.ElementNode {
				fn(n)
			}
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				rec(child)
			}
		}
		rec(root)
	}
}
