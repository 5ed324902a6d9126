// Package royalroad extracts stories from royalroad.com and its alternate
// domain. The landing page provides the metadata and the definitive
// chapter ordering; each chapter page is fetched sequentially in that
// order.
package royalroad

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/clean"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/sites"
)

// The site emits abnormally many response headers; extractions run with a
// raised per-response header budget instead of touching global state.
const responseHeaderLimit = 1 << 20

func init() {
	sites.Register(New("royalroad"))
	sites.Register(New("royalroadldl"))
}

// Site extracts stories from one royalroad-style domain.
type Site struct {
	domain  string
	pattern *regexp.Regexp
}

// New builds the plugin for the given domain, e.g. "royalroad" for
// royalroad.com.
func New(domain string) *Site {
	return &Site{
		domain: domain,
		pattern: regexp.MustCompile(
			`^(https?://(?:www\.)?` + regexp.QuoteMeta(domain) + `\.com/fiction/(\d+))(?:[/?#].*)?$`),
	}
}

// Name implements sites.Site.
func (s *Site) Name() string {
	return s.domain
}

// Match recognizes story URLs like
// https://www.royalroad.com/fiction/6752/lament-of-the-fallen and
// normalizes them to the canonical form with a trailing slash. Trailing
// slugs, query strings and fragments are tolerated.
func (s *Site) Match(rawURL string) (string, bool) {
	m := s.pattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1] + "/", true
}

// OptionDefs implements sites.Site.
func (s *Site) OptionDefs() []sites.OptionDef {
	return []sites.OptionDef{
		{
			Name:    "skip_spoilers",
			Flag:    "skip-spoilers",
			Type:    sites.BoolOption,
			Default: true,
			Help:    "rewrite spoiler sections as visible inline text with a [SPOILER] header",
		},
		{
			Name: "offset",
			Flag: "offset",
			Type: sites.IntOption,
			Help: "zero-based chapter index to start from (0 = from the beginning)",
		},
		{
			Name: "limit",
			Flag: "limit",
			Type: sites.IntOption,
			Help: "chapter index to stop at, exclusive (0 = no limit)",
		},
	}
}

// Extract implements sites.Site.
func (s *Site) Extract(ctx context.Context, client *fetch.Client, rawURL string, opts sites.Options) (*sites.Story, error) {
	m := s.pattern.FindStringSubmatch(rawURL)
	if m == nil {
		return nil, fmt.Errorf("no fiction id in %q", rawURL)
	}
	workID := m[2]

	client = client.WithResponseHeaderLimit(responseHeaderLimit)

	// The canonical host is used regardless of how the URL was spelled.
	doc, err := client.Document(ctx, fmt.Sprintf("https://www.%s.com/fiction/%s", s.domain, workID))
	if err != nil {
		return nil, err
	}

	base := rawURL
	if href, ok := doc.Find("head base").First().Attr("href"); ok && href != "" {
		base = href
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return nil, fmt.Errorf("no title found on %q", rawURL)
	}

	author, ok := doc.Find(`meta[property="books:author"]`).First().Attr("content")
	if !ok {
		return nil, fmt.Errorf("no author meta on %q", rawURL)
	}

	canonical, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content")
	if !ok {
		return nil, fmt.Errorf("no og:url meta on %q", rawURL)
	}

	summary, _ := goquery.OuterHtml(doc.Find("div.description").First())

	story := &sites.Story{
		Title:    title,
		Author:   strings.TrimSpace(author),
		URL:      strings.TrimSpace(canonical),
		CoverURL: resolveURL(base, doc.Find("img.thumbnail").First().AttrOr("src", "")),
		Summary:  strings.TrimSpace(summary),
	}

	doc.Find("span.tags a.fiction-tag").Each(func(_ int, tag *goquery.Selection) {
		story.Tags = append(story.Tags, strings.TrimSpace(tag.Text()))
	})

	offset := opts.Int("offset")
	limit := opts.Int("limit")
	skipSpoilers := opts.Bool("skip_spoilers", true)

	cleaner := clean.New()

	rows := doc.Find("#chapters tbody tr[data-url]")
	total := includedCount(rows.Length(), offset, limit)

	rows.EachWithBreak(func(index int, row *goquery.Selection) bool {
		// Indices are zero-based over the full row list; filtering does
		// not renumber.
		if offset > 0 && index < offset {
			return true
		}
		if limit > 0 && index >= limit {
			return false
		}

		chapterURL := resolveURL(story.URL, row.AttrOr("data-url", ""))

		contents, updated, cerr := s.chapter(ctx, client, cleaner, chapterURL, len(story.Chapters)+1, skipSpoilers)
		if cerr != nil {
			err = cerr
			return false
		}

		story.Chapters = append(story.Chapters, sites.Chapter{
			Title:    strings.TrimSpace(row.Find("a[href]").First().Text()),
			Contents: contents,
			Date:     updated,
		})
		sites.ReportProgress(ctx, len(story.Chapters), total)

		return true
	})
	if err != nil {
		return nil, err
	}

	story.Footnotes = cleaner.Footnotes()
	cleaner.Reset()

	return story, nil
}

// chapter fetches one chapter page and returns its merged HTML contents
// and publication time. The chapter number is only used for logging.
func (s *Site) chapter(ctx context.Context, client *fetch.Client, cleaner *clean.Cleaner, chapterURL string, num int, skipSpoilers bool) (string, time.Time, error) {
	client.Logger().Debugf("extracting chapter %d @ %s\n", num, chapterURL)

	doc, err := client.Document(ctx, chapterURL)
	if err != nil {
		return "", time.Time{}, err
	}

	content := doc.Find("div.chapter-content").First()
	if content.Length() == 0 {
		return "", time.Time{}, fmt.Errorf("no chapter content at %q", chapterURL)
	}

	cleaner.Element(content)
	removeHiddenWarnings(content, doc)
	if skipSpoilers {
		normalizeSpoilers(content)
	}

	contents, err := goquery.OuterHtml(content)
	if err != nil {
		return "", time.Time{}, err
	}

	notes := doc.Find("div.author-note-portlet")
	switch notes.Length() {
	case 1:
		note, _ := goquery.OuterHtml(notes.First())
		if content.Parent().ChildrenFiltered("div").First().HasClass("author-note-portlet") {
			contents = note + "<hr/>" + contents
		} else {
			contents = contents + "<hr/>" + note
		}
	case 2:
		before, _ := goquery.OuterHtml(notes.First())
		after, _ := goquery.OuterHtml(notes.Eq(1))
		contents = before + "<hr/>" + contents + "<hr/>" + after
	}

	unixtime, ok := doc.Find(".profile-info time").First().Attr("unixtime")
	if !ok {
		return "", time.Time{}, fmt.Errorf("no publication time at %q", chapterURL)
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(unixtime), 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("bad unixtime at %q: %w", chapterURL, err)
	}

	return contents, time.Unix(secs, 0), nil
}

// includedCount is the number of rows inside the half-open index range
// [offset, limit) over n rows. Zero means the bound is unset.
func includedCount(n, offset, limit int) int {
	end := n
	if limit > 0 && limit < end {
		end = limit
	}
	start := 0
	if offset > 0 {
		start = offset
	}
	if start >= end {
		return 0
	}
	return end - start
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
