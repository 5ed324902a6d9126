package output

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/noveld/internal/sites"
)

// WriteHTML writes the story as one standalone HTML document under dir
// and returns the output path and the number of bytes written. coverRef
// is the image reference to embed, either a local file name or a URL;
// empty means no cover.
func WriteHTML(story *sites.Story, dir, coverRef string) (string, int64, error) {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\"/>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(story.Title))
	b.WriteString("</head>\n<body>\n")

	writeFrontMatter(&b, story, coverRef)

	for i, ch := range story.Chapters {
		fmt.Fprintf(&b, "<section class=\"chapter\" id=\"chapter-%d\">\n", i+1)
		writeChapterBody(&b, ch)
		b.WriteString("</section>\n")
	}

	writeFootnotes(&b, story.Footnotes)

	b.WriteString("</body>\n</html>\n")

	path := filepath.Join(dir, Sanitize(story.Title)+".html")
	if err := writeAtomic(path, []byte(b.String())); err != nil {
		return "", 0, err
	}

	return path, int64(b.Len()), nil
}

func writeFrontMatter(b *strings.Builder, story *sites.Story, coverRef string) {
	fmt.Fprintf(b, "<h1>%s</h1>\n", html.EscapeString(story.Title))
	fmt.Fprintf(b, "<p class=\"author\">by %s</p>\n", html.EscapeString(story.Author))

	if coverRef != "" {
		fmt.Fprintf(b, "<img class=\"cover\" src=%q alt=\"cover\"/>\n", coverRef)
	}

	if story.Summary != "" {
		// Raw HTML fragment straight from the site.
		b.WriteString(story.Summary)
		b.WriteString("\n")
	}

	if len(story.Tags) > 0 {
		b.WriteString("<ul class=\"tags\">\n")
		for _, tag := range story.Tags {
			fmt.Fprintf(b, "<li>%s</li>\n", html.EscapeString(tag))
		}
		b.WriteString("</ul>\n")
	}

	if story.URL != "" {
		fmt.Fprintf(b, "<p class=\"source\"><a href=%q>%s</a></p>\n",
			story.URL, html.EscapeString(story.URL))
	}
}

func writeChapterBody(b *strings.Builder, ch sites.Chapter) {
	fmt.Fprintf(b, "<h2>%s</h2>\n", html.EscapeString(ch.Title))
	if !ch.Date.IsZero() {
		fmt.Fprintf(b, "<p class=\"published\">%s</p>\n", ch.Date.Format("2006-01-02"))
	}
	b.WriteString(ch.Contents)
	b.WriteString("\n")
}

func writeFootnotes(b *strings.Builder, footnotes []string) {
	if len(footnotes) == 0 {
		return
	}

	b.WriteString("<hr/>\n<section class=\"footnotes\">\n<ol>\n")
	for _, fn := range footnotes {
		b.WriteString("<li>")
		b.WriteString(fn)
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>\n</section>\n")
}

// writeAtomic writes to path+".part" and renames into place, so an
// interrupted run never leaves a half-written output file behind.
func writeAtomic(path string, data []byte) error {
	part := path + ".part"

	if err := os.WriteFile(part, data, 0644); err != nil {
		return err
	}

	if err := os.Rename(part, path); err != nil {
		_ = os.Remove(part)
		return err
	}

	return nil
}
