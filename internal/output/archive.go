package output

import (
	"archive/zip"
	"fmt"
	"html"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/noveld/internal/sites"
)

// WriteArchive writes the story as a zip archive under dir: an index page
// with the metadata and table of contents, plus one page per chapter.
func WriteArchive(story *sites.Story, dir, coverRef string) (string, int64, error) {
	path := filepath.Join(dir, Sanitize(story.Title)+".zip")
	part := path + ".part"

	out, err := os.Create(part)
	if err != nil {
		return "", 0, fmt.Errorf("archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			log.Printf("error closing output file %s: %v", part, cerr)
		}
	}()

	z := zip.NewWriter(out)

	if err := addEntry(z, "index.html", indexPage(story, coverRef)); err != nil {
		return "", 0, err
	}

	for i, ch := range story.Chapters {
		name := fmt.Sprintf("chapter_%03d.html", i+1)
		if err := addEntry(z, name, chapterPage(ch)); err != nil {
			return "", 0, err
		}
	}

	if err := z.Close(); err != nil {
		return "", 0, fmt.Errorf("archive: %w", err)
	}

	info, err := out.Stat()
	if err != nil {
		return "", 0, err
	}

	if err := os.Rename(part, path); err != nil {
		_ = os.Remove(part)
		return "", 0, err
	}

	return path, info.Size(), nil
}

func addEntry(z *zip.Writer, name, contents string) error {
	header := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}

	w, err := z.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(contents))
	return err
}

func indexPage(story *sites.Story, coverRef string) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\"/>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(story.Title))
	b.WriteString("</head>\n<body>\n")

	writeFrontMatter(&b, story, coverRef)

	b.WriteString("<ol class=\"toc\">\n")
	for i, ch := range story.Chapters {
		fmt.Fprintf(&b, "<li><a href=\"chapter_%03d.html\">%s</a></li>\n",
			i+1, html.EscapeString(ch.Title))
	}
	b.WriteString("</ol>\n")

	writeFootnotes(&b, story.Footnotes)

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func chapterPage(ch sites.Chapter) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\"/>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(ch.Title))
	b.WriteString("</head>\n<body>\n")

	writeChapterBody(&b, ch)

	b.WriteString("</body>\n</html>\n")
	return b.String()
}
