package output

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/sites"
)

type coverTransport struct {
	contentType string
	body        string
}

func (ct coverTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	header := make(http.Header)
	header.Set("Content-Type", ct.contentType)
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(ct.body)),
		Request:    req,
	}, nil
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mother of Learning", "mother_of_learning"},
		{"Worth the Candle (Book 1)", "worth_the_candle_book_1"},
		{"Super-Duper... Story!!!", "super_duper_story"},
		{"  __ ", "story"},
		{"", "story"},
		{"Ærial Daggers", "ærial_daggers"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), "Sanitize(%q)", tt.in)
	}
}

func sampleStory() *sites.Story {
	return &sites.Story{
		Title:    "Test Story",
		Author:   "Author McAuthorface",
		URL:      "https://www.royalroad.com/fiction/12345/",
		Summary:  `<div class="description"><p>A story about tests.</p></div>`,
		Tags:     []string{"Fantasy", "LitRPG"},
		Chapters: []sites.Chapter{
			{
				Title:    "Chapter One",
				Contents: `<div class="chapter-content"><p>First chapter body.</p></div>`,
				Date:     time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC),
			},
			{
				Title:    "Chapter Two & After",
				Contents: `<div class="chapter-content"><p>Second chapter body.</p></div>`,
			},
		},
		Footnotes: []string{`<span class="footnote">a note</span>`},
	}
}

func TestWriteHTML(t *testing.T) {
	dir := t.TempDir()
	story := sampleStory()

	path, size, err := WriteHTML(story, dir, "test_story_cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test_story.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)

	out := string(data)
	assert.Contains(t, out, "<h1>Test Story</h1>")
	assert.Contains(t, out, "by Author McAuthorface")
	assert.Contains(t, out, `src="test_story_cover.jpg"`)
	assert.Contains(t, out, "A story about tests.")
	assert.Contains(t, out, "<li>Fantasy</li>")
	assert.Contains(t, out, "<li>LitRPG</li>")
	assert.Contains(t, out, "https://www.royalroad.com/fiction/12345/")

	// Chapters come out in order, titles escaped, bodies raw.
	first := strings.Index(out, "<h2>Chapter One</h2>")
	second := strings.Index(out, "<h2>Chapter Two &amp; After</h2>")
	require.True(t, first >= 0 && second >= 0)
	assert.Less(t, first, second)
	assert.Contains(t, out, "<p>First chapter body.</p>")
	assert.Contains(t, out, "2023-11-14")

	assert.Contains(t, out, `<span class="footnote">a note</span>`)

	// No temp file left behind.
	_, err = os.Stat(path + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteHTMLNoCoverNoFootnotes(t *testing.T) {
	dir := t.TempDir()
	story := sampleStory()
	story.Footnotes = nil

	path, _, err := WriteHTML(story, dir, "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "class=\"cover\"")
	assert.NotContains(t, out, "class=\"footnotes\"")
}

func TestWriteArchive(t *testing.T) {
	dir := t.TempDir()
	story := sampleStory()

	path, size, err := WriteArchive(story, dir, "test_story_cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test_story.zip"), path)
	assert.Greater(t, size, int64(0))

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	entries := make(map[string]string)
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		entries[f.Name] = string(b)
	}

	assert.Equal(t, []string{"index.html", "chapter_001.html", "chapter_002.html"}, names)

	index := entries["index.html"]
	assert.Contains(t, index, "<h1>Test Story</h1>")
	assert.Contains(t, index, `<a href="chapter_001.html">Chapter One</a>`)
	assert.Contains(t, index, `<a href="chapter_002.html">Chapter Two &amp; After</a>`)
	assert.Contains(t, index, `<span class="footnote">a note</span>`)

	assert.Contains(t, entries["chapter_001.html"], "<p>First chapter body.</p>")
	assert.Contains(t, entries["chapter_002.html"], "<p>Second chapter body.</p>")

	_, err = os.Stat(path + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveCover(t *testing.T) {
	dir := t.TempDir()
	client, err := fetch.New(fetch.Options{
		Transport: coverTransport{contentType: "image/png", body: "not-really-a-png"},
	})
	require.NoError(t, err)

	name, n, err := SaveCover(context.Background(), client,
		"https://cdn.example.com/covers/12345.png", dir, "test_story")
	require.NoError(t, err)
	assert.Equal(t, "test_story_cover.png", name)
	assert.Equal(t, int64(len("not-really-a-png")), n)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "not-really-a-png", string(data))

	_, err = os.Stat(filepath.Join(dir, name) + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveCoverRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	client, err := fetch.New(fetch.Options{
		Transport: coverTransport{contentType: "text/html", body: "<html>nope</html>"},
	})
	require.NoError(t, err)

	_, _, err = SaveCover(context.Background(), client,
		"https://cdn.example.com/covers/12345", dir, "test_story")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIME")
}

func TestCoverExt(t *testing.T) {
	assert.Equal(t, ".png", coverExt("https://cdn.example.com/covers/7.png", ""))
	assert.Equal(t, ".png", coverExt("https://cdn.example.com/covers/7.png?v=2", "image/jpeg"))
	assert.Equal(t, ".jpg", coverExt("https://cdn.example.com/covers/7", "application/x-unknown"))
	assert.Equal(t, ".jpg", coverExt("", ""))
}
