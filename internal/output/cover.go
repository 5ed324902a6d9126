package output

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/noveld/internal/fetch"
)

// SaveCover downloads the story's cover image into dir next to the story
// file. It returns the written file's base name and size.
func SaveCover(ctx context.Context, client *fetch.Client, coverURL, dir, base string) (string, int64, error) {
	resp, err := client.Get(ctx, coverURL)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	ct := resp.Header.Get("Content-Type")
	if ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return "", 0, fmt.Errorf("unexpected MIME for cover: %s", ct)
		}
	}

	name := base + "_cover" + coverExt(coverURL, ct)
	full := filepath.Join(dir, name)
	part := full + ".part"

	f, err := os.Create(part)
	if err != nil {
		return "", 0, err
	}

	written, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(part)
		return "", 0, err
	}

	if err := os.Rename(part, full); err != nil {
		_ = os.Remove(part)
		return "", 0, err
	}

	return name, written, nil
}

// coverExt derives the file extension from the URL path, falling back to
// the content type and finally to .jpg.
func coverExt(coverURL, contentType string) string {
	if u, err := url.Parse(coverURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" {
			return ext
		}
	}

	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
				return exts[0]
			}
		}
	}

	return ".jpg"
}
