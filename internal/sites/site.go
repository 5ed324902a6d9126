// Package sites defines the site plugin contract and the registry through
// which URLs are dispatched to the plugin that knows how to extract them.
// Plugins register themselves from their package init.
package sites

import (
	"context"
	"time"

	"github.com/brogergvhs/noveld/internal/fetch"
)

// Story is the normalized result of one extraction run.
type Story struct {
	Title    string
	Author   string
	URL      string
	CoverURL string
	Summary  string
	Tags     []string
	Chapters []Chapter

	// Footnotes are collected as a side effect of content cleaning across
	// all chapters and attached once the chapter loop finishes.
	Footnotes []string
}

// Chapter holds one chapter in table-of-contents order.
type Chapter struct {
	Title    string
	Contents string
	Date     time.Time
}

// Site is a single site plugin.
type Site interface {
	// Name identifies the plugin, e.g. "royalroad".
	Name() string

	// Match reports whether the URL belongs to this site and, if so,
	// returns the canonical story URL. Pure, no network access.
	Match(rawURL string) (string, bool)

	// OptionDefs declares the site-specific options the CLI should expose.
	OptionDefs() []OptionDef

	// Extract fetches the story page and every eligible chapter and
	// returns the assembled story. A missing required element aborts the
	// whole story; no partial story is returned.
	Extract(ctx context.Context, client *fetch.Client, rawURL string, opts Options) (*Story, error)
}

// OptionType is the value type of a site-specific option.
type OptionType int

const (
	BoolOption OptionType = iota
	IntOption
)

// OptionDef declares one site-specific option for the CLI layer.
type OptionDef struct {
	Name    string // option key, e.g. "skip_spoilers"
	Flag    string // CLI flag name, e.g. "skip-spoilers"
	Type    OptionType
	Default any
	Help    string
}

// Options carries resolved site-specific option values into Extract.
type Options map[string]any

// Bool returns the named option, or def when unset or not a bool.
func (o Options) Bool(name string, def bool) bool {
	if v, ok := o[name].(bool); ok {
		return v
	}
	return def
}

// Int returns the named option. Zero means unset, matching the CLI
// defaults for offset/limit style options.
func (o Options) Int(name string) int {
	if v, ok := o[name].(int); ok {
		return v
	}
	return 0
}
