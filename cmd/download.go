package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/output"
	"github.com/brogergvhs/noveld/internal/sites"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagURL string

	// runtime
	flagOutput  string
	flagFormat  string
	flagNoCover bool
	flagTimeout int

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string

	// site-specific options, declared by the plugins themselves
	siteOptionDefs []sites.OptionDef
	siteBoolVals   = map[string]*bool{}
	siteIntVals    = map[string]*int{}
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download a webnovel and write it as a single HTML file or zip archive. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	downloadCmd.Flags().StringVar(&flagURL, "url", "", "story page URL")

	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder")
	downloadCmd.Flags().StringVar(&flagFormat, "format", "", "output format: html or zip")
	downloadCmd.Flags().BoolVar(&flagNoCover, "no-cover", false, "do not download the cover image")
	downloadCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "HTTP timeout in seconds")

	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	registerSiteFlags(downloadCmd)

	rootCmd.AddCommand(downloadCmd)
}

// registerSiteFlags exposes every registered plugin's declared options as
// CLI flags. Plugins sharing an option name share the flag.
func registerSiteFlags(cmd *cobra.Command) {
	seen := map[string]bool{}

	for _, s := range sites.All() {
		for _, def := range s.OptionDefs() {
			if seen[def.Flag] {
				continue
			}
			seen[def.Flag] = true
			siteOptionDefs = append(siteOptionDefs, def)

			switch def.Type {
			case sites.BoolOption:
				dv, _ := def.Default.(bool)
				siteBoolVals[def.Name] = cmd.Flags().Bool(def.Flag, dv, def.Help)
			case sites.IntOption:
				dv, _ := def.Default.(int)
				siteIntVals[def.Name] = cmd.Flags().Int(def.Flag, dv, def.Help)
			}
		}
	}
}

// siteOptions resolves the site-specific option values: flag values by
// default, with config-file site_options filling in flags the user did
// not set explicitly.
func siteOptions(cmd *cobra.Command, cfg *config.Config) sites.Options {
	opts := sites.Options{}

	for _, def := range siteOptionDefs {
		switch def.Type {
		case sites.BoolOption:
			opts[def.Name] = *siteBoolVals[def.Name]
		case sites.IntOption:
			opts[def.Name] = *siteIntVals[def.Name]
		}

		if cmd.Flags().Changed(def.Flag) {
			continue
		}
		if v, ok := cfg.SiteOptions[def.Name]; ok {
			switch t := v.(type) {
			case bool:
				opts[def.Name] = t
			case int:
				opts[def.Name] = t
			}
		}
	}

	return opts
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:   flagIgnoreConfig,
		Debug:          flagDebug,
		Output:         flagOutput,
		Format:         flagFormat,
		NoCover:        flagNoCover,
		TimeoutSeconds: flagTimeout,
		DefaultURL:     flagURL,
		Cookie:         flagCookie,
		CookieFile:     flagCookieFile,
		UserAgent:      flagUserAgent,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	if cfg.Format != "html" && cfg.Format != "zip" {
		return fmt.Errorf("unknown format %q (want html or zip)", cfg.Format)
	}

	if cfg.Output == "" {
		cfg.Output = "."
	}
	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	if cfg.DefaultURL == "" {
		return fmt.Errorf("missing --url and no default_url in config")
	}

	site, canonical, ok := sites.ForURL(cfg.DefaultURL)
	if !ok {
		return fmt.Errorf("no site plugin recognizes %q", cfg.DefaultURL)
	}

	client, err := fetch.New(fetch.Options{
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		UserAgent:  fetch.PickUserAgent(cfg.UserAgent),
		Cookie:     cfg.Cookie,
		CookieFile: cfg.CookieFile,
		Logger:     logSvc,
	})
	if err != nil {
		return err
	}

	util.SetupInterruptHandler(cfg.Output)

	opts := siteOptions(cmd, cfg)

	pm := ui.NewProgressManager()
	bar := pm.StoryBar(site.Name())
	ctx := sites.ContextWithProgress(context.Background(), bar.Update)

	start := time.Now()

	story, err := site.Extract(ctx, client, canonical, opts)
	bar.MarkDone()
	pm.Close()
	if err != nil {
		return err
	}

	var totalBytes int64

	coverRef := story.CoverURL
	if !cfg.NoCover && story.CoverURL != "" {
		name, n, cerr := output.SaveCover(ctx, client, story.CoverURL, cfg.Output, output.Sanitize(story.Title))
		if cerr != nil {
			logSvc.Errorf("cover download failed: %v\n", cerr)
		} else {
			coverRef = name
			totalBytes += n
		}
	}

	var path string
	var written int64
	switch cfg.Format {
	case "zip":
		path, written, err = output.WriteArchive(story, cfg.Output, coverRef)
	default:
		path, written, err = output.WriteHTML(story, cfg.Output, coverRef)
	}
	if err != nil {
		return err
	}
	totalBytes += written

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Story:    %s by %s\n", story.Title, story.Author)
	fmt.Printf("Chapters: %d\n", len(story.Chapters))
	fmt.Printf("Output:   %s\n", path)
	fmt.Printf("Data:     %s\n", util.Human(totalBytes))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))
	fmt.Println("\nAll done.")

	return nil
}
