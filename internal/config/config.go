package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output         string `yaml:"output"`
	Format         string `yaml:"format"` // html or zip
	Debug          bool   `yaml:"debug"`
	NoCover        bool   `yaml:"no_cover"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	DefaultURL string `yaml:"default_url"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`

	// SiteOptions holds defaults for site-specific options, keyed by
	// option name (e.g. skip_spoilers, offset, limit). CLI flags that
	// were explicitly set win over these.
	SiteOptions map[string]any `yaml:"site_options"`
}

type Options struct {
	IgnoreConfig   bool
	Debug          bool
	Output         string
	Format         string
	NoCover        bool
	TimeoutSeconds int
	DefaultURL     string
	Cookie         string
	CookieFile     string
	UserAgent      string
}

func DefaultConfig() *Config {
	return &Config{
		Output:         ".",
		Format:         "html",
		Debug:          false,
		NoCover:        false,
		TimeoutSeconds: 30,
		DefaultURL:     "",
		Cookie:         "",
		CookieFile:     "",
		UserAgent:      "",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `noveld config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.NoCover {
		c.NoCover = true
	}
	if o.TimeoutSeconds != 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Format == "" {
		c.Format = "html"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
}

func (c *Config) Print() {
	if c.Output != "" {
		fmt.Printf(" -output: %s\n", c.Output)
	}
	fmt.Printf(" -format: %s\n", c.Format)
	fmt.Printf(" -timeout_seconds: %d\n", c.TimeoutSeconds)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.NoCover {
		fmt.Printf(" -no_cover: %t\n", c.NoCover)
	}
	if c.DefaultURL != "" {
		fmt.Printf(" -url: %s\n", c.DefaultURL)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	for name, v := range c.SiteOptions {
		fmt.Printf(" -site_options.%s: %v\n", name, v)
	}
}
