package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMergedIgnoreConfig(t *testing.T) {
	cfg, src, err := LoadMerged(Options{
		IgnoreConfig: true,
		Format:       "zip",
		Output:       "/tmp/books",
	})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", src)
	assert.Equal(t, "zip", cfg.Format)
	assert.Equal(t, "/tmp/books", cfg.Output)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestMergeConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cookie = "from_config=1"
	cfg.UserAgent = "config-agent"

	mergeConfig(cfg, Options{
		Debug:          true,
		Format:         "zip",
		TimeoutSeconds: 90,
		Cookie:         "from_flag=1",
	})

	assert.True(t, cfg.Debug)
	assert.Equal(t, "zip", cfg.Format)
	assert.Equal(t, 90, cfg.TimeoutSeconds)
	assert.Equal(t, "from_flag=1", cfg.Cookie)

	// Unset flags leave config values alone.
	assert.Equal(t, "config-agent", cfg.UserAgent)
	assert.Equal(t, ".", cfg.Output)
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{}
	normalizeDefaults(cfg)

	assert.Equal(t, ".", cfg.Output)
	assert.Equal(t, "html", cfg.Format)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestSaveAndLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")

	want := DefaultConfig()
	want.Format = "zip"
	want.DefaultURL = "https://www.royalroad.com/fiction/12345/"
	want.SiteOptions = map[string]any{
		"skip_spoilers": false,
		"offset":        2,
	}
	require.NoError(t, SaveYAML(want, path))

	got, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, want.Format, got.Format)
	assert.Equal(t, want.DefaultURL, got.DefaultURL)
	assert.Equal(t, false, got.SiteOptions["skip_spoilers"])
	assert.Equal(t, 2, got.SiteOptions["offset"])
}

func TestLoadYAMLRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: [unclosed"), 0644))

	_, err := loadYAML(path)
	assert.Error(t, err)
}
