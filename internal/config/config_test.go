package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	assert.Equal(t, "", cfg.Project)
	assert.Equal(t, "", cfg.Session)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, ThemeDark, cfg.Theme)
	assert.True(t, cfg.Display.Timestamps)
	assert.Equal(t, "15:04:05", cfg.Display.TimestampFormat)
	assert.Equal(t, "cc-tail", cfg.Tmux.SessionPrefix)
	assert.Equal(t, "tiled", cfg.Tmux.Layout)
}

func TestBuildDefaultsWhenConfigMissing(t *testing.T) {
	opts := CLIOptions{ConfigPath: filepath.Join(t.TempDir(), "nonexistent.toml")}
	cfg := Build(opts, nil)
	assert.Equal(t, DefaultAppConfig(), cfg)
}

func TestBuildFileOverridesDefaults(t *testing.T) {
	path := writeTOML(t, `
verbose = true
theme = "light"

[display]
timestamps = false
timestamp_format = "%H:%M"

[tmux]
session_prefix = "custom"
layout = "even-vertical"
`)
	cfg := Build(CLIOptions{ConfigPath: path}, nil)

	assert.True(t, cfg.Verbose)
	assert.Equal(t, ThemeLight, cfg.Theme)
	assert.False(t, cfg.Display.Timestamps)
	assert.Equal(t, "%H:%M", cfg.Display.TimestampFormat)
	assert.Equal(t, "custom", cfg.Tmux.SessionPrefix)
	assert.Equal(t, "even-vertical", cfg.Tmux.Layout)
}

func TestBuildCLIOverridesFile(t *testing.T) {
	path := writeTOML(t, `
verbose = false
theme = "light"
`)
	opts := CLIOptions{
		ConfigPath: path,
		Verbose:    true,
		Theme:      ThemeDark,
		ThemeSet:   true,
		Project:    "/my/project",
		Session:    "abc123",
	}
	cfg := Build(opts, nil)

	assert.True(t, cfg.Verbose)
	assert.Equal(t, ThemeDark, cfg.Theme)
	assert.Equal(t, "/my/project", cfg.Project)
	assert.Equal(t, "abc123", cfg.Session)
}

func TestBuildCLIVerboseFalseDoesNotOverrideFile(t *testing.T) {
	path := writeTOML(t, `verbose = true`)
	cfg := Build(CLIOptions{ConfigPath: path, Verbose: false}, nil)
	assert.True(t, cfg.Verbose)
}

func TestBuildPartialFile(t *testing.T) {
	path := writeTOML(t, `theme = "light"`)
	cfg := Build(CLIOptions{ConfigPath: path}, nil)

	assert.False(t, cfg.Verbose)
	assert.Equal(t, ThemeLight, cfg.Theme)
	assert.True(t, cfg.Display.Timestamps)
	assert.Equal(t, "15:04:05", cfg.Display.TimestampFormat)
	assert.Equal(t, "cc-tail", cfg.Tmux.SessionPrefix)
	assert.Equal(t, "tiled", cfg.Tmux.Layout)
}

func TestBuildUnknownThemeInFileUsesDefault(t *testing.T) {
	path := writeTOML(t, `theme = "solarized"`)
	cfg := Build(CLIOptions{ConfigPath: path}, nil)
	assert.Equal(t, ThemeDark, cfg.Theme)
}

func TestBuildUnknownKeysIgnored(t *testing.T) {
	path := writeTOML(t, `
verbose = false
unknown_key = "should be ignored"

[display]
timestamps = true
fancy_mode = true

[unknown_section]
foo = "bar"
`)
	cfg := Build(CLIOptions{ConfigPath: path}, nil)
	assert.False(t, cfg.Verbose)
	assert.True(t, cfg.Display.Timestamps)
}

func TestBuildMalformedTOMLFallsBackToDefaults(t *testing.T) {
	path := writeTOML(t, "this is not valid toml [[[")
	cfg := Build(CLIOptions{ConfigPath: path}, nil)
	assert.Equal(t, DefaultAppConfig(), cfg)
}

func TestBuildEmptyConfigPathUsesOSDefault(t *testing.T) {
	// With no explicit ConfigPath, Build falls back to the OS default path
	// (most likely absent in a test sandbox) and should still return a
	// usable, valid theme rather than erroring.
	cfg := Build(CLIOptions{}, nil)
	assert.Contains(t, []Theme{ThemeDark, ThemeLight}, cfg.Theme)
}

func TestParseTheme(t *testing.T) {
	theme, ok := ParseTheme("dark")
	assert.True(t, ok)
	assert.Equal(t, ThemeDark, theme)

	theme, ok = ParseTheme("LIGHT")
	assert.True(t, ok)
	assert.Equal(t, ThemeLight, theme)

	_, ok = ParseTheme("solarized")
	assert.False(t, ok)

	_, ok = ParseTheme("")
	assert.False(t, ok)
}

func TestDefaultConfigPathNotEmpty(t *testing.T) {
	// os.UserConfigDir() can fail on some minimal environments, but under
	// normal test conditions it should succeed and end in cc-tail/config.toml.
	path := DefaultConfigPath()
	if path != "" {
		assert.Equal(t, "config.toml", filepath.Base(path))
		assert.Equal(t, "cc-tail", filepath.Base(filepath.Dir(path)))
	}
}
