package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCommandHasStreamSubcommand(t *testing.T) {
	root := NewRootCommand()
	found := false
	for _, c := range root.Commands() {
		if c.Name() == "stream" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNewRootCommandHelpMentionsClaudeCode(t *testing.T) {
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"--help"})
	_ = root.Execute()
	assert.True(t, strings.Contains(buf.String(), "Claude Code") || strings.Contains(buf.String(), "cc-tail"))
}

func TestBuildConfigDefaultsWhenNoFlagsSet(t *testing.T) {
	resetRootFlags(t)
	cfg := buildConfig(nil)
	assert.Equal(t, "", cfg.Project)
	assert.Equal(t, "", cfg.Session)
}

func TestBuildConfigAppliesThemeFlag(t *testing.T) {
	resetRootFlags(t)
	rootFlags.theme = "light"
	cfg := buildConfig(nil)
	assert.Equal(t, "light", string(cfg.Theme))
}

func TestBuildConfigIgnoresUnknownTheme(t *testing.T) {
	resetRootFlags(t)
	rootFlags.theme = "not-a-theme"
	cfg := buildConfig(nil)
	assert.NotEqual(t, "not-a-theme", string(cfg.Theme))
}

func resetRootFlags(t *testing.T) {
	t.Helper()
	saved := rootFlags
	t.Cleanup(func() { rootFlags = saved })
	rootFlags = struct {
		project    string
		session    string
		verbose    bool
		theme      string
		configPath string
	}{}
}
