package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLightThemeDiffersFromDark(t *testing.T) {
	dark := ColorsFor(ThemeDark)
	light := ColorsFor(ThemeLight)
	assert.NotEqual(t, dark.LogStreamText, light.LogStreamText)
	assert.NotEqual(t, dark.StatusBarBg, light.StatusBarBg)
	assert.NotEqual(t, dark.FilterOverlayBg, light.FilterOverlayBg)
}

func TestColorsForUnknownThemeDefaultsToDark(t *testing.T) {
	assert.Equal(t, ColorsFor(ThemeDark), ColorsFor(Theme("something-else")))
}

func TestDarkThemeSelfConsistent(t *testing.T) {
	dark := ColorsFor(ThemeDark)
	for _, c := range dark.AgentPalette {
		assert.NotEmpty(t, c)
	}
	assert.NotEqual(t, dark, ColorsFor(ThemeLight))
}

func TestParseThemeRoundTripsWithString(t *testing.T) {
	for _, s := range []string{"dark", "light", "Dark", "LIGHT"} {
		theme, ok := ParseTheme(s)
		assert.True(t, ok)
		_, ok2 := ParseTheme(theme.String())
		assert.True(t, ok2)
	}
}
