package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestNewStreamCommandRequiresFileFlag(t *testing.T) {
	cmd := newStreamCommand()
	err := cmd.Flags().Set("replay", "5")
	assert.NoError(t, err)

	fileFlag := cmd.Flags().Lookup("file")
	if assert.NotNil(t, fileFlag) {
		assert.Equal(t, "", fileFlag.DefValue)
		assert.Equal(t, []string{"true"}, fileFlag.Annotations[cobra.BashCompOneRequiredFlag])
	}
}

func TestNewStreamCommandDefaultReplayCount(t *testing.T) {
	cmd := newStreamCommand()
	replayFlag := cmd.Flags().Lookup("replay")
	if assert.NotNil(t, replayFlag) {
		assert.Equal(t, "20", replayFlag.DefValue)
	}
}
