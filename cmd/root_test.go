package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"classify", "train", "predict", "render", "fetch", "runs"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "landcover", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestTrainCommand_Flags(t *testing.T) {
	flag := trainCmd.Flags().Lookup("out")
	require.NotNil(t, flag, "train command should have --out flag")
}

func TestPredictCommand_Flags(t *testing.T) {
	require.NotNil(t, predictCmd.Flags().Lookup("model"))
	require.NotNil(t, predictCmd.Flags().Lookup("out"))
}

func TestRenderCommand_Flags(t *testing.T) {
	require.NotNil(t, renderCmd.Flags().Lookup("raster"))
	require.NotNil(t, renderCmd.Flags().Lookup("model"))
	require.NotNil(t, renderCmd.Flags().Lookup("out"))
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	cmds := runsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"list", "show", "stats"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}
