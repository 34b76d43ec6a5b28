package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "ragdex", rootCmd.Use)
}

func TestRootCmd_HasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag, "verbose flag should exist")
	assert.Equal(t, "v", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{
		"search", "sync", "sources", "rebuild", "info",
		"history", "settings", "serve", "tui", "watch", "version",
	} {
		assert.True(t, names[want], "command %q should be registered", want)
	}
}

func TestNeedsServices_SkipsUtilityCommands(t *testing.T) {
	assert.False(t, needsServices(versionCmd))
	assert.True(t, needsServices(searchCmd))
	assert.True(t, needsServices(syncCmd))
	assert.True(t, needsServices(sourcesAddCmd))
}
