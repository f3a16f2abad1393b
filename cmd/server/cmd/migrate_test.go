package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range migrateCmd.Commands() {
		names[sub.Name()] = true
	}
	require.True(t, names["up"])
	require.True(t, names["down"])

	require.NotNil(t, migrateCmd.PersistentFlags().Lookup("path"))
	require.NotNil(t, migrateDownCmd.Flags().Lookup("steps"))
}
