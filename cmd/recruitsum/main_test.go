package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindFlagDefaultsPerCommand(t *testing.T) {
	require.Equal(t, "both", runCmd.Flags().Lookup("kind").DefValue)
	require.Equal(t, "both", serveCmd.Flags().Lookup("kind").DefValue)
	require.Equal(t, "users", runsCmd.Flags().Lookup("kind").DefValue)
}

func TestKindFlagsAreIndependent(t *testing.T) {
	require.NoError(t, runsCmd.Flags().Set("kind", "entryprocess"))
	t.Cleanup(func() { _ = runsCmd.Flags().Set("kind", "users") })

	require.Equal(t, "both", runCmd.Flags().Lookup("kind").Value.String())
	require.Equal(t, "both", serveCmd.Flags().Lookup("kind").Value.String())
	require.Equal(t, "entryprocess", runsCmd.Flags().Lookup("kind").Value.String())
}
