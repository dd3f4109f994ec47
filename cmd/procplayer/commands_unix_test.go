//go:build unix

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeEngine creates a program that passes every turn and reports a 40-24 board.
func writeEngine(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "engine")
	script := "#!/bin/sh\necho ready\nwhile read x y ms; do echo \"-1 -1 40 24\"; done\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--shell", "sh", "--log-level", "error"}, args...))

	require.NoError(t, rootCmd.Execute())

	return out.String()
}

// TestProbeCommand tests probing a program for its opening move.
func TestProbeCommand(t *testing.T) {
	out := run(t, "probe", writeEngine(t), "--side", "white")

	require.Contains(t, out, "pass")
	require.Contains(t, out, "extra [40 24]")
}

// TestMatchAndSummaryCommands tests a stored match and its summary.
func TestMatchAndSummaryCommands(t *testing.T) {
	engine := writeEngine(t)
	resultsPath := filepath.Join(t.TempDir(), "games.jsonl")

	out := run(t, "match", engine, engine, "--games", "1", "--parallel", "1", "--results", resultsPath)

	require.Contains(t, out, "40-24")
	require.Contains(t, out, "Final: 1-1-0")

	out = run(t, "summary", resultsPath)

	require.Contains(t, out, "Games: 2")
	require.Contains(t, out, "A:engine")
	require.Contains(t, out, "B:engine")
}
