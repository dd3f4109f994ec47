//go:build integration

package integration

import (
	"errors"
	"os"
	"testing"

	"github.com/wagiedev/procplayer"
)

// programEnv names the player program the integration tests run.
const programEnv = "PROCPLAYER_TEST_PROGRAM"

// testProgram returns the program under test, skipping when none is set.
func testProgram(t *testing.T) string {
	t.Helper()

	program := os.Getenv(programEnv)
	if program == "" {
		t.Skipf("%s not set", programEnv)
	}

	return program
}

// skipIfProgramNotFound skips the test if the error indicates the program is missing.
func skipIfProgramNotFound(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*procplayer.ProgramNotFoundError](err); ok {
		t.Skip("player program not found")
	}
}

// onBoard reports whether m is a square of an 8x8 board.
func onBoard(m *procplayer.Move) bool {
	return m.X >= 0 && m.X < 8 && m.Y >= 0 && m.Y < 8
}
