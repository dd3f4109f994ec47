//go:build unix

package procplayer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/procplayer/internal/procstat"
)

// writeProgram creates an executable shell script acting as a player program.
func writeProgram(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "player")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)
	require.NoError(t, err)

	return path
}

// lineRecorder is a stderr sink that keeps every line.
type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) sink(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = append(r.lines, line)
}

func (r *lineRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.lines...)
}

func newProcessTestPlayer(t *testing.T, program string, opts ...Option) *ProcessPlayer {
	t.Helper()

	opts = append([]Option{
		WithShell("sh"),
		WithCloseGracePeriod(100 * time.Millisecond),
		WithStderr(func(string) {}),
	}, opts...)

	player := NewProcessPlayer(program, opts...)

	t.Cleanup(func() {
		_ = player.Close(context.Background())
	})

	return player
}

// TestProcessPlayer_Game tests a short exchange with a real program.
func TestProcessPlayer_Game(t *testing.T) {
	requests := filepath.Join(t.TempDir(), "requests.txt")
	program := writeProgram(t, `echo "side $1" >&2
echo ready
while read x y ms; do
  echo "$x $y $ms" >> "$REQUESTS"
  echo "thinking" >&2
  if [ "$x" = "-1" ]; then echo "2 3"; else echo "-1 -1"; fi
done
`)

	var stderr lineRecorder

	player := newProcessTestPlayer(t, program,
		WithEnv(map[string]string{"REQUESTS": requests}),
		WithStderr(stderr.sink),
	)

	player.Init(White)
	require.Equal(t, StateReady, player.State())
	require.Positive(t, player.PID())

	require.Equal(t, NewMove(2, 3), player.DoMove(nil, 60000))
	require.Nil(t, player.DoMove(NewMove(3, 4), 5000))

	data, err := os.ReadFile(requests)
	require.NoError(t, err)
	require.Equal(t, "-1 -1 60000\n3 4 5000\n", string(data))

	require.NoError(t, player.Close(context.Background()))
	require.Equal(t, StateTerminated, player.State())

	lines := stderr.snapshot()
	require.NotEmpty(t, lines)
	require.Equal(t, "side White", lines[0])
}

// TestProcessPlayer_ProgramExitsInsteadOfAnswering tests that a crash ends the
// turn with the exit status rather than a pass.
func TestProcessPlayer_ProgramExitsInsteadOfAnswering(t *testing.T) {
	program := writeProgram(t, "echo ready\nread line\nexit 2\n")

	for range 5 {
		player := newProcessTestPlayer(t, program)
		require.NoError(t, player.Start(context.Background(), Black))

		start := time.Now()
		_, err := player.RequestMove(context.Background(), nil, 1000)

		require.Less(t, time.Since(start), 2*time.Second)
		require.NotErrorIs(t, err, ErrStreamClosed)

		procErr, ok := errors.AsType[*ProcessError](err)
		require.True(t, ok, "got %v", err)
		require.Equal(t, 2, procErr.ExitCode)
		require.Equal(t, StateTerminated, player.State())
		require.Nil(t, player.DoMove(nil, 1000))
	}
}

// TestProcessPlayer_ProgramExitsCleanly tests that a clean exit without a
// reply is a pass.
func TestProcessPlayer_ProgramExitsCleanly(t *testing.T) {
	program := writeProgram(t, "echo ready\nread line\nexit 0\n")
	player := newProcessTestPlayer(t, program)
	require.NoError(t, player.Start(context.Background(), Black))

	_, err := player.RequestMove(context.Background(), nil, 1000)

	require.ErrorIs(t, err, ErrStreamClosed)
}

// TestProcessPlayer_KilledExternally tests that the wait ends within a poll
// tick of the program being killed.
func TestProcessPlayer_KilledExternally(t *testing.T) {
	program := writeProgram(t, "echo ready\nwhile :; do sleep 1; done\n")
	player := newProcessTestPlayer(t, program, WithPollInterval(50*time.Millisecond))
	require.NoError(t, player.Start(context.Background(), Black))

	pid := player.PID()

	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}()

	start := time.Now()
	_, err := player.RequestMove(context.Background(), nil, 1000)
	elapsed := time.Since(start)

	require.Error(t, err)
	require.Less(t, elapsed, 2*time.Second)
	require.Equal(t, StateTerminated, player.State())
}

// TestProcessPlayer_MissingProgram tests that Init survives a missing program.
func TestProcessPlayer_MissingProgram(t *testing.T) {
	player := newProcessTestPlayer(t, filepath.Join(t.TempDir(), "missing"))

	player.Init(Black)

	require.Equal(t, StateTerminated, player.State())
	require.Nil(t, player.DoMove(nil, 1000))

	err := NewProcessPlayer(filepath.Join(t.TempDir(), "missing")).Start(context.Background(), Black)

	var notFound *ProgramNotFoundError
	require.ErrorAs(t, err, &notFound)
}

// TestProcessPlayer_NoHandshake tests a program that exits without its ready line.
func TestProcessPlayer_NoHandshake(t *testing.T) {
	player := newProcessTestPlayer(t, writeProgram(t, "echo 'cannot load book' >&2\nexit 1\n"))

	err := player.Start(context.Background(), Black)

	require.IsType(t, &HandshakeError{}, err)
	require.Equal(t, StateTerminated, player.State())
}

// TestProcessPlayer_MemoryWatchdog tests that the watchdog kills a program over its cap.
func TestProcessPlayer_MemoryWatchdog(t *testing.T) {
	program := writeProgram(t, "echo ready\nread line\nwhile :; do sleep 1; done\n")

	// A cap far below any real process's resident set.
	player := newProcessTestPlayer(t, program,
		WithMemoryLimitKB(1),
		WithMemoryWatchdog(true),
		WithPollInterval(20*time.Millisecond),
	)

	require.NoError(t, startWithoutUlimit(player))

	_, err := player.RequestMove(context.Background(), nil, 1000)

	require.ErrorIs(t, err, ErrMemoryLimitExceeded)
	require.Positive(t, player.Usage().RSSKB)
}

// startWithoutUlimit starts p with the ulimit directive suppressed, then
// arms the watchdog with the configured cap. ulimit -v 1 would stop the shell
// from running anything.
func startWithoutUlimit(p *ProcessPlayer) error {
	limit := p.options.MemoryLimitKB
	p.options.MemoryLimitKB = -1

	err := p.Start(context.Background(), Black)

	p.options.MemoryLimitKB = limit

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sampler == nil && p.transport != nil {
		p.sampler = procstat.NewSampler(p.transport.PID())
	}

	return err
}

// TestWithPlayer tests the lifecycle helper against a real program.
func TestWithPlayer(t *testing.T) {
	program := writeProgram(t, "echo ready\nwhile read x y ms; do echo \"7 7 $ms\"; done\n")

	var got Response

	err := WithPlayer(context.Background(), program, Black, func(p *ProcessPlayer) error {
		var err error

		got, err = p.RequestMove(context.Background(), nil, 1234)

		return err
	}, WithShell("sh"), WithStderr(func(string) {}))

	require.NoError(t, err)
	require.Equal(t, NewMove(7, 7), got.Move)
	require.Equal(t, []int{1234}, got.Extra)
}

// TestWithPlayer_StartFailure tests that a start failure is returned and wrapped.
func TestWithPlayer_StartFailure(t *testing.T) {
	called := false

	err := WithPlayer(context.Background(), filepath.Join(t.TempDir(), "missing"), Black,
		func(*ProcessPlayer) error {
			called = true

			return nil
		})

	require.Error(t, err)
	require.False(t, called)
	require.True(t, strings.HasPrefix(err.Error(), "failed to start player"))
}
