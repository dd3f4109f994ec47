package subprocess

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/wagiedev/procplayer/internal/cli"
	"github.com/wagiedev/procplayer/internal/config"
	"github.com/wagiedev/procplayer/internal/errors"
)

// killWaitTimeout bounds the wait for the process to be reaped after SIGKILL.
const killWaitTimeout = time.Second

// ProcessTransport implements Transport by spawning the player program.
type ProcessTransport struct {
	log     *slog.Logger
	options *config.Options
	side    string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	stdoutLines chan string
	stderrLines chan string
	exited      chan struct{}
	done        chan struct{} // closed by Close to release reader goroutines
	exitErr     error

	mu          sync.Mutex // Protects stdin writes and lifecycle flags
	started     bool
	closing     bool
	stdinClosed bool
}

// Compile-time verification that ProcessTransport implements the Transport interface.
var _ config.Transport = (*ProcessTransport)(nil)

// NewProcessTransport creates a transport that will run the configured
// program with side as its first argument.
//
// Program discovery is deferred to Start(), which returns
// ProgramNotFoundError if the program cannot be located.
func NewProcessTransport(
	log *slog.Logger,
	side string,
	options *config.Options,
) *ProcessTransport {
	return &ProcessTransport{
		log:         log.With("component", "process_transport"),
		options:     options.WithDefaults(),
		side:        side,
		stdoutLines: make(chan string, stdoutBuffer),
		stderrLines: make(chan string, stderrBuffer),
		exited:      make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start spawns the player program.
//
// This method discovers the program, builds the shell command that applies
// the memory limit and launches it, and starts the goroutines that read its
// stdout and stderr and reap it on exit.
//
// Returns ProgramNotFoundError if the program cannot be located,
// or SpawnError if the process fails to start.
func (t *ProcessTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return errors.ErrAlreadyInitialized
	}

	if t.closing {
		return errors.ErrTerminated
	}

	t.log.Info("Starting player program", "program", t.options.ProgramPath, "side", t.side)

	programPath, err := cli.NewDiscoverer(&cli.Config{
		Program: t.options.ProgramPath,
		Cwd:     t.options.Cwd,
		Logger:  t.log,
	}).Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover program: %w", err)
	}

	command := cli.BuildCommand(programPath, t.side, t.options)
	t.log.Debug("Built launch command", "shell", command.Shell, "args", command.Args)

	// The process outlives ctx, so it is not bound to it.
	//nolint:gosec // G204: launching the configured player program is the point
	cmd := exec.Command(command.Shell, command.Args...)
	cmd.Dir = t.options.Cwd
	cmd.Env = command.Env
	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.log.Error("Failed to create stdin pipe", "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.log.Error("Failed to create stdout pipe", "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		t.log.Error("Failed to create stderr pipe", "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start player process", "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("start process: %w", err)}
	}

	t.cmd = cmd
	t.stdin = stdin
	t.stdout = stdout
	t.stderr = stderr
	t.started = true

	go readLines(t.log, stdout, t.stdoutLines, t.done)
	go readLines(t.log, stderr, t.stderrLines, t.done)
	go t.reap()

	t.log.Info("Player process started", "pid", cmd.Process.Pid)

	return nil
}

// reap waits for the process to exit and records how it exited.
//
// It uses os.Process.Wait rather than exec.Cmd.Wait: the latter closes the
// stdout pipe, which would race with the line reader and drop a reply the
// program wrote just before exiting.
func (t *ProcessTransport) reap() {
	defer close(t.exited)

	state, err := t.cmd.Process.Wait()
	if err != nil {
		t.exitErr = &errors.ProcessError{ExitCode: -1, Err: err}
		t.log.Error("Failed to wait for player process", "error", err)

		return
	}

	if !state.Success() {
		t.exitErr = &errors.ProcessError{
			ExitCode: state.ExitCode(),
			Err:      &exec.ExitError{ProcessState: state},
		}
		t.log.Info("Player process exited with error", "exit_code", state.ExitCode(), "state", state.String())

		return
	}

	t.log.Info("Player process exited", "pid", state.Pid())
}

// SendLine writes one line to the program's stdin.
//
// The line is written with a single Write on an unbuffered pipe, so it is
// visible to the program as soon as SendLine returns. If the context is
// cancelled during a blocked write, stdin is closed to unblock it and
// subsequent calls return ErrStdinClosed.
func (t *ProcessTransport) SendLine(ctx context.Context, line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin == nil {
		return errors.ErrTransportNotStarted
	}

	if t.stdinClosed {
		return errors.ErrStdinClosed
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if len(line) == 0 || line[len(line)-1] != '\n' {
		line += "\n"
	}

	t.log.Debug("Sending line to player", "line", line[:len(line)-1])

	done := make(chan error, 1)

	go func() {
		_, err := io.WriteString(t.stdin, line)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.log.Error("Failed to write to player stdin", "error", err)

			return fmt.Errorf("write to stdin: %w", err)
		}

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")

		_ = t.stdin.Close()
		t.stdinClosed = true

		select {
		case <-done:
		case <-time.After(time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// Stdout yields stdout lines; the channel is closed at end-of-stream.
func (t *ProcessTransport) Stdout() <-chan string { return t.stdoutLines }

// Stderr yields stderr lines; the channel is closed at end-of-stream.
func (t *ProcessTransport) Stderr() <-chan string { return t.stderrLines }

// Exited is closed once the process has been reaped.
func (t *ProcessTransport) Exited() <-chan struct{} { return t.exited }

// ExitErr describes how the process exited. It is only meaningful after
// Exited is closed.
func (t *ProcessTransport) ExitErr() error {
	select {
	case <-t.exited:
		return t.exitErr
	default:
		return nil
	}
}

// PID returns the process ID of the shell running the program.
func (t *ProcessTransport) PID() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cmd == nil || t.cmd.Process == nil {
		return 0
	}

	return t.cmd.Process.Pid
}

// Kill sends SIGKILL to the program's process group.
func (t *ProcessTransport) Kill() error {
	t.mu.Lock()
	cmd := t.cmd
	t.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}

	if t.hasExited() {
		return nil
	}

	t.log.Debug("Killing player process", "pid", cmd.Process.Pid)

	if err := killGroup(cmd.Process); err != nil {
		return fmt.Errorf("kill player process (pid %d): %w", cmd.Process.Pid, err)
	}

	return nil
}

// EndInput closes stdin to signal end of input. A well-behaved program
// exits when its input ends.
func (t *ProcessTransport) EndInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.closeStdinLocked()
}

func (t *ProcessTransport) closeStdinLocked() error {
	if t.stdin == nil || t.stdinClosed {
		return nil
	}

	t.log.Debug("Closing stdin pipe")

	t.stdinClosed = true

	return t.stdin.Close()
}

// Close shuts the program down.
//
// Stdin is closed first and the program is given the configured grace
// period to exit on its own. If it is still running it receives SIGTERM,
// then SIGKILL after another grace period. It's safe to call Close multiple
// times or on a transport that never started.
func (t *ProcessTransport) Close(ctx context.Context) error {
	t.mu.Lock()

	if t.closing {
		t.mu.Unlock()

		return nil
	}

	t.closing = true
	_ = t.closeStdinLocked()
	cmd := t.cmd
	started := t.started

	t.mu.Unlock()

	defer close(t.done)

	if !started {
		return nil
	}

	var errs []error

	if !t.waitExit(ctx, t.options.CloseGracePeriod) {
		t.log.Debug("Player did not exit after stdin closed, sending SIGTERM", "pid", cmd.Process.Pid)

		if err := terminateGroup(cmd.Process); err != nil && !t.hasExited() {
			errs = append(errs, fmt.Errorf("terminate player process: %w", err))
		}

		if !t.waitExit(ctx, t.options.CloseGracePeriod) {
			if err := t.Kill(); err != nil {
				errs = append(errs, err)
			}

			if !t.waitExit(context.Background(), killWaitTimeout) {
				t.log.Warn("Player process was not reaped after SIGKILL", "pid", cmd.Process.Pid)
			}
		}
	}

	// The shell may have exited while the program it launched lives on.
	_ = killGroup(cmd.Process)

	// The read ends are ours to close: reap() deliberately avoids exec.Cmd.Wait.
	_ = t.stdout.Close()
	_ = t.stderr.Close()

	return stderrors.Join(errs...)
}

// waitExit waits up to timeout for the process to exit.
func (t *ProcessTransport) waitExit(ctx context.Context, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-t.exited:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return t.hasExited()
	}
}

func (t *ProcessTransport) hasExited() bool {
	select {
	case <-t.exited:
		return true
	default:
		return false
	}
}
