package procplayer

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/wagiedev/procplayer/internal/cli"
	"github.com/wagiedev/procplayer/internal/config"
	"github.com/wagiedev/procplayer/internal/errors"
	"github.com/wagiedev/procplayer/internal/procstat"
	"github.com/wagiedev/procplayer/internal/protocol"
	"github.com/wagiedev/procplayer/internal/subprocess"
)

// ProcessPlayer is a Player backed by an external program.
//
// A ProcessPlayer owns exactly one child process, spawned by Init or Start
// and never recreated. Turns are serialized; the player is meant to be
// driven by a single goroutine, but Close and the accessors may be called
// from any goroutine.
type ProcessPlayer struct {
	log     *slog.Logger
	options *config.Options
	sink    func(string)

	turnMu sync.Mutex // serializes Start and RequestMove

	mu        sync.Mutex // protects the fields below
	state     State
	side      Side
	transport config.Transport
	sampler   *procstat.Sampler
	moves     int

	// Owned by the goroutine holding turnMu.
	stderrClosed   bool
	memoryExceeded bool
}

// Compile-time verification that ProcessPlayer implements Player.
var _ Player = (*ProcessPlayer)(nil)

// NewProcessPlayer creates a player for the program at programPath.
// Nothing is spawned until Init or Start.
func NewProcessPlayer(programPath string, opts ...Option) *ProcessPlayer {
	options := applyPlayerOptions(programPath, opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	sink := options.Stderr
	if sink == nil {
		sink = WriterSink(os.Stderr)
	}

	return &ProcessPlayer{
		log:     log.With("component", "process_player", "program", programPath),
		options: options,
		sink:    sink,
	}
}

// Init spawns the program for side and waits for its ready line.
// Failures are logged and leave the player terminated; later DoMove calls
// return nil.
func (p *ProcessPlayer) Init(side Side) {
	if err := p.Start(context.Background(), side); err != nil {
		p.log.Error("Failed to initialize player", "side", side.String(), "error", err)
	}
}

// DoMove sends the opponent's move and the remaining clock, and returns the
// program's move. It returns nil if the program passed, its output ended,
// it exited, or it printed something that is not a move.
func (p *ProcessPlayer) DoMove(opponentsMove *Move, millisLeft int64) *Move {
	resp, err := p.RequestMove(context.Background(), opponentsMove, millisLeft)
	if err != nil {
		if stderrors.Is(err, errors.ErrStreamClosed) {
			p.log.Info("Player output ended, treating as pass")
		} else {
			p.log.Error("Move request failed, treating as no move", "error", err)
		}

		return nil
	}

	return resp.Move
}

// Start spawns the program for side and waits for its ready line.
//
// Returns ErrAlreadyInitialized if the player was started before,
// ProgramNotFoundError or SpawnError if the process cannot be started, and
// HandshakeError if the program exits or its output ends before the ready
// line. A failed Start shuts the process down and leaves the player
// terminated.
func (p *ProcessPlayer) Start(ctx context.Context, side Side) error {
	p.turnMu.Lock()
	defer p.turnMu.Unlock()

	p.mu.Lock()

	switch p.state {
	case StateReady:
		p.mu.Unlock()

		return errors.ErrAlreadyInitialized
	case StateTerminated:
		p.mu.Unlock()

		return errors.ErrTerminated
	}

	transport := p.options.Transport
	if transport == nil {
		transport = subprocess.NewProcessTransport(p.log, side.String(), p.options)
	}

	p.side = side
	p.transport = transport

	p.mu.Unlock()

	if err := transport.Start(ctx); err != nil {
		p.fail(ctx)

		return err
	}

	if p.options.MemoryWatchdog && p.options.MemoryLimitEnabled() {
		p.mu.Lock()
		p.sampler = procstat.NewSampler(transport.PID())
		p.mu.Unlock()
	}

	handshakeCtx := ctx

	if p.options.HandshakeTimeout > 0 {
		var cancel context.CancelFunc

		handshakeCtx, cancel = context.WithTimeout(ctx, p.options.HandshakeTimeout)
		defer cancel()
	}

	line, err := p.nextLine(handshakeCtx)
	if err != nil {
		p.fail(ctx)

		return &errors.HandshakeError{Err: err}
	}

	p.log.Debug("Handshake complete", "line", line)

	p.mu.Lock()
	p.state = StateReady
	p.mu.Unlock()

	p.log.Info("Player ready", "side", side.String(), "pid", transport.PID())

	return nil
}

// fail marks the player terminated and shuts the transport down.
func (p *ProcessPlayer) fail(ctx context.Context) {
	p.mu.Lock()
	p.state = StateTerminated
	transport := p.transport
	p.mu.Unlock()

	if err := transport.Close(context.WithoutCancel(ctx)); err != nil {
		p.log.Warn("Failed to close transport after failed start", "error", err)
	}
}

// RequestMove sends one move request and waits for the reply.
//
// The wait ends when a line arrives, when the program exits, or when ctx is
// done. A pass is a Response with a nil Move and a nil error. Returns
// ErrStreamClosed if the program's output ended, ProcessError if it exited
// without replying, and ProtocolError for a malformed reply.
func (p *ProcessPlayer) RequestMove(ctx context.Context, opponentsMove *Move, millisLeft int64) (Response, error) {
	p.turnMu.Lock()
	defer p.turnMu.Unlock()

	switch p.State() {
	case StateUninitialized:
		return Response{}, errors.ErrNotInitialized
	case StateTerminated:
		return Response{}, errors.ErrTerminated
	}

	p.drainStderr()

	request := protocol.FormatRequest(opponentsMove, millisLeft)
	if err := p.transport.SendLine(ctx, request); err != nil {
		return Response{}, fmt.Errorf("send move request: %w", err)
	}

	line, err := p.nextLine(ctx)
	if err != nil {
		if stderrors.Is(err, errors.ErrStreamClosed) {
			return Response{}, err
		}

		return Response{}, fmt.Errorf("await move: %w", err)
	}

	resp, err := protocol.ParseResponse(line)
	if err != nil {
		return Response{}, err
	}

	p.mu.Lock()
	p.moves++
	p.mu.Unlock()

	p.log.Debug("Received move", "request", request, "response", line)

	return resp, nil
}

// nextLine waits for the next stdout line.
//
// While waiting it forwards stderr lines, and once per poll interval checks
// whether the process has exited and, with the watchdog enabled, samples
// its memory. After an exit it waits at most one more poll interval for a
// line the program wrote just before exiting.
func (p *ProcessPlayer) nextLine(ctx context.Context) (string, error) {
	stdout := p.transport.Stdout()
	exited := p.transport.Exited()

	ticker := time.NewTicker(p.options.PollInterval)
	defer ticker.Stop()

	for {
		p.drainStderr()

		select {
		case line, ok := <-stdout:
			return p.lineOrClosed(line, ok)
		default:
		}

		select {
		case <-exited:
			return p.lineAfterExit(stdout)
		default:
		}

		select {
		case line, ok := <-stdout:
			return p.lineOrClosed(line, ok)
		case line, ok := <-p.stderr():
			if !ok {
				p.stderrClosed = true
			} else {
				p.forwardStderr(line)
			}
		case <-exited:
			return p.lineAfterExit(stdout)
		case <-ticker.C:
			p.checkMemory(ctx)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// lineOrClosed maps a stdout receive to a line or an error. Output usually
// ends before the exit is reaped, so end of output waits up to one poll
// interval for the exit: a failed exit is reported as such, and only a clean
// exit or a still-running program reads as a pass.
func (p *ProcessPlayer) lineOrClosed(line string, ok bool) (string, error) {
	if ok {
		return line, nil
	}

	timer := time.NewTimer(p.options.PollInterval)
	defer timer.Stop()

	select {
	case <-p.transport.Exited():
	case <-timer.C:
	}

	p.drainStderr()

	if p.memoryExceeded {
		return "", p.memoryErr()
	}

	if err := p.transport.ExitErr(); err != nil {
		return "", err
	}

	return "", errors.ErrStreamClosed
}

// memoryErr wraps the exit status of a process killed by the watchdog.
func (p *ProcessPlayer) memoryErr() error {
	if err := p.transport.ExitErr(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrMemoryLimitExceeded, err)
	}

	return errors.ErrMemoryLimitExceeded
}

// lineAfterExit picks up a line still in flight when the process exited.
func (p *ProcessPlayer) lineAfterExit(stdout <-chan string) (string, error) {
	timer := time.NewTimer(p.options.PollInterval)
	defer timer.Stop()

	select {
	case line, ok := <-stdout:
		if ok {
			return line, nil
		}
	case <-timer.C:
	}

	p.drainStderr()

	if p.memoryExceeded {
		return "", p.memoryErr()
	}

	if err := p.transport.ExitErr(); err != nil {
		return "", err
	}

	return "", errors.ErrStreamClosed
}

// stderr returns the stderr channel, or nil once it is closed so that a
// select never spins on it.
func (p *ProcessPlayer) stderr() <-chan string {
	if p.stderrClosed {
		return nil
	}

	return p.transport.Stderr()
}

// forwardStderr passes a program stderr line to the sink. The launch
// script's limit failure marker is logged instead.
func (p *ProcessPlayer) forwardStderr(line string) {
	if line == cli.LimitFailedMarker {
		p.log.Warn("Memory limit directive failed, program runs without it",
			"limit_kb", p.options.MemoryLimitKB,
			"shell", p.options.Shell,
		)

		return
	}

	p.sink(line)
}

// drainStderr forwards the stderr lines that are already buffered without
// waiting for more.
func (p *ProcessPlayer) drainStderr() {
	ch := p.stderr()
	if ch == nil {
		return
	}

	for {
		select {
		case line, ok := <-ch:
			if !ok {
				p.stderrClosed = true

				return
			}

			p.forwardStderr(line)
		default:
			return
		}
	}
}

// checkMemory samples the process tree and kills it if it exceeds the cap.
func (p *ProcessPlayer) checkMemory(ctx context.Context) {
	p.mu.Lock()
	sampler := p.sampler
	p.mu.Unlock()

	if sampler == nil || p.memoryExceeded {
		return
	}

	usage, err := sampler.Sample(ctx)
	if err != nil {
		p.log.Debug("Memory sample failed", "error", err)

		return
	}

	if usage.RSSKB <= int64(p.options.MemoryLimitKB) {
		return
	}

	p.memoryExceeded = true
	p.log.Warn("Player exceeded memory limit, killing it",
		"rss_kb", usage.RSSKB,
		"limit_kb", p.options.MemoryLimitKB,
	)

	if err := p.transport.Kill(); err != nil {
		p.log.Error("Failed to kill player over memory limit", "error", err)
	}
}

// Close shuts the program down: stdin is closed, then the process is
// signalled if it does not exit within the grace period. Close may be
// called from another goroutine to abandon a pending move. It is safe to
// call Close multiple times.
func (p *ProcessPlayer) Close(ctx context.Context) error {
	p.mu.Lock()
	p.state = StateTerminated
	transport := p.transport
	p.mu.Unlock()

	if transport == nil {
		return nil
	}

	if err := transport.Close(ctx); err != nil {
		return fmt.Errorf("close player: %w", err)
	}

	return nil
}

// State returns the lifecycle state. A ready player whose process has
// exited reports StateTerminated.
func (p *ProcessPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateReady {
		select {
		case <-p.transport.Exited():
			return StateTerminated
		default:
		}
	}

	return p.state
}

// Side returns the side passed to Init or Start.
func (p *ProcessPlayer) Side() Side {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.side
}

// PID returns the process ID of the shell running the program, or 0.
func (p *ProcessPlayer) PID() int {
	p.mu.Lock()
	transport := p.transport
	p.mu.Unlock()

	if transport == nil {
		return 0
	}

	return transport.PID()
}

// Moves returns the number of replies successfully parsed so far.
func (p *ProcessPlayer) Moves() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.moves
}

// Usage returns the peak memory sampled by the watchdog. It is zero when
// the watchdog is disabled.
func (p *ProcessPlayer) Usage() MemoryUsage {
	p.mu.Lock()
	sampler := p.sampler
	p.mu.Unlock()

	if sampler == nil {
		return MemoryUsage{}
	}

	return sampler.Peak()
}
