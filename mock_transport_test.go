package procplayer

import (
	"context"
	"strings"
	"sync"

	"github.com/wagiedev/procplayer/internal/errors"
)

// mockTransport implements config.Transport for testing.
// Replies are produced by onSend, which runs for every line the player sends.
type mockTransport struct {
	mu       sync.Mutex
	started  bool
	closed   bool
	startErr error
	sendErr  error
	sent     []string
	events   []string

	stdout  chan string
	stderr  chan string
	exited  chan struct{}
	exitErr error

	exitOnce   sync.Once
	stdoutOnce sync.Once

	onSend func(m *mockTransport, line string)
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		stdout: make(chan string, 16),
		stderr: make(chan string, 16),
		exited: make(chan struct{}),
	}
}

// newReadyTransport returns a transport that completes the handshake and
// answers each request with the next reply.
func newReadyTransport(replies ...string) *mockTransport {
	m := newMockTransport()
	m.stdout <- "ready"

	m.onSend = func(m *mockTransport, _ string) {
		if len(replies) == 0 {
			return
		}

		m.stdout <- replies[0]
		replies = replies[1:]
	}

	return m
}

func (m *mockTransport) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return m.startErr
	}

	m.started = true

	return nil
}

func (m *mockTransport) SendLine(_ context.Context, line string) error {
	m.mu.Lock()

	if m.sendErr != nil {
		m.mu.Unlock()

		return m.sendErr
	}

	line = strings.TrimSuffix(line, "\n")
	m.sent = append(m.sent, line)
	m.events = append(m.events, "send:"+line)
	onSend := m.onSend

	m.mu.Unlock()

	if onSend != nil {
		onSend(m, line)
	}

	return nil
}

func (m *mockTransport) Stdout() <-chan string  { return m.stdout }
func (m *mockTransport) Stderr() <-chan string  { return m.stderr }
func (m *mockTransport) Exited() <-chan struct{} { return m.exited }

func (m *mockTransport) ExitErr() error {
	select {
	case <-m.exited:
		return m.exitErr
	default:
		return nil
	}
}

func (m *mockTransport) PID() int { return 4242 }

func (m *mockTransport) Kill() error {
	m.exit(&errors.ProcessError{ExitCode: -1})

	return nil
}

func (m *mockTransport) EndInput() error { return nil }

func (m *mockTransport) Close(_ context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.exit(nil)
	m.closeStdout()

	return nil
}

// exit simulates the process exiting with err.
func (m *mockTransport) exit(err error) {
	m.exitOnce.Do(func() {
		m.exitErr = err
		close(m.exited)
	})
}

// closeStdout simulates end-of-stream on stdout.
func (m *mockTransport) closeStdout() {
	m.stdoutOnce.Do(func() {
		close(m.stdout)
	})
}

func (m *mockTransport) record(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
}

func (m *mockTransport) sentLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.sent...)
}

func (m *mockTransport) eventLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.events...)
}

func (m *mockTransport) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}
