package match

import (
	"context"
	"sync"
	"time"

	"github.com/wagiedev/procplayer/internal/protocol"
)

type reply struct {
	resp  protocol.Response
	err   error
	delay time.Duration
}

type request struct {
	opp        *protocol.Move
	millisLeft int64
}

// fakePlayer answers from a fixed script and records what it was asked.
// After the script runs out it passes.
type fakePlayer struct {
	mu       sync.Mutex
	side     protocol.Side
	script   []reply
	startErr error
	started  bool
	closed   bool
	requests []request
	onStart  func()
	onClose  func()
}

func (f *fakePlayer) Start(_ context.Context, side protocol.Side) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.side = side
	if f.startErr != nil {
		return f.startErr
	}

	f.started = true
	if f.onStart != nil {
		f.onStart()
	}

	return nil
}

func (f *fakePlayer) RequestMove(ctx context.Context, opp *protocol.Move, millisLeft int64) (protocol.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, request{opp: opp, millisLeft: millisLeft})

	var r reply
	if len(f.script) > 0 {
		r, f.script = f.script[0], f.script[1:]
	}
	f.mu.Unlock()

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return protocol.Response{}, ctx.Err()
		}
	}

	return r.resp, r.err
}

func (f *fakePlayer) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed && f.started && f.onClose != nil {
		f.onClose()
	}

	f.closed = true

	return nil
}

func (f *fakePlayer) recorded() []request {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]request(nil), f.requests...)
}

func (f *fakePlayer) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

// engine wraps a single fake player as an Engine.
func engine(name string, p *fakePlayer) Engine {
	return Engine{
		Name: name,
		Factory: func(protocol.Side, string) Player {
			return p
		},
	}
}

func move(x, y int, extra ...int) reply {
	return reply{resp: protocol.Response{Move: protocol.NewMove(x, y), Extra: extra}}
}

func pass(extra ...int) reply {
	return reply{resp: protocol.Response{Extra: extra}}
}
