// Package procplayer connects a game tournament harness to a player program
// written in any language, exchanging moves over the program's standard
// input and output.
//
// The program is launched through a shell that first applies a memory cap,
// with its side ("Black" or "White") as its argument. It must print one line
// when its setup is complete. Each turn the adapter writes
//
//	<opp_x> <opp_y> <millisLeft>
//
// with "-1 -1" standing for "the opponent passed" or "this is the first
// move", and the program answers with "<x> <y>" or "-1 -1" to pass.
// Anything the program writes to stderr is forwarded line by line.
//
// # Harness Usage
//
// ProcessPlayer implements Player, the two-method contract a harness calls.
// Neither method returns an error: every failure is logged and the turn
// degrades to "no move", so a misbehaving program forfeits moves instead of
// crashing the tournament.
//
//	player := procplayer.NewProcessPlayer("./myplayer",
//	    procplayer.WithLogger(slog.Default()),
//	)
//	defer player.Close(context.Background())
//
//	player.Init(procplayer.Black)
//	move := player.DoMove(nil, 60000) // nil means pass
//
// # Explicit Errors
//
// Start and RequestMove are the error-returning forms of Init and DoMove,
// for callers that want to tell a pass from a crash:
//
//	if err := player.Start(ctx, procplayer.White); err != nil {
//	    return err
//	}
//	resp, err := player.RequestMove(ctx, procplayer.NewMove(3, 4), 5000)
//	if _, ok := errors.AsType[*procplayer.ProtocolError](err); ok {
//	    // the program printed something that is not a move
//	}
//
// Or use WithPlayer for automatic lifecycle management:
//
//	err := procplayer.WithPlayer(ctx, "./myplayer", procplayer.Black,
//	    func(p *procplayer.ProcessPlayer) error {
//	        resp, err := p.RequestMove(ctx, nil, 60000)
//	        // ...
//	        return err
//	    })
//
// # Memory Limits
//
// The default cap of 786432 KB is applied with "ulimit -m L; ulimit -v L". This is
// best-effort: Linux does not enforce the resident set limit at all, and the
// virtual limit only covers what the shell execs. WithMemoryWatchdog adds a
// sampling watchdog that kills the program when its resident memory exceeds
// the cap.
package procplayer
