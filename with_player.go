package procplayer

import (
	"context"
	"fmt"
)

// WithPlayer manages player lifecycle with automatic cleanup.
//
// This helper creates a player, starts it for side, executes the callback,
// and ensures the process is shut down via Close() when done.
//
// The callback receives a player that has completed its handshake.
// If the callback returns an error, it is returned to the caller.
// If Close() fails, a warning is logged but does not override the callback's error.
//
// Example usage:
//
//	err := procplayer.WithPlayer(ctx, "./myplayer", procplayer.Black,
//	    func(p *procplayer.ProcessPlayer) error {
//	        resp, err := p.RequestMove(ctx, nil, 60000)
//	        if err != nil {
//	            return err
//	        }
//	        fmt.Println(resp.Move)
//	        return nil
//	    },
//	    procplayer.WithLogger(log),
//	)
func WithPlayer(
	ctx context.Context,
	programPath string,
	side Side,
	fn func(*ProcessPlayer) error,
	opts ...Option,
) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	player := NewProcessPlayer(programPath, opts...)

	defer func() {
		if closeErr := player.Close(context.WithoutCancel(ctx)); closeErr != nil {
			player.log.Warn("failed to close player", "error", closeErr)
		}
	}()

	if err := player.Start(ctx, side); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}

	return fn(player)
}
