// Package cli provides player program discovery and launch command building.
//
// # Program Discovery
//
// The Discoverer interface locates the player program:
//
//	discoverer := cli.NewDiscoverer(&cli.Config{
//	    Program: "myplayer",
//	    Logger:  slog.Default(),
//	})
//	path, err := discoverer.Discover(ctx)
//
// A program named with a path separator is used as given (relative to
// Config.Cwd when not absolute). A bare name is searched in this order:
//  1. The working directory ("./myplayer")
//  2. The system PATH
//
// # Command Building
//
// The program is always launched through a shell so that the memory limit
// directive applies before the program starts:
//
//	script := cli.BuildShellCommand(path, "Black", nil, 786432)
//	// { ulimit -m 786432; ulimit -v 786432; } 2>/dev/null || echo '...' >&2; '/abs/myplayer' Black
//
// The limit is best-effort. On Linux the kernel ignores RLIMIT_RSS, so
// "ulimit -m" has no effect; "ulimit -v" caps the address space of the shell
// and everything it execs. Neither is a sandbox.
package cli
