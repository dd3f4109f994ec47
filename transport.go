package procplayer

import "github.com/wagiedev/procplayer/internal/config"

// Transport defines the interface for talking to a player program.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods.
//
// The default implementation is ProcessTransport which spawns a subprocess.
// Custom transports can be injected via WithTransport.
type Transport = config.Transport
