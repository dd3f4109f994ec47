// Package protocol implements the line-oriented move protocol spoken with an
// external player program.
//
// The protocol has three kinds of lines, all terminated by a newline:
//
//   - Handshake (child to adapter): one line of arbitrary content written
//     once the program has finished its own setup.
//   - Move request (adapter to child): "<opp_x> <opp_y> <millisLeft>", where
//     the opponent's move is "-1 -1" if the opponent passed or this is the
//     first move of the game.
//   - Move response (child to adapter): "<x> <y>" for a move or "-1 -1" for
//     a pass. Engines may append further integers (for example the black
//     and white disc counts); these are kept in Response.Extra.
//
// Example usage:
//
//	line := protocol.FormatRequest(nil, 60000) // "-1 -1 60000"
//
//	resp, err := protocol.ParseResponse("2 3")
//	if err != nil {
//	    // malformed reply, treat as no move
//	}
package protocol
