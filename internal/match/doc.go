// Package match plays games between two player programs.
//
// A game alternates turns starting with Black, forwarding the previous move
// and each side's remaining clock, and ends after two consecutive passes, on
// a time loss, or when a player fails. A tournament plays every opening
// twice with colours swapped, several games at a time.
package match
