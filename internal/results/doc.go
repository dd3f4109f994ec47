// Package results persists finished games as JSON lines.
//
// Each write holds an exclusive lock on a sibling "<path>.lock" file so that
// several tournament processes can append to the same file. The lock file is
// left on disk.
package results
