package types

import "errors"

// Failure taxonomy surfaced by the orchestrator. Unreadable entries below
// the root are absorbed into the tree and never reach this level.
var (
	// ErrPathNotFound indicates the root path does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrNotADirectory indicates the root path exists but is not a directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrIO indicates an input/output failure while producing outputs or logs.
	ErrIO = errors.New("i/o failure")
)
