package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("history index out of range")
	ErrEditDeclined = errors.New("schema edit declined")
	ErrUsage        = errors.New("invalid command arguments")
)
