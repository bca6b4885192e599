package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrStopped   = errors.New("worker stopped")
	ErrCancelled = errors.New("job cancelled")
)
