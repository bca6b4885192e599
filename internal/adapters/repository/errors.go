package repository

import "errors"

// Sentinel kinds for directory errors.
var (
	ErrNotFound = errors.New("profile not found")
	ErrCorrupt  = errors.New("stored profile is unreadable")
)
