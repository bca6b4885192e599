package service

import "errors"

var (
	// ErrNotStarted is returned when the service is used before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrBackpressure is returned when the recompute queue is full.
	ErrBackpressure = errors.New("recompute queue is full")

	// ErrSelfConnection is returned when a profile asks to connect to itself.
	ErrSelfConnection = errors.New("cannot connect a profile to itself")
)
