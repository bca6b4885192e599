package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrSchema     = errors.New("request does not match schema")
	ErrMissingID  = errors.New("missing id")
)
