package service

import "errors"

var (
	// ErrFutureTimestamp rejects events stamped after the current time plus skew
	ErrFutureTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidRequest marks request values the handler should report as 400
	ErrInvalidRequest = errors.New("invalid request")
)
