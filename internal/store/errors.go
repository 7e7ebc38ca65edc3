package store

import "errors"

var (
	ErrLoadFailure     = errors.New("loading baseline schedules failed")
	ErrNotInitialized  = errors.New("no schedules loaded")
	ErrUnknownMode     = errors.New("unknown mode")
	ErrModeUnavailable = errors.New("mode has no data")
	ErrUnknownVenue    = errors.New("unknown venue")
	ErrUnknownDate     = errors.New("date outside the tournament")
	ErrMatchNotFound   = errors.New("match not found")
)
