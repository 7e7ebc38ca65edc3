package config

import "errors"

var (
	ErrInvalidTournament = errors.New("invalid tournament")
	ErrInvalidSettings   = errors.New("invalid settings")
)
