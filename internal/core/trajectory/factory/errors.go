package factory

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrMissingSpeed   = errors.New("speed profile has no parameters")
	ErrFactoryExists  = errors.New("factory already registered")
	ErrUnknownFactory = errors.New("unknown factory")
)
