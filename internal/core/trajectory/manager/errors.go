package manager

import "errors"

var (
	ErrSegmentNotFound  = errors.New("segment not found")
	ErrDuplicateSegment = errors.New("segment already on path")
	ErrNilTrajectory    = errors.New("nil trajectory")
)
