package trajectory

import "errors"

var (
	ErrUnknownKind = errors.New("unknown trajectory kind")
	ErrNonFinite   = errors.New("non-finite trajectory parameter")
)
