package domain

import "errors"

// Only these abort an optimization request; every other failure degrades.
var (
	ErrStoreNotFound     = errors.New("store not found")
	ErrLayoutUnavailable = errors.New("layout unavailable")
	ErrInvalidRequest    = errors.New("invalid request")
)

var ErrResultNotFound = errors.New("optimization result not found")
