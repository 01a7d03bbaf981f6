package bvh

import "errors"

var (
	ErrEmptyScene     = errors.New("bvh: no primitives to partition")
	ErrInvalidBounds  = errors.New("bvh: invalid primitive bounds")
	ErrInvalidOptions = errors.New("bvh: invalid build options")
	ErrRootNotZero    = errors.New("bvh: tree root was not allocated at index 0")
	ErrInvariant      = errors.New("bvh: tree invariant violated")
)
