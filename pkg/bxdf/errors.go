package bxdf

import "errors"

var (
	ErrTooManyLobes = errors.New("bxdf: bsdf lobe capacity exceeded")
)
