package renderer

import "errors"

var (
	ErrNoTracers     = errors.New("renderer: no tracers attached")
	ErrNoSamples     = errors.New("renderer: sample count must be positive")
	ErrInterrupted   = errors.New("renderer: interrupted while rendering")
	ErrRendererClose = errors.New("renderer: renderer is closed")
)
