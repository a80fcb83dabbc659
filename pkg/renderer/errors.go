package renderer

import "errors"

var (
	// ErrInvalidConfig is returned for a RenderConfig that cannot be rendered
	ErrInvalidConfig = errors.New("renderer: invalid render config")

	// ErrCanceled is returned when the render context ends before every
	// tile was rendered; the partial framebuffer is still returned
	ErrCanceled = errors.New("renderer: render canceled")
)
