package outline

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when the color target cannot be used as a
	// blended render attachment. The pipeline refuses to run.
	ErrUnsupportedFormat = errors.New("outline: unsupported color target format")

	// ErrInvalidConfig reports an unusable Config, Style or Dimensions value.
	ErrInvalidConfig = errors.New("outline: invalid configuration")

	// ErrNotReady marks a pass whose program is still being compiled. The
	// frame is skipped and retried on the next one.
	ErrNotReady = errors.New("outline: program not ready")

	// ErrResourceMismatch means buffers and the Dimensions uniform disagree.
	// It always indicates a bug in the caller or the pipeline.
	ErrResourceMismatch = errors.New("outline: resource mismatch")

	// ErrStaleBinding is a resource mismatch where binding state still refers
	// to textures that have been replaced.
	ErrStaleBinding = fmt.Errorf("%w: stale binding", ErrResourceMismatch)
)
