package gles

import (
	"errors"

	"github.com/gogpu/microgles/glenum"
)

// ErrorKind is the GL ES 1.1 polled-error taxonomy (spec.md §7), re-exported
// so callers of this package never need to import glenum directly.
type ErrorKind = glenum.ErrorKind

const (
	NoError                                 = glenum.NoError
	InvalidEnum                             = glenum.InvalidEnum
	InvalidValue                            = glenum.InvalidValue
	InvalidOperation                        = glenum.InvalidOperation
	OutOfMemory                             = glenum.OutOfMemory
	StackOverflow                           = glenum.StackOverflow
	StackUnderflow                          = glenum.StackUnderflow
	FramebufferIncompleteAttachment         = glenum.FramebufferIncompleteAttachment
	FramebufferIncompleteDimensions         = glenum.FramebufferIncompleteDimensions
	FramebufferIncompleteMissingAttachment  = glenum.FramebufferIncompleteMissingAttachment
	FramebufferUnsupported                  = glenum.FramebufferUnsupported
)

// Init-time failures (spec.md §6: "logger/memory init failures surface as
// negative values"). NewContext returns these as ordinary Go errors rather
// than a sentinel status code.
var (
	// ErrInvalidDimensions is returned when width or height is <= 0.
	ErrInvalidDimensions = errors.New("gles: framebuffer width/height must be positive")
	// ErrInvalidThreadCount is returned when an explicit WithThreads value
	// is negative.
	ErrInvalidThreadCount = errors.New("gles: thread count must be >= 0")
	// ErrInvalidTileSize is returned when an explicit WithTileSize value
	// is <= 0.
	ErrInvalidTileSize = errors.New("gles: tile size must be positive")
)
