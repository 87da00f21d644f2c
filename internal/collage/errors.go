package collage

import (
	"errors"
	"fmt"

	"github.com/kyiku/hackz-collage-back/internal/codec"
	"github.com/kyiku/hackz-collage-back/internal/layout"
)

// Kind classifies a build failure.
type Kind string

const (
	KindInvalidRequest     Kind = "invalid_request"
	KindInvalidItemSize    Kind = "invalid_item_size"
	KindPlacementExhausted Kind = "placement_exhausted"
	KindDecodeFailure      Kind = "decode_failure"
	KindEncodeFailure      Kind = "encode_failure"
)

// ErrNoImages is returned when a request carries no images.
var ErrNoImages = errors.New("no images provided")

// BuildError is the single failure a build reports. Index is the offending
// image, or -1 when the failure is not tied to one image (background, encode).
type BuildError struct {
	Kind  Kind
	Index int
	Err   error
}

func (e *BuildError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("collage %s (image %d): %v", e.Kind, e.Index, e.Err)
	}
	return fmt.Sprintf("collage %s: %v", e.Kind, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a build error, or "" if err is not one.
func KindOf(err error) Kind {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

func layoutError(err error) *BuildError {
	index := -1
	var perr *layout.PlacementError
	if errors.As(err, &perr) {
		index = perr.Index
	}

	kind := KindPlacementExhausted
	if errors.Is(err, layout.ErrInvalidItemSize) {
		kind = KindInvalidItemSize
	}
	return &BuildError{Kind: kind, Index: index, Err: err}
}

func decodeError(index int, err error) *BuildError {
	return &BuildError{Kind: KindDecodeFailure, Index: index, Err: err}
}

func encodeError(err error) *BuildError {
	if !errors.Is(err, codec.ErrEncode) {
		err = fmt.Errorf("%w: %v", codec.ErrEncode, err)
	}
	return &BuildError{Kind: KindEncodeFailure, Index: -1, Err: err}
}
