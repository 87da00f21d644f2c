package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidItemSize is returned when an item is larger than the canvas on either axis.
	ErrInvalidItemSize = errors.New("item does not fit on canvas")
	// ErrPlacementExhausted is returned when no free position was found within the attempt budget.
	ErrPlacementExhausted = errors.New("placement attempts exhausted")
)

// PlacementError identifies the item that could not be placed.
type PlacementError struct {
	Index    int
	Width    float64
	Height   float64
	Attempts int
	Err      error
}

func (e *PlacementError) Error() string {
	if errors.Is(e.Err, ErrPlacementExhausted) {
		return fmt.Sprintf("item %d (%.0fx%.0f): %v after %d attempts", e.Index, e.Width, e.Height, e.Err, e.Attempts)
	}
	return fmt.Sprintf("item %d (%.0fx%.0f): %v", e.Index, e.Width, e.Height, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}
