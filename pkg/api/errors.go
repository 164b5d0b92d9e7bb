package api

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHost is returned when a nil or non-comparable host is attached.
	ErrInvalidHost = errors.New("host must be a non-nil, comparable value")

	// ErrIncorrectFormat is returned for qualified actions that are not of
	// the form projection.action.
	ErrIncorrectFormat = errors.New("incorrect format, needs an object format (projection.action)")

	// ErrPayloadType is matched by PayloadTypeError.
	ErrPayloadType = errors.New("unexpected payload type")

	// ErrNoPrecedingSlot is the panic value when a reducer or workflow slot is
	// allocated before any state slot in the current render.
	ErrNoPrecedingSlot = errors.New("companion slot allocated without a preceding state slot")
)

// SlotTypeError is the panic value raised when the cell found at a slot
// position does not have the type the caller asked for. It almost always
// means the render path allocated slots in a different order than in the
// previous render.
type SlotTypeError struct {
	Index int
	Want  string
	Got   string
}

func (e *SlotTypeError) Error() string {
	return fmt.Sprintf("slot %d holds %s, requested %s (allocation order changed between renders?)", e.Index, e.Got, e.Want)
}

// PayloadTypeError is returned by typed action handlers when the payload
// passed to Dispatch does not have the expected type.
type PayloadTypeError struct {
	Action string
	Want   string
	Got    string
}

func (e *PayloadTypeError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("expected payload of type %s, got %s", e.Want, e.Got)
	}
	return fmt.Sprintf("action %s: expected payload of type %s, got %s", e.Action, e.Want, e.Got)
}

func (e *PayloadTypeError) Is(target error) bool {
	return target == ErrPayloadType
}

// IsPayloadTypeError reports whether err wraps a PayloadTypeError and
// returns it.
func IsPayloadTypeError(err error) (*PayloadTypeError, bool) {
	var p *PayloadTypeError
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}
