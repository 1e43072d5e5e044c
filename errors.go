package spots

import "errors"

var (
	// ErrIndexOutOfRange is returned by mutations addressing a missing item.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNoComponent is returned when a component index does not exist.
	ErrNoComponent = errors.New("no such component")
	// ErrUnknownFormat is returned for unsupported declarative formats.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrRequestDone is returned when completing an edge request that was
	// already completed or cancelled.
	ErrRequestDone = errors.New("edge request already done")
)
