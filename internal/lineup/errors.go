package lineup

import "errors"

var (
	// ErrNoProgram is returned when no program can be determined for a
	// channel at all. This signals a corrupted channel configuration and is
	// fatal for the request; it must never silently produce an undefined
	// lineup item.
	ErrNoProgram = errors.New("no program resolvable for channel, channel configuration is corrupted")
)
