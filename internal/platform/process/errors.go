package process

import "errors"

var (
	// ErrEmptyCommand is returned when the dispatch command has no program.
	ErrEmptyCommand = errors.New("dispatch command is empty")

	// ErrUnparsableDescriptor indicates a descriptor that cannot be split into
	// arguments, such as one with an unterminated quote.
	ErrUnparsableDescriptor = errors.New("descriptor cannot be split into arguments")
)
