package taskstore

import "errors"

var (
	// ErrInvalidLocation is returned when a store location is not a URL with a scheme
	ErrInvalidLocation = errors.New("invalid task store location")

	// ErrUnsupportedScheme is returned when no backend handles the location scheme
	ErrUnsupportedScheme = errors.New("unsupported task store scheme")
)
