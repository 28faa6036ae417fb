package corpus

import "errors"

var (
	// ErrMalformed is returned when a corpus file cannot be decoded.
	ErrMalformed = errors.New("malformed corpus")

	// ErrEntryNotFound is returned when an entry id does not exist.
	ErrEntryNotFound = errors.New("corpus entry not found")
)
