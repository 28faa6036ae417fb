package index

import "errors"

var (
	// ErrArtifactCorrupt is returned when a persisted index fails consistency checks.
	ErrArtifactCorrupt = errors.New("index artifact corrupt")

	// ErrArtifactMismatch is returned when a persisted index was built with different settings.
	ErrArtifactMismatch = errors.New("index artifact built with different settings")
)
