package service

import "errors"

// ErrCorpusUnavailable is returned when the corpus source cannot be read.
var ErrCorpusUnavailable = errors.New("corpus unavailable")
