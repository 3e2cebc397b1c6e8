package report

import "errors"

// ErrInvalidInput indicates invalid report query input.
var ErrInvalidInput = errors.New("invalid report input")
