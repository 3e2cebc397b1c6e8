package audit

import "errors"

// ErrInvalidInput indicates invalid audit input.
var ErrInvalidInput = errors.New("invalid audit input")
