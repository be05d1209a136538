package memory

import "errors"

// ErrNotFound indicates no result is stored under the requested key.
var ErrNotFound = errors.New("spilled result not found")
