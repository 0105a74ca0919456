package service

import "errors"

// ErrInvalidInput wraps every request validation failure; the message after the
// colon is safe to show to the caller.
var ErrInvalidInput = errors.New("invalid input")
