package errors

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAlreadyExists  = errors.New("task already exists")
	ErrServiceUnavailable = errors.New("remote job service unavailable")
)
