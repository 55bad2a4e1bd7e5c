package errors

import "fmt"

var (
	ErrValidation   = fmt.Errorf("validation failed")
	ErrConflict     = fmt.Errorf("already exists")
	ErrNotFound     = fmt.Errorf("not found")
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrWorkerPanic  = fmt.Errorf("worker panic")
)
