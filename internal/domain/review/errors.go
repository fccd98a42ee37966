package review

import "errors"

var (
	ErrNotFound = errors.New("review not found")
	ErrNoFile   = errors.New("no file provided")
)
