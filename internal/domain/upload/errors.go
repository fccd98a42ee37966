package upload

import "errors"

// ErrInvalidUpload matches every validation rejection via errors.Is.
var ErrInvalidUpload = errors.New("invalid upload")

const (
	reasonNotImage      = "file must be an image"
	reasonInvalidFormat = "invalid image file format"
)

// InvalidUploadError carries the user-facing reason an upload was rejected.
type InvalidUploadError struct {
	Reason string
}

func (e *InvalidUploadError) Error() string { return e.Reason }

func (e *InvalidUploadError) Is(target error) bool { return target == ErrInvalidUpload }

func invalid(reason string) error {
	return &InvalidUploadError{Reason: reason}
}
