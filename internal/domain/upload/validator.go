package upload

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	megabyte = 1024 * 1024

	// DefaultMaxFileSize is the upload ceiling when none is configured.
	DefaultMaxFileSize = 5 * megabyte

	defaultExtension = ".jpg"
)

// imageSignatures lists the leading bytes accepted as image content:
// JPEG, PNG, GIF87a, GIF89a and WebP.
//
// The WebP entry only checks the RIFF container header, so any RIFF file
// (WAV, AVI) passes as well. Kept loose for compatibility with existing clients.
var imageSignatures = [][]byte{
	{0xFF, 0xD8, 0xFF},
	{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	[]byte("GIF87a"),
	[]byte("GIF89a"),
	[]byte("RIFF"),
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Validator decides whether an upload candidate is an acceptable image.
// It has no side effects and is safe for concurrent use.
type Validator struct {
	maxSize int64
}

// NewValidator returns a Validator with the given size ceiling in bytes.
// A non-positive maxSize falls back to DefaultMaxFileSize.
func NewValidator(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the configured ceiling in bytes.
func (v *Validator) MaxSize() int64 { return v.maxSize }

// Validate runs the declared-type, size and signature checks in that order
// and returns the file extension to store the image under.
func (v *Validator) Validate(c Candidate) (string, error) {
	if !strings.HasPrefix(c.ContentType, "image/") {
		return "", invalid(reasonNotImage)
	}
	if c.Size() > v.maxSize {
		return "", v.TooLarge()
	}
	if !hasImageSignature(c.Data) {
		return "", invalid(reasonInvalidFormat)
	}
	return DeriveExtension(c.Filename), nil
}

// TooLarge is the rejection for payloads over the ceiling. Callers that cut
// the body off before it reaches Validate report it the same way.
func (v *Validator) TooLarge() error {
	return invalid(fmt.Sprintf("file too large, maximum size is %dMB", v.maxSize/megabyte))
}

func hasImageSignature(data []byte) bool {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// DeriveExtension maps an original filename to one of the allowed image
// extensions. It never fails: anything unrecognised becomes ".jpg".
func DeriveExtension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return defaultExtension
	}
	ext := strings.ToLower(filename[i:])
	if !allowedExtensions[ext] {
		return defaultExtension
	}
	return ext
}
