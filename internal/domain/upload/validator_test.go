package upload

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegPayload(n int) []byte {
	data := make([]byte, n)
	copy(data, []byte{0xFF, 0xD8, 0xFF})
	return data
}

func TestValidate_RejectsNonImageContentType(t *testing.T) {
	v := NewValidator(DefaultMaxFileSize)

	for _, ct := range []string{"", "text/plain", "application/octet-stream", "IMAGE/jpeg", "video/mp4"} {
		_, err := v.Validate(Candidate{Data: jpegPayload(10), ContentType: ct, Filename: "photo.jpg"})
		require.Error(t, err, "content type %q", ct)
		assert.True(t, errors.Is(err, ErrInvalidUpload))
		assert.Equal(t, "file must be an image", err.Error())
	}
}

func TestValidate_RejectsOversizedPayload(t *testing.T) {
	v := NewValidator(DefaultMaxFileSize)

	_, err := v.Validate(Candidate{Data: jpegPayload(6 * 1024 * 1024), ContentType: "image/jpeg", Filename: "big.jpg"})
	require.ErrorIs(t, err, ErrInvalidUpload)
	assert.Contains(t, err.Error(), "5MB")
}

func TestValidate_SizeMessageFollowsConfiguredCeiling(t *testing.T) {
	v := NewValidator(2 * 1024 * 1024)

	_, err := v.Validate(Candidate{Data: jpegPayload(2*1024*1024 + 1), ContentType: "image/jpeg"})
	require.ErrorIs(t, err, ErrInvalidUpload)
	assert.Equal(t, "file too large, maximum size is 2MB", err.Error())

	ext, err := v.Validate(Candidate{Data: jpegPayload(2 * 1024 * 1024), ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)
}

func TestValidate_AcceptsKnownSignatures(t *testing.T) {
	v := NewValidator(DefaultMaxFileSize)

	cases := map[string][]byte{
		"jpeg":  {0xFF, 0xD8, 0xFF, 0xE0, 0x00},
		"png":   {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00},
		"gif87": []byte("GIF87a...."),
		"gif89": []byte("GIF89a...."),
		"webp":  []byte("RIFF\x00\x00\x00\x00WEBPVP8 "),
	}
	for name, data := range cases {
		_, err := v.Validate(Candidate{Data: data, ContentType: "image/" + name, Filename: "x." + name})
		assert.NoError(t, err, name)
	}
}

func TestValidate_RejectsUnknownSignature(t *testing.T) {
	v := NewValidator(DefaultMaxFileSize)

	cases := [][]byte{
		[]byte("this is just a text file pretending to be a jpeg"),
		{},
		{0xFF, 0xD8}, // truncated jpeg marker
		[]byte("GIF88a"),
	}
	for _, data := range cases {
		_, err := v.Validate(Candidate{Data: data, ContentType: "image/jpeg", Filename: "fake.jpg"})
		require.ErrorIs(t, err, ErrInvalidUpload)
		assert.Equal(t, "invalid image file format", err.Error())
	}
}

func TestValidate_ContentTypeCheckedBeforeSize(t *testing.T) {
	v := NewValidator(10)

	_, err := v.Validate(Candidate{Data: bytes.Repeat([]byte{'a'}, 100), ContentType: "text/plain"})
	assert.EqualError(t, err, "file must be an image")
}

func TestNewValidator_DefaultsCeiling(t *testing.T) {
	assert.Equal(t, int64(DefaultMaxFileSize), NewValidator(0).MaxSize())
	assert.Equal(t, int64(DefaultMaxFileSize), NewValidator(-1).MaxSize())
}

func TestDeriveExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", ".jpg"},
		{"photo.JPEG", ".jpeg"},
		{"image.Png", ".png"},
		{"anim.gif", ".gif"},
		{"pic.webp", ".webp"},
		{"archive.tar.gz", ".jpg"},
		{"notes.txt", ".jpg"},
		{"noextension", ".jpg"},
		{"", ".jpg"},
		{"trailingdot.", ".jpg"},
		{"dir.png/file", ".jpg"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DeriveExtension(tc.filename), tc.filename)
	}
}
