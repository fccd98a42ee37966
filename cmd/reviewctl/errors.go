package main

import (
	"errors"
	"fmt"

	"mediareviews/internal/apiclient"
)

var (
	errAPIUnavailable = errors.New("API is unavailable")
	errDownloadFailed = errors.New("failed to download image")
)

// userMessage turns a command failure into the line printed for the user.
func userMessage(err error) string {
	var (
		notFound   *apiclient.NotFoundError
		validation *apiclient.ValidationFailedError
		badRequest *apiclient.BadRequestError
	)
	switch {
	case errors.As(err, &notFound):
		return "Not found: " + notFound.Message
	case errors.As(err, &validation):
		if len(validation.Details) == 0 {
			return "Validation failed: " + validation.Message
		}
		msg := "Validation failed:"
		for _, d := range validation.Details {
			msg += "\n  - " + d
		}
		return msg
	case errors.As(err, &badRequest):
		return "Rejected: " + badRequest.Message
	case errors.Is(err, apiclient.ErrServiceUnavailable), errors.Is(err, errAPIUnavailable):
		return "The reviews API is unavailable right now, try again later"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
