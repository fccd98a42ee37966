package main

import (
	"fmt"
	"strings"

	"mediareviews/internal/apiclient"
)

func formatMediaType(mediaType string) string {
	if mediaType == "" {
		return "Unknown"
	}
	return strings.ToUpper(mediaType[:1]) + mediaType[1:]
}

func formatRating(rating int) string {
	stars := min(max(rating, 0), 10)
	return fmt.Sprintf("%s%s %d/10", strings.Repeat("*", stars), strings.Repeat(".", 10-stars), rating)
}

func formatSummary(r apiclient.Review) string {
	return fmt.Sprintf("#%d [%s] %s\n%s by %s",
		r.ID, formatMediaType(r.MediaType), r.MediaTitle, formatRating(r.Rating), r.AuthorName)
}

func formatDetail(r *apiclient.Review, absURL func(string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d [%s] %s", r.ID, formatMediaType(r.MediaType), r.MediaTitle)
	if r.MediaYear != nil {
		fmt.Fprintf(&b, " (%d)", *r.MediaYear)
	}
	fmt.Fprintf(&b, "\nRating:  %s\n", formatRating(r.Rating))
	fmt.Fprintf(&b, "Author:  %s\n", r.AuthorName)
	if r.ContainsSpoilers {
		b.WriteString("Spoilers: yes\n")
	} else {
		b.WriteString("Spoilers: no\n")
	}
	if r.ImageURL != nil {
		fmt.Fprintf(&b, "Image:   %s\n", absURL(*r.ImageURL))
	}
	fmt.Fprintf(&b, "Created: %s\n", r.CreatedAt.Format("2006-01-02 15:04"))
	if !r.UpdatedAt.Equal(r.CreatedAt) {
		fmt.Fprintf(&b, "Updated: %s\n", r.UpdatedAt.Format("2006-01-02 15:04"))
	}
	b.WriteString("\n")
	b.WriteString(r.Text)
	return b.String()
}
