package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"mediareviews/internal/apiclient"
	"mediareviews/internal/domain/upload"
	"mediareviews/internal/pkg/optional"
)

var errNoImage = errors.New("review has no image")

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := a.client.HealthCheck(a.ctx(cmd))
			if err != nil {
				return err
			}
			if !ok {
				return errAPIUnavailable
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API is healthy")
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var opts apiclient.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reviews, err := a.client.ListReviews(a.ctx(cmd), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reviews) == 0 {
				fmt.Fprintln(out, "No reviews found")
				return nil
			}
			for i, r := range reviews {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, formatSummary(r))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Limit, "limit", 10, "maximum number of reviews (1-100)")
	f.IntVar(&opts.Offset, "offset", 0, "number of reviews to skip")
	f.StringVar(&opts.MediaType, "type", "", "only this media type: movie, tv, book or play")
	f.IntVar(&opts.MinRating, "min-rating", 0, "only reviews rated at least this")
	f.StringVar(&opts.AuthorName, "author", "", "only reviews by this author")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.client.GetReview(a.ctx(cmd), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatDetail(r, a.client.AbsoluteImageURL))
			return nil
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	var (
		in         apiclient.CreateReviewInput
		year       int
		telegramID int64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("year") {
				in.MediaYear = &year
			}
			if cmd.Flags().Changed("telegram-id") {
				in.AuthorTelegramID = &telegramID
			}
			r, err := a.client.CreateReview(a.ctx(cmd), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review #%d created\n\n%s\n", r.ID, formatDetail(r, a.client.AbsoluteImageURL))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.AuthorName, "author", "", "author display name")
	f.Int64Var(&telegramID, "telegram-id", 0, "author telegram id")
	f.StringVar(&in.MediaType, "type", "", "media type: movie, tv, book or play")
	f.StringVar(&in.MediaTitle, "title", "", "media title")
	f.IntVar(&year, "year", 0, "release year")
	f.IntVar(&in.Rating, "rating", 0, "rating from 1 to 10")
	f.StringVar(&in.Text, "text", "", "review text")
	f.BoolVar(&in.ContainsSpoilers, "spoilers", false, "mark the review as containing spoilers")
	for _, name := range []string{"author", "type", "title", "rating", "text"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var (
		author, mediaType, title, text string
		telegramID                     int64
		year, rating                   int
		spoilers                       bool
		clearYear, clearTelegramID     bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change selected fields of a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			f := cmd.Flags()
			var patch apiclient.ReviewPatch
			if f.Changed("author") {
				patch.AuthorName = optional.Of(author)
			}
			if f.Changed("type") {
				patch.MediaType = optional.Of(mediaType)
			}
			if f.Changed("title") {
				patch.MediaTitle = optional.Of(title)
			}
			if f.Changed("text") {
				patch.Text = optional.Of(text)
			}
			if f.Changed("rating") {
				patch.Rating = optional.Of(rating)
			}
			if f.Changed("spoilers") {
				patch.ContainsSpoilers = optional.Of(spoilers)
			}
			switch {
			case clearYear:
				patch.MediaYear = optional.Null[int]()
			case f.Changed("year"):
				patch.MediaYear = optional.Of(year)
			}
			switch {
			case clearTelegramID:
				patch.AuthorTelegramID = optional.Null[int64]()
			case f.Changed("telegram-id"):
				patch.AuthorTelegramID = optional.Of(telegramID)
			}

			r, err := a.client.UpdateReview(a.ctx(cmd), id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review #%d updated\n\n%s\n", r.ID, formatDetail(r, a.client.AbsoluteImageURL))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&author, "author", "", "author display name")
	f.Int64Var(&telegramID, "telegram-id", 0, "author telegram id")
	f.BoolVar(&clearTelegramID, "clear-telegram-id", false, "remove the author telegram id")
	f.StringVar(&mediaType, "type", "", "media type: movie, tv, book or play")
	f.StringVar(&title, "title", "", "media title")
	f.IntVar(&year, "year", 0, "release year")
	f.BoolVar(&clearYear, "clear-year", false, "remove the release year")
	f.IntVar(&rating, "rating", 0, "rating from 1 to 10")
	f.StringVar(&text, "text", "", "review text")
	f.BoolVar(&spoilers, "spoilers", false, "whether the review contains spoilers")
	cmd.MarkFlagsMutuallyExclusive("year", "clear-year")
	cmd.MarkFlagsMutuallyExclusive("telegram-id", "clear-telegram-id")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a review and its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteReview(a.ctx(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review #%d deleted\n", id)
			return nil
		},
	}
}

func (a *app) uploadImageCmd() *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:   "upload-image <id> <file>",
		Short: "Attach an image to a review",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			name := filepath.Base(args[1])
			if contentType == "" {
				contentType = upload.ContentTypeForExt(upload.DeriveExtension(name))
			}

			r, err := a.client.UploadReviewImage(a.ctx(cmd), id, data, name, contentType)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Image attached to review #%d\n", r.ID)
			if r.ImageURL != nil {
				fmt.Fprintln(cmd.OutOrStdout(), a.client.AbsoluteImageURL(*r.ImageURL))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "declared content type (guessed from the file extension when empty)")
	return cmd
}

func (a *app) downloadImageCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download-image <id>",
		Short: "Save a review's image to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.client.GetReview(a.ctx(cmd), id)
			if err != nil {
				return err
			}
			if r.ImageURL == nil {
				return errNoImage
			}

			data := a.client.DownloadImage(a.ctx(cmd), *r.ImageURL)
			if data == nil {
				return errDownloadFailed
			}
			if output == "" {
				output = filepath.Base(*r.ImageURL)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes to %s\n", len(data), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (defaults to the stored file name)")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid review id %q", raw)
	}
	return id, nil
}
