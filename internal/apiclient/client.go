package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mediareviews/internal/pkg/jwt"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultListLimit = 10

	maxErrorBodyBytes = 1 << 20
	maxImageBytes     = 32 << 20

	headerAuthorID = "X-Author-Id"
)

// TokenSource supplies the bearer token attached to each request.
type TokenSource interface {
	Token() (string, error)
}

type serviceTokens struct {
	svc     *jwt.Service
	subject string
}

// NewServiceTokenSource signs a fresh short-lived token per request.
func NewServiceTokenSource(svc *jwt.Service, subject string) TokenSource {
	return serviceTokens{svc: svc, subject: subject}
}

func (s serviceTokens) Token() (string, error) {
	return s.svc.GenerateToken(s.subject, "reviews:write")
}

type authorKey struct{}

// WithAuthor tags ctx with the end user a request is made for, so the API
// rate-limits per user rather than per bot.
func WithAuthor(ctx context.Context, authorID int64) context.Context {
	return context.WithValue(ctx, authorKey{}, authorID)
}

// Client calls the review API. Every method returns either a result or one
// of the typed failures in errors.go.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for baseURL, e.g. http://localhost:8000.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) CreateReview(ctx context.Context, in CreateReviewInput) (*Review, error) {
	var out Review
	if err := c.doJSON(ctx, http.MethodPost, "/reviews", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListReviews(ctx context.Context, opts ListOptions) ([]Review, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("offset", strconv.Itoa(opts.Offset))
	if opts.MediaType != "" {
		q.Set("media_type", opts.MediaType)
	}
	if opts.MinRating > 0 {
		q.Set("min_rating", strconv.Itoa(opts.MinRating))
	}
	if opts.AuthorName != "" {
		q.Set("author_name", opts.AuthorName)
	}

	var out []Review
	if err := c.do(ctx, http.MethodGet, "/reviews?"+q.Encode(), nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetReview(ctx context.Context, id int64) (*Review, error) {
	var out Review
	if err := c.do(ctx, http.MethodGet, reviewPath(id), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReview(ctx context.Context, id int64, patch ReviewPatch) (*Review, error) {
	var out Review
	if err := c.doJSON(ctx, http.MethodPatch, reviewPath(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReview(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, reviewPath(id), nil, "", nil)
}

// UploadReviewImage sends data as the "file" part with the given declared
// content type (image/jpeg when empty).
func (c *Client) UploadReviewImage(ctx context.Context, id int64, data []byte, filename, contentType string) (*Review, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var out Review
	if err := c.do(ctx, http.MethodPost, reviewPath(id)+"/image", body, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthCheck reports false when the API cannot be reached or answers 5xx.
// Other failures are returned.
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	var out struct {
		Status string `json:"status"`
	}
	err := c.do(ctx, http.MethodGet, "/health", nil, "", &out)
	if errors.Is(err, ErrServiceUnavailable) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return out.Status == "healthy", nil
}

// DownloadImage fetches an image_url. It returns nil on any failure.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.AbsoluteImageURL(imageURL), nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("url", imageURL).Msg("image download failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Debug().Int("status", resp.StatusCode).Str("url", imageURL).Msg("image download failed")
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil
	}
	return data
}

// AbsoluteImageURL resolves an image_url against the API base URL.
func (c *Client) AbsoluteImageURL(imageURL string) string {
	if strings.HasPrefix(imageURL, "http") {
		return imageURL
	}
	return c.baseURL + imageURL
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(payload), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authorID, ok := ctx.Value(authorKey{}).(int64); ok {
		req.Header.Set(headerAuthorID, strconv.FormatInt(authorID, 10))
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("api request failed")
		return translateTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.log.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("api error response")
		return translateStatus(resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newUnavailable(fmt.Sprintf("Unexpected response from API: %d", resp.StatusCode), nil)
	}
	// Success bodies are streamed without a size cap: a full page of long
	// reviews is legitimately large.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return newUnavailable(fmt.Sprintf("Invalid response from API: %v", err), err)
	}
	return nil
}

func reviewPath(id int64) string {
	return "/reviews/" + strconv.FormatInt(id, 10)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
