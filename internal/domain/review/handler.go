package review

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mediareviews/internal/domain/upload"
	"mediareviews/internal/pkg/response"
	"mediareviews/internal/pkg/validator"
)

const (
	notFoundDetail = "Review not found"

	// multipartOverhead is the slack allowed on top of the image ceiling for
	// boundaries and part headers.
	multipartOverhead = 1 << 20
)

type Handler struct {
	service *Service
	mount   string
}

// NewHandler builds the review HTTP handler. mount is the URL prefix the
// upload root is served under, used to build image_url.
func NewHandler(service *Service, mount string) *Handler {
	return &Handler{service: service, mount: mount}
}

// Create godoc
// @Summary Create a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} ReviewResponse
// @Failure 422 {object} response.Detail
// @Router /reviews [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validator.FromDecodeError(err))
		return
	}
	if errs := validator.Validate(req); len(errs) > 0 {
		response.ValidationError(c, errs)
		return
	}

	rv, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ToResponse(rv, h.mount))
}

// List godoc
// @Summary List reviews
// @Tags Reviews
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param offset query int false "Offset"
// @Param media_type query string false "movie, tv, book or play"
// @Param author_name query string false "Exact author name"
// @Param min_rating query int false "Minimum rating"
// @Success 200 {array} ReviewResponse
// @Router /reviews [get]
func (h *Handler) List(c *gin.Context) {
	filter, errs := parseListQuery(c)
	if len(errs) > 0 {
		response.ValidationError(c, errs)
		return
	}

	rows, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponses(rows, h.mount))
}

// Get godoc
// @Summary Get a review
// @Tags Reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} ReviewResponse
// @Failure 404 {object} response.Detail
// @Router /reviews/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rv, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToResponse(rv, h.mount))
}

// Update godoc
// @Summary Partially update a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} ReviewResponse
// @Failure 404,422 {object} response.Detail
// @Router /reviews/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validator.FromDecodeError(err))
		return
	}
	errs := append(validator.Validate(req), req.NullErrors()...)
	if len(errs) > 0 {
		response.ValidationError(c, errs)
		return
	}

	rv, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToResponse(rv, h.mount))
}

// Delete godoc
// @Summary Delete a review and its images
// @Tags Reviews
// @Param id path int true "Review ID"
// @Success 204
// @Failure 404 {object} response.Detail
// @Router /reviews/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

// UploadImage godoc
// @Summary Attach an image to a review
// @Description Accepts JPEG, PNG, GIF or WebP up to the configured size.
// @Tags Reviews
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Review ID"
// @Param file formData file true "Image"
// @Success 200 {object} ReviewResponse
// @Failure 400,404,422 {object} response.Detail
// @Router /reviews/{id}/image [post]
func (h *Handler) UploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	v := h.service.Validator()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, v.MaxSize()+multipartOverhead)

	candidate, err := readCandidate(c, v.MaxSize())
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			response.Error(c, http.StatusBadRequest, v.TooLarge().Error())
		case errors.Is(err, ErrNoFile):
			response.ValidationError(c, []validator.FieldError{
				validator.NewFieldError("file", "Field required", "missing"),
			})
		default:
			response.Error(c, http.StatusBadRequest, "invalid multipart body")
		}
		return
	}

	rv, err := h.service.AttachImage(c.Request.Context(), id, candidate)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToResponse(rv, h.mount))
}

func (h *Handler) fail(c *gin.Context, err error) {
	var invalid *upload.InvalidUploadError
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, notFoundDetail)
	case errors.As(err, &invalid):
		response.Error(c, http.StatusBadRequest, invalid.Reason)
	default:
		response.Internal(c, err)
	}
}

// readCandidate reads at most limit+1 bytes of the "file" part so the
// validator can still see that the payload is over the ceiling.
func readCandidate(c *gin.Context, limit int64) (upload.Candidate, error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return upload.Candidate{}, ErrNoFile
	}
	if err != nil {
		return upload.Candidate{}, err
	}

	f, err := fh.Open()
	if err != nil {
		return upload.Candidate{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return upload.Candidate{}, err
	}
	return upload.Candidate{
		Data:        data,
		ContentType: fh.Header.Get("Content-Type"),
		Filename:    fh.Filename,
	}, nil
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, []validator.FieldError{{
			Loc:  []string{"path", "id"},
			Msg:  "Input should be a valid integer",
			Type: "int_parsing",
		}})
		return 0, false
	}
	return id, true
}

func parseListQuery(c *gin.Context) (ListFilter, []validator.FieldError) {
	var (
		f    ListFilter
		errs []validator.FieldError
	)

	intParam := func(name string, min, max int) int {
		raw, ok := c.GetQuery(name)
		if !ok {
			return 0
		}
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, queryError(name, "Input should be a valid integer", "int_parsing"))
		case n < min:
			errs = append(errs, queryError(name, "Input should be greater than or equal to "+strconv.Itoa(min), "greater_than_equal"))
		case max > 0 && n > max:
			errs = append(errs, queryError(name, "Input should be less than or equal to "+strconv.Itoa(max), "less_than_equal"))
		}
		return n
	}

	f.Limit = intParam("limit", 1, MaxListLimit)
	f.Offset = intParam("offset", 0, 0)
	f.MinRating = intParam("min_rating", 1, 10)
	f.AuthorName = c.Query("author_name")

	if mt, ok := c.GetQuery("media_type"); ok {
		switch MediaType(mt) {
		case MediaMovie, MediaTV, MediaBook, MediaPlay:
			f.MediaType = mt
		default:
			errs = append(errs, queryError("media_type", "Input should be 'movie', 'tv', 'book' or 'play'", "enum"))
		}
	}
	return f, errs
}

func queryError(name, msg, typ string) validator.FieldError {
	return validator.FieldError{Loc: []string{"query", name}, Msg: msg, Type: typ}
}
