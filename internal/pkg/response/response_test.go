package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"mediareviews/internal/pkg/validator"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestError(t *testing.T) {
	c, w := newContext()
	Error(c, http.StatusNotFound, "Review not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Review not found"}`, w.Body.String())
}

func TestValidationError(t *testing.T) {
	c, w := newContext()
	ValidationError(c, []validator.FieldError{validator.NewFieldError("rating", "Field required", "missing")})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"detail":[{"loc":["body","rating"],"msg":"Field required","type":"missing"}]}`, w.Body.String())
}

func TestInternal(t *testing.T) {
	c, w := newContext()
	Internal(c, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())
	assert.Len(t, c.Errors, 1)
}
