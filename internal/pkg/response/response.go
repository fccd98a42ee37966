package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediareviews/internal/pkg/validator"
)

const internalErrorDetail = "Internal server error"

// Detail is the error body every non-2xx response carries.
type Detail struct {
	Detail any `json:"detail"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Detail{Detail: message})
}

// AbortError writes the error body and stops the handler chain.
func AbortError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Detail{Detail: message})
}

func ValidationError(c *gin.Context, details []validator.FieldError) {
	c.JSON(http.StatusUnprocessableEntity, Detail{Detail: details})
}

// Internal records err on the context for the logging middleware and
// answers with a generic 500.
func Internal(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, Detail{Detail: internalErrorDetail})
}
