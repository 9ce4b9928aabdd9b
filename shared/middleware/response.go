package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response, success or failure.
type Envelope struct {
	Error      bool        `json:"error"`
	Errors     []string    `json:"errors"`
	Total      *int        `json:"total,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       any         `json:"data"`
	Message    string      `json:"message"`
	Status     int         `json:"status"`
}

func RespondWithData(c *gin.Context, code int, data any) {
	c.JSON(code, Envelope{
		Error:   false,
		Errors:  []string{},
		Data:    data,
		Message: "successful",
		Status:  code,
	})
}

// RespondWithMessage is RespondWithData with a custom message, used where the
// message carries meaning to the client (a code was sent, for example).
func RespondWithMessage(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{
		Error:   false,
		Errors:  []string{},
		Data:    data,
		Message: message,
		Status:  code,
	})
}

func RespondWithError(c *gin.Context, code int, messages ...string) {
	if messages == nil {
		messages = []string{http.StatusText(code)}
	}
	c.JSON(code, Envelope{
		Error:   true,
		Errors:  messages,
		Data:    nil,
		Message: "Error",
		Status:  code,
	})
}

// AbortWithError writes an error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, code int, messages ...string) {
	RespondWithError(c, code, messages...)
	c.Abort()
}

func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	messages := make([]string, len(validationErrors))
	for i, ve := range validationErrors {
		messages[i] = ve.Message
	}
	c.JSON(http.StatusBadRequest, Envelope{
		Error:   true,
		Errors:  messages,
		Data:    validationErrors,
		Message: "Error",
		Status:  http.StatusBadRequest,
	})
}
