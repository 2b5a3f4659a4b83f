package helper

import (
	"net/http"

	. "usersapi/internal/adapter/http/validation"
	"usersapi/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

func SendSuccess(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, response.Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendList writes a collection together with its length.
func SendList(c *gin.Context, message string, data any, count int) {
	c.JSON(http.StatusOK, response.Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Count:   &count,
	})
}

func SendError(c *gin.Context, statusCode int, message string, details ...error) {
	envelope := response.Envelope{
		Success: false,
		Message: message,
	}

	if len(details) > 0 && details[0] != nil {
		envelope.Error = details[0].Error()
	}

	c.JSON(statusCode, envelope)
}

// SendValidationError answers 400 with the first violated rule as message and
// every translated field error attached.
func SendValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Envelope{
		Success: false,
		Message: ViolationMessage(FirstViolation(err)),
		Errors:  FormatValidationErrors(err),
	})
}

func SendBadRequestError(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

func SendConflictError(c *gin.Context, message string) {
	SendError(c, http.StatusConflict, message)
}

func SendInternalError(c *gin.Context, message string, err error) {
	SendError(c, http.StatusInternalServerError, message, err)
}
