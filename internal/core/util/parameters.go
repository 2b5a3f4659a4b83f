package util

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ParamsToMap binds the JSON body into T. A missing or empty body yields the
// zero T so that field validation reports what is absent.
func ParamsToMap[T any](c *gin.Context) (T, error) {
	var params T

	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return params, nil
	}

	if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
		return params, err
	}

	return params, nil
}
