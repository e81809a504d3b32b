package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/messagely/internal/shared"
	"github.com/gin-gonic/gin"
)

// statusFromError maps domain sentinels to HTTP statuses. Anything
// unrecognized is a 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, shared.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrorBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrorUnauthorized),
		errors.Is(err, shared.ErrorInvalidToken),
		errors.Is(err, shared.ErrorInvalidAuthHeaderFormat):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError ends the request with the status derived from err. Internal
// errors are logged and their detail withheld from the response body.
func (s *RESTServer) abortWithError(c *gin.Context, err error) {
	status := statusFromError(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		msg = "internal error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
