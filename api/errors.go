package api

import (
	"chat-room/errors"
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error kind to its HTTP status. Unknown errors are server failures.
func statusFor(err error) int {
	switch {
	case goerrors.Is(err, errors.ErrValidation):
		return http.StatusUnprocessableEntity
	case goerrors.Is(err, errors.ErrConflict):
		return http.StatusConflict
	case goerrors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case goerrors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func (h *Handler) abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
