package handlers

import (
	"errors"
	"net/http"

	"cityguide/internal/identity"
	"cityguide/internal/services"

	"github.com/gin-gonic/gin"
)

type postURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// bindPostID reads and validates the :id path parameter. On failure it has
// already written a 400.
func bindPostID(c *gin.Context) (string, bool) {
	var uri postURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return "", false
	}
	return uri.ID, true
}

// RenderError writes err as a JSON error with the matching status.
func RenderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, identity.ErrUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not identify this browser"})
	case errors.Is(err, services.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engagement is temporarily unavailable, please try again"})
	}
}
