package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
)

// RespondWithError writes err as a JSON error response. AppErrors carry
// their own status code and body; anything else becomes an opaque 500.
func RespondWithError(c *gin.Context, log *logger.Logger, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.WithError(appErr).Error("Request error", logger.Fields(
				"path", c.Request.URL.Path,
			))
		}
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}

	log.WithError(err).Error("Unhandled error", logger.Fields(
		"path", c.Request.URL.Path,
	))
	internal := errors.Internal(err)
	c.JSON(internal.HTTPStatus, internal.ToResponse())
}
