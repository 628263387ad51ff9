package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/api/middleware"
	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/service"
	"github.com/andresuchdata/inventory-optimizer/internal/upload"
)

func sessionID(c *gin.Context) string {
	return c.GetString(middleware.SessionKey)
}

// respondError maps service errors onto HTTP answers of the form
// {"error", "details"}.
func respondError(c *gin.Context, err error) {
	var verr *upload.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "data validation failed", "details": verr.Messages})
	case errors.Is(err, upload.ErrUnsupportedFormat),
		errors.Is(err, upload.ErrNoInputSheet),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, service.ErrNoData):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPersistenceDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "details": err.Error()})
	}
}
