package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobsy/internal/backend"
)

// writeError responde con el contrato {"error","code"} del backend.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	mapped := backend.FromServiceError(err)
	status := backend.HTTPStatus(mapped)

	var rl *backend.RateLimitError
	if errors.As(mapped, &rl) {
		c.Header("Retry-After", strconv.Itoa(rl.RetryAfterSeconds))
		c.JSON(status, gin.H{"error": rl.Error(), "code": backend.CodeRateLimited})
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
	} else {
		logger.Debug(op+" rejected", zap.Error(err))
	}

	var be *backend.Error
	if errors.As(mapped, &be) {
		c.JSON(status, gin.H{"error": be.Message, "code": be.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": backend.ErrUnexpected.Message, "code": backend.ErrUnexpected.Code})
}

func badRequest(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Warn("invalid "+op+" request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "code": "bad_request"})
}
