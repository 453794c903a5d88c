package middleware

import (
	"log/slog"
	"net/http"

	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle if there are errors
		if len(c.Errors) == 0 {
			return
		}

		appErr := apperrors.Wrap(c.Errors.Last().Err)
		logger.LogError(c.Request.Context(), log, appErr, "status request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, appErr)
		}
	}
}
