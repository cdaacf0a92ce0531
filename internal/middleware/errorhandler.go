package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"indexpulse/internal/domain/dto"
	"indexpulse/internal/logger"
)

// ErrorHandler is a Gin middleware that converts errors accumulated on the
// context during request handling into a standardized JSON error response.
//
// Behavior:
//   - Runs the remaining handlers first via c.Next().
//   - If any handler attached an error with c.Error(...), the last error is
//     logged and a 500 Internal Server Error response is written, unless a
//     handler already wrote a response body.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	err := c.Errors.Last().Err
	logger.L().Error().
		Err(err).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if c.Writer.Written() {
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
}

// AbortWithError writes a standardized JSON error response with the given
// status code and stops the handler chain.
//
// Parameters:
//   - c (*gin.Context): The request context.
//   - status (int): HTTP status code to respond with.
//   - message (string): Human-readable error message.
//   - err (error): Underlying error, included as details (may be nil).
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
