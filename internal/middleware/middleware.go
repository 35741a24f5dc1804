package middleware

import (
	"net/http"
	"time"

	"fieldsync/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const RequestIDKey = "request_id"

// RequestID tags every request with an id, honoring one supplied by the UI.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Logger logs each request with method, path, status, latency, and request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Recovery converts panics into 500 responses without leaking internals.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
			}
		}()
		c.Next()
	}
}

// ErrorHandler catches unhandled gin errors and returns a safe envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err.Err).
			Msg("unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}

// CORS allows the device UI (served from a different local origin) to call
// the API.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
