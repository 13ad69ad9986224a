package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID echoes the caller's X-Request-ID or assigns a new one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs one event per request
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()

		var evt *zerolog.Event
		if status >= http.StatusInternalServerError {
			evt = log.Warn()
		} else {
			evt = log.Debug()
		}

		if last := c.Errors.Last(); last != nil {
			evt = evt.Err(last.Err)
		}

		evt.Str("request_id", c.GetString(requestIDKey)).
			Dur("latency", time.Since(start)).
			Str("remote_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("uri", c.Request.RequestURI).
			Int("status", status).
			Msg("request")
	}
}
