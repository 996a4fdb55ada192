package httpapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonwraymond/catalogd/auth"
	"github.com/jonwraymond/catalogd/observe"
)

const (
	headerRequestID = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID propagates a caller-supplied X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []observe.Field{
			{Key: "request_id", Value: requestIDFrom(c)},
			{Key: "method", Value: c.Request.Method},
			{Key: "route", Value: route},
			{Key: "status", Value: c.Writer.Status()},
			{Key: "duration_ms", Value: float64(time.Since(start).Microseconds()) / 1000},
		}
		if p := auth.PrincipalFromContext(c.Request.Context()); p != nil {
			fields = append(fields, observe.Field{Key: "subject_id", Value: p.SubjectID})
		}

		if c.Writer.Status() >= 500 {
			s.log.Error(c.Request.Context(), "request failed", fields...)
			return
		}
		s.log.Info(c.Request.Context(), "request", fields...)
	}
}

// guard authenticates and authorizes the request for op and attaches
// the principal to the request context.
func (s *Server) guard(op *auth.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := &auth.AuthRequest{
			Headers: c.Request.Header,
			Method:  c.Request.Method,
			Route:   c.FullPath(),
		}
		p, err := s.deps.Guard.Check(c.Request.Context(), req, op)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}
