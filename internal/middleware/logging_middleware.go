package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-world/internal/logging"
)

// RequestIDKey – ключ gin.Context с идентификатором запроса
const RequestIDKey = "request_id"

// RequestLogger снабжает каждый HTTP-запрос идентификатором и пишет краткие логи.
// Если запрос уже трассируется, идентификатором служит trace-ID.
type RequestLogger struct {
	logger *logging.Logger
}

func NewRequestLogger(logger *logging.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.GetComponentLogger("http")
	}
	return &RequestLogger{logger: logger}
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			requestID = span.SpanContext().TraceID().String()
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		rl.logger.Debug("[HTTP] %s %s %d %s id=%s", c.Request.Method, path,
			c.Writer.Status(), time.Since(start), requestID)
	}
}
