package server

import (
	"bytes"
	"io"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/backpackor/internal/app/middleware"
	"github.com/FACorreiaa/backpackor/internal/routes"
)

const (
	serviceName      = "backpackor"
	maxLoggedBodyLen = 4 << 10
)

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(deps routes.Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20

	r.Use(ginzap.GinzapWithConfig(deps.Logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
		SkipPaths:  []string{"/api/v1/health"},
	}))
	r.Use(ginzap.RecoveryWithZap(deps.Logger, true))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.CORSMiddleware(deps.Config.Auth.AllowedOrigins))
	r.Use(middleware.SecurityMiddleware())
	r.Use(middleware.Sessions(deps.Config.Auth.SessionSecret, deps.Config.Auth.SecureCookies))

	routes.Setup(r, routes.NewAppHandlers(deps), deps.Config, deps.Logger)

	return r
}

// zapContextFunc returns the Zap context function for logging
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get("X-Request-Id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		// Only small JSON bodies; uploads are multipart and would flood the log.
		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") &&
			c.Request.ContentLength > 0 && c.Request.ContentLength <= maxLoggedBodyLen {
			var buf bytes.Buffer
			body, _ := io.ReadAll(io.TeeReader(c.Request.Body, &buf))
			c.Request.Body = io.NopCloser(&buf)
			if len(body) > 0 {
				fields = append(fields, zap.String("body", string(body)))
			}
		}

		return fields
	}
}
