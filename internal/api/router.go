package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"Referent/internal/domain"
	"Referent/internal/usecase"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Referent is the set of operations exposed over HTTP.
type Referent interface {
	Extract(ctx context.Context, rawURL string) (domain.ExtractedArticle, error)
	Dispatch(ctx context.Context, req usecase.DispatchRequest) (string, error)
	Run(ctx context.Context, rawURL, action string) (usecase.RunResult, error)
	Translate(ctx context.Context, body string) (string, error)
	Publish(ctx context.Context, text string) error
}

// SetupRouter registers every route on a fresh engine.
func SetupRouter(svc Referent, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(log), gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if log != nil {
			log.Error("panic recovered", "panic", recovered, "path", c.Request.URL.Path, requestIDKey, c.GetString(requestIDKey))
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": usecase.MsgInternal})
	}))

	r.GET("/healthz", healthHandler)

	group := r.Group("/api")
	{
		group.POST("/extract", ExtractHandler(svc))
		group.POST("/dispatch", DispatchHandler(svc))
		group.POST("/actions", RunHandler(svc))
		group.POST("/translate", TranslateHandler(svc))
		group.POST("/publish", PublishHandler(svc))
	}
	return r
}

// requestID reuses an incoming X-Request-ID or assigns a new one.
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

func accessLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			requestIDKey, c.GetString(requestIDKey),
		)
	}
}
