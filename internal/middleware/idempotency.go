package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// ResponseCache stores replayable responses.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// cachedResponse stores the response for idempotent requests.
type cachedResponse struct {
	StatusCode int         `json:"status_code"`
	Body       []byte      `json:"body"`
	Headers    http.Header `json:"headers"`
}

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a mutating request
// repeats an Idempotency-Key. Keys are scoped to the authenticated user.
func IdempotencyMiddleware(cache ResponseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to mutating methods.
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" || cache == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := UserID(c) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key

		cached, err := getCachedResponse(ctx, cache, cacheKey)
		if err != nil {
			// Cache unavailable - proceed without idempotency.
			log.Printf("idempotency lookup failed: %v", err)
			c.Next()
			return
		}

		if cached != nil {
			for k, v := range cached.Headers {
				for _, val := range v {
					c.Header(k, val)
				}
			}
			c.Header("Idempotent-Replayed", "true")
			c.Data(cached.StatusCode, cached.Headers.Get("Content-Type"), cached.Body)
			c.Abort()
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// Server errors are not cached so the client can retry.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			response := cachedResponse{
				StatusCode: c.Writer.Status(),
				Body:       w.body.Bytes(),
				Headers:    extractResponseHeaders(c),
			}
			if err := setCachedResponse(ctx, cache, cacheKey, &response, idempotencyTTL); err != nil {
				log.Printf("idempotency store failed: %v", err)
			}
		}
	}
}

// getCachedResponse returns nil without error on a cache miss.
func getCachedResponse(ctx context.Context, cache ResponseCache, key string) (*cachedResponse, error) {
	data, found, err := cache.Get(ctx, key)
	if err != nil || !found {
		return nil, err
	}

	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	return &cached, nil
}

func setCachedResponse(ctx context.Context, cache ResponseCache, key string, response *cachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}

	return cache.Set(ctx, key, data, ttl)
}

// extractResponseHeaders extracts headers to cache.
func extractResponseHeaders(c *gin.Context) http.Header {
	headers := make(http.Header)
	// Only cache Content-Type header.
	if ct := c.Writer.Header().Get("Content-Type"); ct != "" {
		headers.Set("Content-Type", ct)
	}
	return headers
}
