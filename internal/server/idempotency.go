package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	headerIdempotencyKey   = "X-Idempotency-Key"
	headerIdempotentReplay = "X-Idempotent-Replayed"
	idempotencyKeyPrefix   = "idempotency:response:"

	defaultIdempotencyTTLSeconds = 120
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyReplay replays the cached response for a retried write that
// carries the same X-Idempotency-Key. Only responses below 400 are cached,
// so a failed write may be retried with the same key. Reads, requests
// without a key, and deployments without Redis pass straight through.
func (s *Server) IdempotencyReplay() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.redis == nil || !idempotentMethod(c.Request.Method) {
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		digest := idempotencyDigest(c.Request.Method, c.Request.URL.Path, body, key)
		ctx := c.Request.Context()

		// Redis failures fall through to the handler; the cache must never
		// fail a write.
		if raw, getErr := s.redis.Get(ctx, digest).Bytes(); getErr == nil {
			var cached cachedResponse
			if unmarshalErr := json.Unmarshal(raw, &cached); unmarshalErr == nil {
				s.obsMetrics.RecordIdempotentReplay(ctx, c.FullPath())
				c.Header(headerIdempotentReplay, "true")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status >= http.StatusBadRequest {
			return
		}

		raw, marshalErr := json.Marshal(cachedResponse{
			Status:      status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.buf.Bytes(),
		})
		if marshalErr != nil {
			return
		}
		_ = s.redis.Set(ctx, digest, raw, s.idempotencyTTL()).Err()
	}
}

func (s *Server) idempotencyTTL() time.Duration {
	ttl := s.cfg.IdempotencyTTLSeconds
	if s.runtimeCfg != nil {
		ttl = s.runtimeCfg.Get().IdempotencyTTLSeconds
	}
	if ttl <= 0 {
		ttl = defaultIdempotencyTTLSeconds
	}
	return time.Duration(ttl) * time.Second
}

func idempotentMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

func idempotencyDigest(method, path string, body []byte, key string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	h.Write([]byte{'\n'})
	h.Write([]byte(key))
	return idempotencyKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
