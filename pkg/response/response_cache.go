package response

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"todohub/internal/core/port"
	"todohub/internal/core/telemetry"
	. "todohub/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ResponseCacheConfig struct {
	TTL     time.Duration
	Enabled bool
}

// ResponseCache serves repeated GETs of configured routes from memory. Any
// change to the todo collection flushes every entry.
type ResponseCache struct {
	cache      *cache.Cache
	config     map[string]ResponseCacheConfig
	mutex      sync.RWMutex
	generation atomic.Uint64
	logger     *zap.Logger
	metrics    *telemetry.AppMetrics
}

type CachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Timestamp   time.Time
}

func NewResponseCache(ttl time.Duration, logger *zap.Logger, metrics *telemetry.AppMetrics) *ResponseCache {
	c := cache.New(5*time.Minute, 10*time.Minute)

	configs := map[string]ResponseCacheConfig{
		"/todos":               {TTL: ttl, Enabled: true},
		"/todos/:id":           {TTL: ttl, Enabled: true},
		"/todos/stats/summary": {TTL: ttl, Enabled: true},
		"default":              {Enabled: false},
	}

	return &ResponseCache{
		cache:   c,
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

var _ port.ChangeListener = (*ResponseCache)(nil)

func (rc *ResponseCache) CacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		config := rc.lookup(path)

		if !config.Enabled {
			c.Next()
			return
		}

		cacheKey := rc.generateCacheKey(c, path)

		if cachedResp, found := rc.cache.Get(cacheKey); found {
			cached := cachedResp.(CachedResponse)

			_, span := CreateChildSpan(c.Request.Context(), "cache.response.hit", []attribute.KeyValue{
				attribute.String("cache.key", cacheKey),
				attribute.String("cache.path", path),
				attribute.String("cache.age", time.Since(cached.Timestamp).String()),
			})
			defer span.End()

			if rc.metrics != nil {
				rc.metrics.RecordCacheHit(c.Request.Context(), path)
			}

			c.Header("X-Cache", "HIT")
			c.Header("X-Cache-Age", fmt.Sprintf("%.0f", time.Since(cached.Timestamp).Seconds()))

			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(c.Request.Context(), path)
		}

		generation := rc.generation.Load()

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		status := writer.Status()

		if status < 200 || status >= 300 {
			return
		}

		rc.store(cacheKey, generation, CachedResponse{
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
			Timestamp:   time.Now(),
		}, config.TTL)
	}
}

// store keeps resp only if no change happened since generation was read. The
// check and the write hold the same lock as InvalidateAllCache.
func (rc *ResponseCache) store(key string, generation uint64, resp CachedResponse, ttl time.Duration) bool {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if generation != rc.generation.Load() {
		return false
	}

	rc.cache.Set(key, resp, ttl)

	return true
}

func (rc *ResponseCache) lookup(path string) ResponseCacheConfig {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()

	if config, exists := rc.config[path]; exists {
		return config
	}

	return rc.config["default"]
}

func (rc *ResponseCache) generateCacheKey(c *gin.Context, path string) string {
	keyParts := []string{path, c.Request.URL.Path}

	if c.Request.URL.RawQuery != "" {
		keyParts = append(keyParts, c.Request.URL.RawQuery)
	}

	hash := md5.Sum([]byte(strings.Join(keyParts, "|")))

	return fmt.Sprintf("cache:%s:%x", path, hash)
}

// TodoChanged flushes the cache after any create, update or delete.
func (rc *ResponseCache) TodoChanged(ctx context.Context, kind port.ChangeKind, id int) {
	rc.InvalidateAllCache()

	rc.logger.Debug("Cache invalidated",
		zap.String("change", string(kind)),
		zap.Int("todo_id", id))
}

func (rc *ResponseCache) InvalidateAllCache() {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	rc.generation.Add(1)
	rc.cache.Flush()
}

func (rc *ResponseCache) SetConfig(path string, config ResponseCacheConfig) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	rc.config[path] = config
}

func (rc *ResponseCache) GetStats() map[string]any {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()

	return map[string]any{
		"active_entries": rc.cache.ItemCount(),
		"configs":        len(rc.config),
	}
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
