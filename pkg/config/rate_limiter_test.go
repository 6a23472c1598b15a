package config

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"todohub/internal/core/telemetry"
	. "todohub/pkg"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func newTestRateLimiter() *RateLimiter {
	return NewRateLimiter(zap.NewNop(), telemetry.NewAppMetrics(prometheus.NewRegistry()))
}

func TestNewRateLimiter(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()

	Expect(rl).ToNot(BeNil())
	Expect(rl.cache).ToNot(BeNil())
	Expect(rl.config).To(HaveKey("default"))
	Expect(rl.logger).ToNot(BeNil())
	Expect(rl.metrics).ToNot(BeNil())
}

func TestRateLimitMiddleware_AllowedRequests(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.RateLimitMiddleware())

	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(200))
		Expect(w.Header().Get("X-RateLimit-Limit")).To(Equal("60"))
		Expect(w.Header().Get("X-RateLimit-Remaining")).To(Equal(strconv.Itoa(59 - i)))
	}
}

func TestRateLimitMiddleware_ExceedLimit(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.RateLimitMiddleware())

	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	for i := 0; i < 65; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)

		if i < 60 {
			Expect(w.Code).To(Equal(200))
		} else {
			Expect(w.Code).To(Equal(429))
		}
	}
}

func TestRateLimitMiddleware_MethodSpecificRule(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.RateLimitMiddleware())

	router.DELETE("/todos/:id", func(c *gin.Context) {
		c.JSON(200, gin.H{"deleted": c.Param("id")})
	})

	expectedRemaining := []int{29, 28, 27}

	for i, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/todos/"+id, nil)
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(200))
		Expect(w.Header().Get("X-RateLimit-Remaining")).To(Equal(strconv.Itoa(expectedRemaining[i])))
	}
}

func TestRateLimitMiddleware_SeparateClients(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()
	rl.SetConfig("/limited", RateLimitEndpointConfig{Requests: 1, Window: time.Minute, KeyFunc: GetClientIP})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.RateLimitMiddleware())

	router.GET("/limited", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	send := func(ip string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/limited", nil)
		req.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w, req)

		return w.Code
	}

	Expect(send("10.0.0.1")).To(Equal(http.StatusNoContent))
	Expect(send("10.0.0.1")).To(Equal(http.StatusTooManyRequests))
	Expect(send("10.0.0.2")).To(Equal(http.StatusNoContent))
}

func TestRateLimitMiddleware_WindowReset(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()
	rl.SetConfig("/test", RateLimitEndpointConfig{Requests: 2, Window: 50 * time.Millisecond, KeyFunc: GetClientIP})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.RateLimitMiddleware())

	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	send := func() int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)

		return w.Code
	}

	Expect(send()).To(Equal(200))
	Expect(send()).To(Equal(200))
	Expect(send()).To(Equal(429))

	time.Sleep(100 * time.Millisecond)

	Expect(send()).To(Equal(200))
}

func TestRateLimiter_ApplyConfig(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()

	rl.ApplyConfig(map[string]RateLimitConfig{
		"/mcp": {Requests: 7, Window: time.Second},
	})

	Expect(rl.config["/mcp"].Requests).To(Equal(7))
	Expect(rl.config["/mcp"].KeyFunc).ToNot(BeNil())
}

func TestRateLimiter_NormalizePath(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()

	Expect(rl.normalizePath("/todos/12")).To(Equal("/todos/:id"))
	Expect(rl.normalizePath("/todos/12/status")).To(Equal("/todos/:id/status"))
	Expect(rl.normalizePath("/todos/:id")).To(Equal("/todos/:id"))
	Expect(rl.normalizePath("/todos/stats/summary")).To(Equal("/todos/stats/summary"))
	Expect(rl.normalizePath("/health")).To(Equal("/health"))
}

func TestRateLimiterGetStats(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()

	stats := rl.GetStats()
	Expect(stats["active_entries"]).To(Equal(0))
	Expect(stats["configs"]).To(Equal(len(rl.config)))
}

func TestRateLimitMiddleware_NoDoubleCounting(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestRateLimiter()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.RateLimitMiddleware())

	callCount := 0
	var callCountMutex sync.Mutex
	router.POST("/todos", func(c *gin.Context) {
		callCountMutex.Lock()
		callCount++
		callCountMutex.Unlock()
		c.JSON(201, gin.H{"method": "POST"})
	})

	numRequests := 10
	results := make([]int, numRequests)
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		index := i
		wg.Go(func() {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/todos", strings.NewReader(`{"title":"test"}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			remaining, _ := strconv.Atoi(w.Header().Get("X-RateLimit-Remaining"))
			results[index] = remaining
		})
	}

	wg.Wait()

	Expect(callCount).To(Equal(numRequests))

	expectedRemaining := []int{29, 28, 27, 26, 25, 24, 23, 22, 21, 20}
	sort.Ints(results)
	sort.Ints(expectedRemaining)

	Expect(results).To(Equal(expectedRemaining))
}
