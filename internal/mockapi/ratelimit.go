package mockapi

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const limiterEviction = 10 * time.Minute

// limiterManager keeps one token bucket per client IP.
type limiterManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	done     chan struct{}
	once     sync.Once
}

func newLimiterManager(requestsPerMin, burst int) *limiterManager {
	m := &limiterManager{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
		done:     make(chan struct{}),
	}
	go m.cleanupLoop(limiterEviction)
	return m
}

func (m *limiterManager) allow(key string) bool {
	m.mu.Lock()
	l, ok := m.limiters[key]
	if !ok {
		l = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = l
	}
	m.lastSeen[key] = time.Now()
	m.mu.Unlock()
	return l.Allow()
}

func (m *limiterManager) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.evict(interval)
		case <-m.done:
			return
		}
	}
}

func (m *limiterManager) evict(age time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for key, seen := range m.lastSeen {
		if now.Sub(seen) > age {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}
}

func (m *limiterManager) close() {
	m.once.Do(func() { close(m.done) })
}

// rateLimit rejects requests over the per-IP budget with 429.
func rateLimit(m *limiterManager, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !m.allow(ip) {
				logger.Info("rate limit exceeded",
					"client_ip", ip,
					"path", c.Request().URL.Path)
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
